package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type wsChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
	once sync.Once
}

func (c *wsChannel) Send(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsChannel) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

type implHandler struct {
	registry *Registry
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewHandler creates a Handler that registers upgraded connections in reg.
func NewHandler(reg *Registry, log logger.Logger) Handler {
	return &implHandler{
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// ServeClient registers the connection under clientID and echoes client
// messages until it disconnects.
func (h *implHandler) ServeClient(w http.ResponseWriter, r *http.Request, clientID string) {
	ctx := logger.WithFields(r.Context(), "client_id", clientID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(ctx, "Websocket upgrade failed: %v", err)
		return
	}

	// the HTTP server's request deadlines must not cut long-lived channels
	_ = conn.SetReadDeadline(time.Time{})

	ch := &wsChannel{conn: conn}
	if err := h.registry.Register(clientID, ch); err != nil {
		h.logger.Warn(ctx, "Rejecting channel: %v", err)
		_ = ch.Close()
		return
	}
	h.logger.Info(ctx, "Client channel opened")

	defer func() {
		h.registry.Unregister(clientID, ch)
		_ = ch.Close()
		h.logger.Info(ctx, "Client channel closed")
	}()

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := ch.Send(ctx, string(msg)); err != nil {
			return
		}
	}
}
