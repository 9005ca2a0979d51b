package notify

import (
	"context"
	"net/http"
)

// Channel is a live duplex connection to one client.
type Channel interface {
	Send(ctx context.Context, text string) error
	Close() error
}

// Notifier pushes text to the channel registered for a client, if any.
type Notifier interface {
	// Notify reports whether a channel was registered for clientID.
	Notify(ctx context.Context, clientID, text string) (bool, error)
}

// Handler upgrades an HTTP request into a registered client channel.
type Handler interface {
	ServeClient(w http.ResponseWriter, r *http.Request, clientID string)
}
