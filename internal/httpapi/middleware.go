package httpapi

import (
	"net/http"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// AccessLog logs one line per request and tags the request context with its id.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = logger.WithFields(ctx, "request_id", id)
				r = r.WithContext(ctx)
			}

			// the wrapper keeps http.Hijacker so websocket upgrades still work
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info(ctx, "%s %s %d %s", r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
		})
	}
}
