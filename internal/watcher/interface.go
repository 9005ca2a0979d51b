package watcher

import "context"

// Watcher feeds new recordings in a directory to a handler
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles file events
type EventHandler func(ctx context.Context, filePath string) error
