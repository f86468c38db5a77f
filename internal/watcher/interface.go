package watcher

import "context"

// Watcher feeds new source clips of a folder to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one clip.
type EventHandler func(ctx context.Context, filePath string) error
