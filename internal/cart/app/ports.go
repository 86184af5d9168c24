package app

import (
	"context"
)

// SnapshotStore persists one serialized cart per session.
type SnapshotStore interface {
	// Read returns ErrSnapshotNotFound when the session has no snapshot yet.
	Read(ctx context.Context, sessionID string) ([]byte, error)
	Write(ctx context.Context, sessionID string, data []byte) error
	Ping(ctx context.Context) bool
}
