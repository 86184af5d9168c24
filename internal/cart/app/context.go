package app

import "context"

type storeKey struct{}

// WithStore attaches the session's store to ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store attached by WithStore, or nil. Every method
// on a nil *Store fails with ErrNotInitialized.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(storeKey{}).(*Store)
	return s
}
