package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

const DefaultSessionCacheSize = 4096

// Sessions hands out one initialized Store per session id. Open stores are
// kept in an LRU cache; an evicted session is rehydrated from its snapshot on
// the next Open. A store whose snapshot could not be read is handed out but
// not cached, so the next Open reads again.
type Sessions struct {
	snapshots SnapshotStore
	log       *slog.Logger

	cache *lru.Cache
	group singleflight.Group
}

func NewSessions(snapshots SnapshotStore, cacheSize int, log *slog.Logger) (*Sessions, error) {
	if snapshots == nil {
		return nil, ErrNotInitialized
	}
	if cacheSize <= 0 {
		cacheSize = DefaultSessionCacheSize
	}
	if log == nil {
		log = slog.Default()
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Sessions{snapshots: snapshots, log: log, cache: cache}, nil
}

func (s *Sessions) Open(ctx context.Context, sessionID string) (*Store, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, invalidArgument("session id is required")
	}
	if v, ok := s.cache.Get(sessionID); ok {
		return v.(*Store), nil
	}

	v, err, _ := s.group.Do(sessionID, func() (any, error) {
		if v, ok := s.cache.Get(sessionID); ok {
			return v, nil
		}
		st := NewStore(sessionID, s.snapshots, s.log)
		// Every waiting caller shares this result; cancellation is ignored.
		if err := st.Initialize(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		if st.Loaded() {
			s.cache.Add(sessionID, st)
		}
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Len is the number of sessions currently held in memory.
func (s *Sessions) Len() int { return s.cache.Len() }

func (s *Sessions) Ping(ctx context.Context) bool { return s.snapshots.Ping(ctx) }
