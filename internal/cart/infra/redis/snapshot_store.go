package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	defaultKeyPrefix  = "storefront:session"
	maxBackoff        = 30 * time.Second
	defaultPingBudget = 5 * time.Second
)

// NewClient accepts either a redis:// URL or a plain host:port address.
func NewClient(addr string) *goredis.Client {
	opts, err := goredis.ParseURL(addr)
	if err != nil {
		opts = &goredis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}
	return goredis.NewClient(opts)
}

// SnapshotStore keeps each session's snapshot in a hash at
// "<prefix>:<sessionID>" under the field domain.StorageKey.
type SnapshotStore struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	log    *slog.Logger

	backoffBase time.Duration
}

type Option func(*SnapshotStore)

func WithKeyPrefix(prefix string) Option {
	return func(s *SnapshotStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires an idle session's snapshot; every write refreshes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *SnapshotStore) { s.ttl = ttl }
}

func WithBackoffBase(d time.Duration) Option {
	return func(s *SnapshotStore) { s.backoffBase = d }
}

func NewSnapshotStore(client *goredis.Client, log *slog.Logger, opts ...Option) *SnapshotStore {
	if log == nil {
		log = slog.Default()
	}
	s := &SnapshotStore{
		client:      client,
		prefix:      defaultKeyPrefix,
		log:         log,
		backoffBase: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize waits for Redis to answer, backing off exponentially between
// attempts.
func (s *SnapshotStore) Initialize(ctx context.Context, attempts int) error {
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if s.Ping(ctx) {
			s.log.Info("redis snapshot store ready", slog.Int("attempt", i+1))
			return nil
		}
		if i == attempts-1 {
			break
		}

		backoff := s.backoffBase * time.Duration(1<<uint(i))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		s.log.Warn("redis not reachable, retrying", slog.Int("attempt", i+1), slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "redis initialize")
		case <-time.After(backoff):
		}
	}
	return errors.Errorf("redis not reachable after %d attempts", attempts)
}

func (s *SnapshotStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *SnapshotStore) Read(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key(sessionID), domain.StorageKey).Bytes()
	if err == goredis.Nil {
		return nil, app.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis hget")
	}
	return data, nil
}

func (s *SnapshotStore) Write(ctx context.Context, sessionID string, data []byte) error {
	key := s.key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, domain.StorageKey, data)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis hset")
	}
	return nil
}

func (s *SnapshotStore) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingBudget)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		s.log.Debug("redis ping failed", slog.Any("err", err))
		return false
	}
	return true
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}
