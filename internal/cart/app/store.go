package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the cart. Persisted is false while the
// latest state has not reached the snapshot store.
type Snapshot struct {
	Lines     []domain.CartLine
	Total     decimal.Decimal
	Persisted bool
}

func (s Snapshot) IsEmpty() bool { return len(s.Lines) == 0 }

// Store owns the cart of one session. Every mutation is committed to the
// snapshot store before it returns. A Store must be initialized before use;
// a nil or uninitialized Store fails every call with ErrNotInitialized.
type Store struct {
	sessionID string
	snapshots SnapshotStore
	log       *slog.Logger

	mu    sync.Mutex
	cart  domain.Cart
	ready bool
	dirty bool
	// unread is set while the stored snapshot could not be read. Nothing is
	// written until a later read succeeds.
	unread bool
}

func NewStore(sessionID string, snapshots SnapshotStore, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		sessionID: sessionID,
		snapshots: snapshots,
		log:       log.With(slog.String("session_id", sessionID)),
	}
}

func (s *Store) SessionID() string {
	if s == nil {
		return ""
	}
	return s.sessionID
}

// Initialize rehydrates the cart from the session's snapshot. A missing or
// malformed snapshot yields an empty cart. An unreadable one also reads as
// empty, but the store re-reads it before its first write so the stored
// snapshot is never replaced by a cart that never saw it. Only a store
// without a snapshot backend is rejected.
func (s *Store) Initialize(ctx context.Context) error {
	if s == nil || s.snapshots == nil {
		return ErrNotInitialized
	}
	if strings.TrimSpace(s.sessionID) == "" {
		return invalidArgument("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.Cart{}
	s.dirty = false
	s.ready = true
	if err := s.loadLocked(ctx); err != nil {
		s.log.Warn("cart snapshot read failed, starting empty", slog.Any("err", err))
	}
	return nil
}

// Loaded reports whether the stored snapshot has been read.
func (s *Store) Loaded() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && !s.unread
}

func (s *Store) loadLocked(ctx context.Context) error {
	data, err := s.snapshots.Read(ctx, s.sessionID)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		s.unread = false
		return nil
	case err != nil:
		s.unread = true
		return &PersistenceError{Op: "read", Retryable: true, Err: err}
	}
	s.unread = false

	cart, err := domain.DecodeSnapshot(data)
	if err != nil {
		s.log.Warn("discarding malformed cart snapshot", slog.Any("err", err))
		return nil
	}
	s.cart = cart
	s.log.Debug("cart rehydrated", slog.Int("lines", cart.Len()))
	return nil
}

func (s *Store) AddToCart(ctx context.Context, p domain.Product, quantity int) (Snapshot, error) {
	return s.mutate(ctx, "add", func(c domain.Cart) (domain.Cart, bool, error) {
		if strings.TrimSpace(p.ID) == "" {
			return c, false, invalidArgument("product id is required")
		}
		if quantity < 1 {
			return c, false, invalidArgument("quantity must be at least 1, got %d", quantity)
		}
		if p.Price.IsNegative() {
			return c, false, invalidArgument("product %q has a negative price", p.ID)
		}
		if !c.Fits(p.ID, quantity) {
			return c, false, invalidArgument("quantity for product %q would overflow", p.ID)
		}
		return c.Add(p, quantity), true, nil
	})
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) (Snapshot, error) {
	return s.mutate(ctx, "remove", func(c domain.Cart) (domain.Cart, bool, error) {
		next, changed := c.Remove(productID)
		return next, changed, nil
	})
}

// RemoveProducts drops several lines in one write.
func (s *Store) RemoveProducts(ctx context.Context, productIDs ...string) (Snapshot, error) {
	return s.mutate(ctx, "remove_products", func(c domain.Cart) (domain.Cart, bool, error) {
		next, changed := c.RemoveAll(productIDs...)
		return next, changed, nil
	})
}

// UpdateQuantity sets an exact quantity. Values below 1 are ignored; lines
// are only ever removed by RemoveFromCart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (Snapshot, error) {
	return s.mutate(ctx, "update_quantity", func(c domain.Cart) (domain.Cart, bool, error) {
		next, changed := c.SetQuantity(productID, quantity)
		return next, changed, nil
	})
}

func (s *Store) ClearCart(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, "clear", func(c domain.Cart) (domain.Cart, bool, error) {
		return domain.Cart{}, !c.IsEmpty(), nil
	})
}

// Flush writes the current state again. It is a no-op when nothing is
// pending.
func (s *Store) Flush(ctx context.Context) (Snapshot, error) {
	return s.mutate(ctx, "flush", func(c domain.Cart) (domain.Cart, bool, error) {
		return c, false, nil
	})
}

func (s *Store) Total() (decimal.Decimal, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return decimal.Zero, err
	}
	return snap.Total, nil
}

func (s *Store) Lines() ([]domain.CartLine, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Lines, nil
}

func (s *Store) Snapshot() (Snapshot, error) {
	if s == nil {
		return Snapshot{}, ErrNotInitialized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Snapshot{}, ErrNotInitialized
	}
	return s.snapshotLocked(), nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func(domain.Cart) (domain.Cart, bool, error)) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, ErrNotInitialized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.log.Error("cart store used before initialization", slog.String("op", op))
		return Snapshot{}, ErrNotInitialized
	}
	if s.unread {
		if err := s.loadLocked(ctx); err != nil {
			s.log.Warn("cart snapshot still unreadable, mutation refused",
				slog.String("op", op), slog.Any("err", err))
			return s.snapshotLocked(), err
		}
	}

	next, changed, err := fn(s.cart)
	if err != nil {
		return s.snapshotLocked(), err
	}
	if !changed && !s.dirty {
		return s.snapshotLocked(), nil
	}
	s.cart = next
	return s.commitLocked(ctx, op)
}

func (s *Store) commitLocked(ctx context.Context, op string) (Snapshot, error) {
	data, err := domain.EncodeSnapshot(s.cart)
	if err != nil {
		s.dirty = true
		return s.snapshotLocked(), &PersistenceError{Op: "encode", Err: err}
	}

	if err := s.snapshots.Write(ctx, s.sessionID, data); err != nil {
		s.dirty = true
		perr := &PersistenceError{Op: "write", Retryable: true, Err: err}
		s.log.Warn("cart snapshot write failed, keeping in-memory state",
			slog.String("op", op), slog.Any("err", perr))
		return s.snapshotLocked(), perr
	}

	s.dirty = false
	return s.snapshotLocked(), nil
}

func (s *Store) snapshotLocked() Snapshot {
	c := s.cart.Clone()
	return Snapshot{
		Lines:     c.Lines,
		Total:     c.Total(),
		Persisted: !s.dirty && !s.unread,
	}
}
