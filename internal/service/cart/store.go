package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/repository/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StorageKey is the fixed key the serialized item list is written under.
const StorageKey = "veggi-cart"

// storageTimeout bounds a single storage read or write.
const storageTimeout = 5 * time.Second

// Store is the single source of truth for one shopper's cart. Every mutation
// is followed by a full write of the item list to durable storage.
type Store struct {
	mu         sync.RWMutex
	state      State
	repo       storage.Repository
	logger     *zap.Logger
	persistent bool
}

// New creates an empty store backed by repo. Call Load to rehydrate it.
func New(repo storage.Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:      State{Items: []domain.CartLineItem{}},
		repo:       repo,
		logger:     logger,
		persistent: repo != nil,
	}
}

// Load replays every stored item through Add. Corrupt payloads leave the cart
// empty; an unreachable backend leaves the store in memory-only mode.
func (s *Store) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}
	ctx, cancel := storageContext(ctx)
	defer cancel()
	raw, err := s.repo.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return
		}
		s.mu.Lock()
		s.degradeLocked("load", err)
		s.mu.Unlock()
		return
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Error("failed to load cart from storage", zap.Error(err))
		return
	}

	s.mu.Lock()
	for _, item := range items {
		if item.ID == "" || item.Quantity <= 0 {
			s.logger.Warn("skipping invalid stored cart item", zap.String("id", item.ID), zap.Int("quantity", item.Quantity))
			continue
		}
		s.state = Reduce(s.state, AddItem{Item: item, Quantity: item.Quantity})
	}
	s.mu.Unlock()
}

// Add increments the quantity of an existing line or appends a new one.
func (s *Store) Add(ctx context.Context, item domain.CartLineItem, quantity int) {
	s.dispatch(ctx, AddItem{Item: item, Quantity: quantity})
}

// UpdateQuantity sets the quantity of the line with id. A quantity of zero or
// less removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.dispatch(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Store) Remove(ctx context.Context, id string) {
	s.dispatch(ctx, RemoveItem{ID: id})
}

func (s *Store) Clear(ctx context.Context) {
	s.dispatch(ctx, Clear{})
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.state.Items)
}

// Total is the sum of price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, item := range s.state.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count is the number of units in the cart.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.state.Items {
		n += item.Quantity
	}
	return n
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Items)
}

// Persistent reports whether mutations are still written to storage.
func (s *Store) Persistent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistent
}

// dispatch holds the lock across the storage write so concurrent requests in
// the same session cannot persist an older snapshot over a newer one.
func (s *Store) dispatch(ctx context.Context, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
	if s.persistent {
		s.persistLocked(ctx)
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.state.Items)
	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return
	}
	ctx, cancel := storageContext(ctx)
	defer cancel()
	if err := s.repo.Set(ctx, StorageKey, data); err != nil {
		s.degradeLocked("save", err)
	}
}

// storageContext detaches storage I/O from the caller's cancellation. Only
// storageTimeout can cut it short, so an aborted request never reads as a
// storage outage.
func storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storageTimeout)
}

func (s *Store) degradeLocked(op string, err error) {
	s.persistent = false
	s.logger.Error("cart storage unavailable, continuing in memory", zap.String("op", op), zap.Error(err))
}
