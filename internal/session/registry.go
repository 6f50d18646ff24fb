package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"veggi-storefront/internal/payment"
	"veggi-storefront/internal/repository/storage"
	"veggi-storefront/internal/service/cart"
	"veggi-storefront/internal/service/checkout"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an idle session is kept in memory.
const DefaultTTL = 24 * time.Hour

type Options struct {
	TTL time.Duration
	// Storage holds every session's cart, namespaced by session id. Nil
	// keeps carts in memory only.
	Storage  storage.Repository
	Backend  checkout.Backend
	Checkout checkout.Options
	// DisableHostedPayments makes the card widget unavailable, so card
	// checkouts fail while cash on delivery keeps working.
	DisableHostedPayments bool
	Logger                *zap.Logger
}

var (
	errPaymentsDisabled  = errors.New("hosted payments are disabled")
	errGatewayURLsNotSet = errors.New("gateway return and notify URLs are not configured")
)

// ValidID reports whether id can name a session.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Registry maps session ids to live sessions. A session evicted from
// memory is rebuilt from storage when its id comes back.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	group    singleflight.Group
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewRegistry(opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it when id is unknown. Ids that
// are not UUIDs are replaced by a fresh one; callers must use the returned
// session's ID for the cookie. Only known ids are rehydrated from storage.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		s := r.build(ctx, uuid.NewString(), true, false)
		r.register(s)
		return s, nil
	}

	if s, ok := r.lookup(id); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if s, ok := r.lookup(id); ok {
			return s, nil
		}
		s := r.build(ctx, id, true, true)
		r.register(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Transient returns a throwaway session for clients without a session
// cookie. It is not registered and never touches storage.
func (r *Registry) Transient() *Session {
	return r.build(context.Background(), uuid.NewString(), false, false)
}

func (r *Registry) register(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.logger.Debug("session created", zap.String("session_id", s.ID), zap.Bool("persistent_cart", s.Cart.Persistent()))
}

// lookup returns a live session and extends its lifetime.
func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.After(s.expiresAt) {
		delete(r.sessions, id)
		return nil, false
	}
	s.expiresAt = now.Add(r.opts.TTL)
	return s, true
}

// build assembles a session. persist backs its cart with storage; rehydrate
// also loads what storage already holds for id.
func (r *Registry) build(ctx context.Context, id string, persist, rehydrate bool) *Session {
	var repo storage.Repository
	if persist && r.opts.Storage != nil {
		repo = storage.Scoped(r.opts.Storage, id)
	}
	logger := r.logger.With(zap.String("session_id", id))

	store := cart.New(repo, logger)
	if rehydrate {
		store.Load(ctx)
	}

	hosted := payment.NewHosted()
	checkoutOpts := r.opts.Checkout
	checkoutOpts.Logger = logger
	orch := checkout.New(store, r.opts.Backend, r.widgetLoader(hosted), checkoutOpts)

	return &Session{
		ID:        id,
		Cart:      store,
		Checkout:  orch,
		Payment:   hosted,
		expiresAt: r.now().Add(r.opts.TTL),
	}
}

// widgetLoader hands out the session's hosted widget once the gateway can
// actually be reached: payments enabled and both gateway URLs known.
func (r *Registry) widgetLoader(hosted *payment.Hosted) *payment.Loader {
	return payment.NewLoader(func(context.Context) (payment.Widget, error) {
		if r.opts.DisableHostedPayments {
			return nil, errPaymentsDisabled
		}
		co := r.opts.Checkout
		if co.PublicOrigin == "" || co.NotifyBase == "" {
			return nil, errGatewayURLsNotSet
		}
		return hosted, nil
	})
}

// Sweep drops expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if now.After(s.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
