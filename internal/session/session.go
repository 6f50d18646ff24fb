// Package session keeps the per-browser state of the storefront: the cart,
// the signed-in user and the checkout in progress.
package session

import (
	"sync"
	"time"

	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/payment"
	"veggi-storefront/internal/service/cart"
	"veggi-storefront/internal/service/checkout"
)

type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Orchestrator
	Payment  *payment.Hosted

	mu    sync.RWMutex
	user  *domain.User
	token string

	expiresAt time.Time
}

// SetAuth binds the backend token and the user it belongs to.
func (s *Session) SetAuth(user *domain.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
}

// ClearAuth signs the shopper out. The cart is kept.
func (s *Session) ClearAuth() {
	s.SetAuth(nil, "")
}

func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}
