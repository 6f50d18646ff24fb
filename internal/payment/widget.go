// Package payment models the hosted payment widget the browser opens to
// collect card details. The server side records what the widget was started
// with and receives its outcome through callbacks.
package payment

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCallbacksNotSet is returned when StartPayment is called before all
	// three callbacks are registered.
	ErrCallbacksNotSet = errors.New("payment: completed, dismissed and error callbacks must be set")
	ErrNotStarted      = errors.New("payment: no payment in progress")
	ErrAlreadySettled  = errors.New("payment: payment already settled")
)

// Config is the launch configuration handed to the gateway SDK.
type Config struct {
	Sandbox    bool   `json:"sandbox"`
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	Hash       string `json:"hash"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Completion is what the gateway reports when the shopper paid.
type Completion struct {
	OrderID   string
	PaymentID string
}

// Widget is the gateway SDK surface used by checkout.
type Widget interface {
	OnCompleted(func(Completion))
	OnDismissed(func())
	OnError(func(error))
	StartPayment(ctx context.Context, cfg Config) error
}

// Hosted is a Widget whose outcome arrives from the browser through
// Complete, Dismiss or Fail. Exactly one of them settles a started payment.
type Hosted struct {
	mu          sync.Mutex
	onCompleted func(Completion)
	onDismissed func()
	onError     func(error)
	config      *Config
	settled     bool
}

func NewHosted() *Hosted {
	return &Hosted{}
}

func (h *Hosted) OnCompleted(fn func(Completion)) {
	h.mu.Lock()
	h.onCompleted = fn
	h.mu.Unlock()
}

func (h *Hosted) OnDismissed(fn func()) {
	h.mu.Lock()
	h.onDismissed = fn
	h.mu.Unlock()
}

func (h *Hosted) OnError(fn func(error)) {
	h.mu.Lock()
	h.onError = fn
	h.mu.Unlock()
}

// StartPayment records cfg as the active payment. A new start replaces any
// previous, settled or not.
func (h *Hosted) StartPayment(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.onCompleted == nil || h.onDismissed == nil || h.onError == nil {
		return ErrCallbacksNotSet
	}
	h.config = &cfg
	h.settled = false
	return nil
}

// Active returns the config of the unsettled payment, if any.
func (h *Hosted) Active() (Config, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.config == nil || h.settled {
		return Config{}, false
	}
	return *h.config, true
}

// Complete settles the payment as paid and runs the completed callback.
func (h *Hosted) Complete(paymentID string) error {
	cfg, err := h.settle()
	if err != nil {
		return err
	}
	h.mu.Lock()
	fn := h.onCompleted
	h.mu.Unlock()
	fn(Completion{OrderID: cfg.OrderID, PaymentID: paymentID})
	return nil
}

// Dismiss settles the payment as closed by the shopper.
func (h *Hosted) Dismiss() error {
	if _, err := h.settle(); err != nil {
		return err
	}
	h.mu.Lock()
	fn := h.onDismissed
	h.mu.Unlock()
	fn()
	return nil
}

// Fail settles the payment with the gateway's error message.
func (h *Hosted) Fail(message string) error {
	if _, err := h.settle(); err != nil {
		return err
	}
	h.mu.Lock()
	fn := h.onError
	h.mu.Unlock()
	fn(errors.New(message))
	return nil
}

func (h *Hosted) settle() (Config, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.config == nil {
		return Config{}, ErrNotStarted
	}
	if h.settled {
		return Config{}, ErrAlreadySettled
	}
	h.settled = true
	return *h.config, nil
}
