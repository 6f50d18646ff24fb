package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event types published when an attempt settles.
const (
	EventCompleted = "checkout.completed"
	EventAbandoned = "checkout.abandoned"
)

// Event is emitted for completed and abandoned attempts so pending orders
// left behind by dismissed payments can be reconciled by the backend owner.
type Event struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"orderId"`
	UserID     string          `json:"userId"`
	Method     Method          `json:"paymentMethod"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Recorder counts settled attempts.
type Recorder interface {
	CheckoutOutcome(method, state string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopRecorder struct{}

func (nopRecorder) CheckoutOutcome(string, string) {}
