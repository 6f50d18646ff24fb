package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"veggi-storefront/internal/domain"
)

func TestStateTransitions(t *testing.T) {
	assert.True(t, StateIdle.CanTransitionTo(StateValidating))
	assert.True(t, StateAwaitingGatewayResult.CanTransitionTo(StateAbandoned))
	assert.True(t, StateFailed.CanTransitionTo(StateIdle))

	assert.False(t, StateIdle.CanTransitionTo(StateCompleted))
	assert.False(t, StateSubmitting.CanTransitionTo(StateConfirming))
	assert.False(t, StateAwaitingHash.CanTransitionTo(StateAbandoned))
	assert.False(t, StateCompleted.CanTransitionTo(StateConfirming))
}

func TestStateFlags(t *testing.T) {
	assert.True(t, StateConfirming.InFlight())
	assert.False(t, StateIdle.InFlight())
	assert.True(t, StateAbandoned.IsTerminal())
	assert.False(t, StateAwaitingHash.IsTerminal())
}

func TestComputeTotals(t *testing.T) {
	items := []domain.CartLineItem{
		{ID: "a", Price: decimal.RequireFromString("19.99"), Quantity: 3},
	}
	totals := ComputeTotals(items, DefaultShippingFee)
	assert.Equal(t, "59.97", totals.ItemsPrice.StringFixed(2))
	assert.Equal(t, "109.97", totals.Amount())
}
