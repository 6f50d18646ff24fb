package cart

import (
	"testing"

	"veggi-storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, price int64) domain.CartLineItem {
	return domain.CartLineItem{ID: id, Product: id, Name: "Item " + id, Price: decimal.NewFromInt(price), Image: "/img/" + id}
}

func TestReduce_AddSameProductMerges(t *testing.T) {
	s := Reduce(State{}, AddItem{Item: item("p1", 100), Quantity: 2})
	s = Reduce(s, AddItem{Item: item("p1", 100), Quantity: 3})

	require.Len(t, s.Items, 1)
	assert.Equal(t, 5, s.Items[0].Quantity)
}

func TestReduce_AddPreservesInsertionOrder(t *testing.T) {
	s := Reduce(State{}, AddItem{Item: item("b", 1), Quantity: 1})
	s = Reduce(s, AddItem{Item: item("a", 1), Quantity: 1})
	s = Reduce(s, AddItem{Item: item("b", 1), Quantity: 1})

	require.Len(t, s.Items, 2)
	assert.Equal(t, "b", s.Items[0].ID)
	assert.Equal(t, "a", s.Items[1].ID)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := Reduce(State{}, AddItem{Item: item("p1", 10), Quantity: 1})
	_ = Reduce(before, AddItem{Item: item("p1", 10), Quantity: 4})
	_ = Reduce(before, UpdateQuantity{ID: "p1", Quantity: 9})

	assert.Equal(t, 1, before.Items[0].Quantity)
}

func TestReduce_UpdateQuantity(t *testing.T) {
	base := Reduce(State{}, AddItem{Item: item("p1", 10), Quantity: 1})
	base = Reduce(base, AddItem{Item: item("p2", 10), Quantity: 1})

	cases := []struct {
		name    string
		qty     int
		wantLen int
		wantQty int
	}{
		{"set exact", 3, 2, 3},
		{"zero removes", 0, 1, 0},
		{"negative removes", -5, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reduce(base, UpdateQuantity{ID: "p1", Quantity: tc.qty})
			require.Len(t, got.Items, tc.wantLen)
			if tc.wantQty > 0 {
				assert.Equal(t, tc.wantQty, got.Items[0].Quantity)
			} else {
				assert.Equal(t, "p2", got.Items[0].ID)
			}
		})
	}
}

func TestReduce_UpdateUnknownIsNoop(t *testing.T) {
	base := Reduce(State{}, AddItem{Item: item("p1", 10), Quantity: 2})
	got := Reduce(base, UpdateQuantity{ID: "missing", Quantity: 7})
	assert.Equal(t, base.Items, got.Items)
}

func TestReduce_RemoveAndClear(t *testing.T) {
	s := Reduce(State{}, AddItem{Item: item("p1", 10), Quantity: 1})
	s = Reduce(s, AddItem{Item: item("p2", 10), Quantity: 1})

	s = Reduce(s, RemoveItem{ID: "missing"})
	assert.Len(t, s.Items, 2)

	s = Reduce(s, RemoveItem{ID: "p1"})
	require.Len(t, s.Items, 1)
	assert.Equal(t, "p2", s.Items[0].ID)

	s = Reduce(s, Clear{})
	assert.Empty(t, s.Items)
	assert.NotNil(t, s.Items)
}
