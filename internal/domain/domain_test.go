package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	assert.Error(t, Product{Name: "Carrot"}.Validate())
	assert.Error(t, Product{ID: "p1"}.Validate())
	assert.Error(t, Product{ID: "p1", Name: "Carrot", Price: decimal.NewFromInt(-1)}.Validate())
	assert.NoError(t, Product{ID: "p1", Name: "Carrot", Price: decimal.NewFromInt(120)}.Validate())
}

func TestProductCartLine_UsesPlaceholderWithoutImages(t *testing.T) {
	p := Product{ID: "p1", Name: "Leeks", Price: decimal.NewFromInt(80), Stock: 12}
	line := p.CartLine(2)
	assert.Equal(t, "p1", line.ID)
	assert.Equal(t, "p1", line.Product)
	assert.Equal(t, PlaceholderImage, line.Image)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 12, line.Stock)

	p.Images = []ProductImage{{Image: "/uploads/leeks.jpg"}}
	assert.Equal(t, "/uploads/leeks.jpg", p.CartLine(1).Image)
}

func TestUserNames(t *testing.T) {
	assert.Equal(t, "Customer", User{}.FirstName())
	assert.Equal(t, "", User{Name: "Nimal"}.LastName())
	u := User{Name: "Nimal de Silva", Role: "admin"}
	assert.Equal(t, "Nimal", u.FirstName())
	assert.Equal(t, "de Silva", u.LastName())
	assert.True(t, u.IsAdmin())
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusShipped))
	assert.False(t, ValidOrderStatus("Cancelled"))
}

func TestUserUnmarshal_FallsBackToMongoID(t *testing.T) {
	var u User
	assert.NoError(t, json.Unmarshal([]byte(`{"_id":"abc","name":"Ann"}`), &u))
	assert.Equal(t, "abc", u.ID)

	assert.NoError(t, json.Unmarshal([]byte(`{"id":"x1","_id":"abc"}`), &u))
	assert.Equal(t, "x1", u.ID)
}
