package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"
)

func decodeCart(t *testing.T, body []byte) cartResponse {
	t.Helper()
	var out cartResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode cart: %v body=%s", err, body)
	}
	return out
}

func TestCart_AddMergesByProduct(t *testing.T) {
	env := newTestEnv(t)
	env.expect(env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":2}`), http.StatusOK)
	env.expect(env.do(http.MethodPost, "/api/cart/items", `{"productId":"p2"}`), http.StatusOK)
	rec := env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":1}`)
	env.expect(rec, http.StatusOK)

	cart := decodeCart(t, rec.Body.Bytes())
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Items))
	}
	if cart.Items[0].ID != "p1" || cart.Items[0].Quantity != 3 {
		t.Fatalf("unexpected first line %+v", cart.Items[0])
	}
	if cart.Items[0].Image != "/img/carrots.jpg" {
		t.Fatalf("unexpected image %q", cart.Items[0].Image)
	}
	if cart.Items[1].Image != "/assets/placeholder.png" {
		t.Fatalf("expected placeholder image, got %q", cart.Items[1].Image)
	}
	if cart.Count != 4 || cart.Total.String() != "350" {
		t.Fatalf("unexpected count %d total %s", cart.Count, cart.Total)
	}
	if !cart.Persistent {
		t.Fatalf("expected persistent cart")
	}
}

func TestCart_AddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	env.expect(env.do(http.MethodPost, "/api/cart/items", `{"productId":"nope"}`), http.StatusNotFound)
	env.expect(env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":-2}`), http.StatusBadRequest)
	env.expect(env.do(http.MethodPost, "/api/cart/items", `{}`), http.StatusBadRequest)
}

func TestCart_UpdateToZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1","quantity":2}`)
	env.do(http.MethodPost, "/api/cart/items", `{"productId":"p2","quantity":1}`)

	rec := env.do(http.MethodPatch, "/api/cart/items/p1", `{"quantity":5}`)
	env.expect(rec, http.StatusOK)
	if got := decodeCart(t, rec.Body.Bytes()).Items[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}

	rec = env.do(http.MethodPatch, "/api/cart/items/p1", `{"quantity":0}`)
	cart := decodeCart(t, rec.Body.Bytes())
	if len(cart.Items) != 1 || cart.Items[0].ID != "p2" {
		t.Fatalf("expected p1 removed, got %+v", cart.Items)
	}

	rec = env.do(http.MethodPatch, "/api/cart/items/p2", `{"quantity":-5}`)
	if len(decodeCart(t, rec.Body.Bytes()).Items) != 0 {
		t.Fatalf("expected empty cart")
	}

	env.expect(env.do(http.MethodPatch, "/api/cart/items/p2", `{}`), http.StatusBadRequest)
}

func TestCart_RemoveAndClear(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)
	env.do(http.MethodPost, "/api/cart/items", `{"productId":"p2"}`)

	rec := env.do(http.MethodDelete, "/api/cart/items/p1", "")
	if len(decodeCart(t, rec.Body.Bytes()).Items) != 1 {
		t.Fatalf("expected one line left")
	}
	rec = env.do(http.MethodDelete, "/api/cart/items/unknown", "")
	if len(decodeCart(t, rec.Body.Bytes()).Items) != 1 {
		t.Fatalf("unknown id must be a no-op")
	}
	rec = env.do(http.MethodDelete, "/api/cart", "")
	cart := decodeCart(t, rec.Body.Bytes())
	if len(cart.Items) != 0 || cart.Count != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
}

func TestCart_SeparateBrowsers(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1"}`)

	other := &testEnv{t: t, router: env.router, backend: env.backend}
	rec := other.do(http.MethodGet, "/api/cart", "")
	if len(decodeCart(t, rec.Body.Bytes()).Items) != 0 {
		t.Fatalf("new browser must start with an empty cart")
	}
}
