package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"veggi-storefront/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "")
	env.expect(rec, http.StatusOK)
	if len(env.cookies) != 0 {
		t.Fatalf("health check should not start a session")
	}
}

func TestReady(t *testing.T) {
	env := newTestEnv(t)
	env.expect(env.do(http.MethodGet, "/readyz", ""), http.StatusOK)

	env.backend.pingErr = errors.New("connection refused")
	rec := env.do(http.MethodGet, "/readyz", "")
	env.expect(rec, http.StatusServiceUnavailable)
	if !strings.Contains(rec.Body.String(), "backend not reachable") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestReadyHandler_StorageDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(stubPinger{err: errors.New("down")}, stubPinger{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storage not reachable") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	if _, err := buildRouter(zap.NewNop(), Deps{}); err == nil {
		t.Fatalf("expected error without backend")
	}
	if _, err := buildRouter(zap.NewNop(), Deps{Backend: newStubBackend()}); err == nil {
		t.Fatalf("expected error without session registry")
	}
	if _, err := buildRouter(zap.NewNop(), Deps{Backend: newStubBackend(), Sessions: session.NewRegistry(session.Options{})}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionCookieIsIssuedOnce(t *testing.T) {
	env := newTestEnv(t)
	env.expect(env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1"}`), http.StatusOK)
	if len(env.cookies) != 1 {
		t.Fatalf("expected session cookie")
	}
	first := env.cookies[0].Value
	if !env.cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http only")
	}

	env.expect(env.do(http.MethodGet, "/api/cart", ""), http.StatusOK)
	if env.cookies[0].Value != first {
		t.Fatalf("session id changed from %s to %s", first, env.cookies[0].Value)
	}
	if n := env.sessions.Len(); n != 1 {
		t.Fatalf("expected 1 session, got %d", n)
	}
}

func TestReadsWithoutCookieDoNotCreateSessions(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		rec := env.do(http.MethodGet, "/api/cart", "")
		env.expect(rec, http.StatusOK)
		if cart := decodeCart(t, rec.Body.Bytes()); len(cart.Items) != 0 {
			t.Fatalf("expected empty cart, got %+v", cart.Items)
		}
	}
	env.expect(env.do(http.MethodGet, "/api/checkout", ""), http.StatusOK)
	env.expect(env.do(http.MethodGet, "/api/auth/me", ""), http.StatusUnauthorized)

	if len(env.cookies) != 0 {
		t.Fatalf("read-only requests must not issue a session cookie")
	}
	if n := env.sessions.Len(); n != 0 {
		t.Fatalf("expected no registered sessions, got %d", n)
	}

	env.expect(env.do(http.MethodPost, "/api/cart/items", `{"productId":"p1"}`), http.StatusOK)
	if len(env.cookies) != 1 || env.sessions.Len() != 1 {
		t.Fatalf("first write must create the session")
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://shop.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://shop.test" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("credentials must be allowed, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/api/cart", "")

	rec := env.do(http.MethodGet, "/metrics", "")
	env.expect(rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `veggi_storefront_http_requests_total{handler="/api/cart",status="200"} 1`) {
		t.Fatalf("request counter missing:\n%s", rec.Body.String())
	}
}
