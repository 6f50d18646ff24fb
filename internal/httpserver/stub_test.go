package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/metrics"
	"veggi-storefront/internal/repository/storage"
	"veggi-storefront/internal/service/checkout"
	"veggi-storefront/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type stubBackend struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	products map[string]*domain.Product
	pingErr  error
	orderErr error

	created   []domain.OrderSubmission
	confirmed []domain.PaymentConfirmation
	newProds  []domain.ProductInput
	statuses  []string
	loggedOut []string
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		users: map[string]*domain.User{
			"shopper-token": {ID: "u1", Name: "Nimal Perera", Email: "nimal@example.lk", Role: "user"},
			"admin-token":   {ID: "a1", Name: "Admin", Email: "admin@example.lk", Role: domain.RoleAdmin},
		},
		products: map[string]*domain.Product{
			"p1": {ID: "p1", Name: "Carrots", Price: decimal.NewFromInt(100), Stock: 20, Images: []domain.ProductImage{{Image: "/img/carrots.jpg"}}},
			"p2": {ID: "p2", Name: "Leeks", Price: decimal.NewFromInt(50), Stock: 5},
		},
	}
}

func (s *stubBackend) Ping(context.Context) error { return s.pingErr }

func (s *stubBackend) Login(_ context.Context, creds backend.Credentials) (string, error) {
	switch creds.Email {
	case "nimal@example.lk":
		return "shopper-token", nil
	case "admin@example.lk":
		return "admin-token", nil
	}
	return "", &backend.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
}

func (s *stubBackend) Register(_ context.Context, in backend.Registration) (string, error) {
	return "shopper-token", nil
}

func (s *stubBackend) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	s.loggedOut = append(s.loggedOut, token)
	s.mu.Unlock()
	return nil
}

func (s *stubBackend) Me(_ context.Context, token string) (*domain.User, error) {
	u, ok := s.users[token]
	if !ok {
		return nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "Login first"}
	}
	cp := *u
	return &cp, nil
}

func (s *stubBackend) ForgotPassword(context.Context, string) error { return nil }

func (s *stubBackend) ResetPassword(_ context.Context, resetToken, _, _ string) error {
	if resetToken != "good" {
		return &backend.APIError{Status: http.StatusBadRequest, Message: "Password reset token is invalid or has been expired"}
	}
	return nil
}

func (s *stubBackend) ListProducts(_ context.Context, page int, keyword string) (*domain.ProductPage, error) {
	out := &domain.ProductPage{ResPerPage: 8, TotalPages: 1}
	for _, id := range []string{"p1", "p2"} {
		p := s.products[id]
		if keyword == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword)) {
			out.Products = append(out.Products, *p)
		}
	}
	out.ProductsCount = len(s.products)
	out.FilteredProductsCount = len(out.Products)
	return out, nil
}

func (s *stubBackend) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, &backend.APIError{Status: http.StatusNotFound, Message: "Product not found"}
	}
	return p, nil
}

func (s *stubBackend) CreateProduct(_ context.Context, _ string, in domain.ProductInput) (*domain.Product, error) {
	s.mu.Lock()
	s.newProds = append(s.newProds, in)
	s.mu.Unlock()
	return &domain.Product{ID: "p9", Name: in.Name, Price: in.Price, Images: in.Images}, nil
}

func (s *stubBackend) UpdateProduct(_ context.Context, _ string, id string, in domain.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (s *stubBackend) DeleteProduct(context.Context, string, string) error { return nil }

func (s *stubBackend) GetOrder(_ context.Context, _ string, id string) (*domain.Order, error) {
	if id != "o1" {
		return nil, &backend.APIError{Status: http.StatusNotFound, Message: "Order not found with this Id"}
	}
	return &domain.Order{ID: "o1", OrderStatus: domain.OrderStatusProcessing}, nil
}

func (s *stubBackend) MyOrders(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1"}}, nil
}

func (s *stubBackend) AllOrders(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1"}, {ID: "o2"}}, nil
}

func (s *stubBackend) UpdateOrderStatus(_ context.Context, _ string, id, status string) (*domain.Order, error) {
	s.mu.Lock()
	s.statuses = append(s.statuses, status)
	s.mu.Unlock()
	return &domain.Order{ID: id, OrderStatus: status}, nil
}

func (s *stubBackend) DeleteOrder(context.Context, string, string) error { return nil }

func (s *stubBackend) CreateOrder(_ context.Context, _ string, in domain.OrderSubmission) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	s.created = append(s.created, in)
	return &domain.Order{ID: "o1"}, nil
}

func (s *stubBackend) PaymentHash(_ context.Context, _ string, _ backend.HashRequest) (*backend.HashResponse, error) {
	return &backend.HashResponse{MerchantID: "1221", Hash: "HASH"}, nil
}

func (s *stubBackend) ConfirmPayment(_ context.Context, _ string, _ string, in domain.PaymentConfirmation) error {
	s.mu.Lock()
	s.confirmed = append(s.confirmed, in)
	s.mu.Unlock()
	return nil
}

type testEnv struct {
	t        *testing.T
	router   *gin.Engine
	backend  *stubBackend
	sessions *session.Registry
	cookies  []*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, zap.NewNop())
}

func newTestEnvWithLogger(t *testing.T, logger *zap.Logger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	be := newStubBackend()
	registry := session.NewRegistry(session.Options{
		Storage:  storage.NewMemory(),
		Backend:  be,
		Checkout: checkout.Options{PublicOrigin: "http://shop.test", NotifyBase: "http://api.test/api/v1"},
	})
	router, err := buildRouter(logger, Deps{
		Backend:     be,
		Sessions:    registry,
		Storage:     storage.NewMemory().(storage.Pinger),
		Metrics:     metrics.New(),
		CORSOrigins: []string{"http://shop.test"},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{t: t, router: router, backend: be, sessions: registry}
}

// do sends a request carrying the cookies collected so far.
func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range e.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie {
			e.cookies = []*http.Cookie{ck}
		}
	}
	return rec
}

func (e *testEnv) expect(rec *httptest.ResponseRecorder, status int) {
	e.t.Helper()
	if rec.Code != status {
		e.t.Fatalf("expected status %d, got %d body=%s", status, rec.Code, rec.Body.String())
	}
}

func (e *testEnv) login(email string) {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"secret1"}`)
	e.expect(rec, http.StatusOK)
}
