package httpserver

import (
	"context"
	"errors"
	"time"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/metrics"
	"veggi-storefront/internal/repository/storage"
	"veggi-storefront/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Backend is the part of the REST backend the handlers call directly.
type Backend interface {
	Ping(ctx context.Context) error

	Login(ctx context.Context, creds backend.Credentials) (string, error)
	Register(ctx context.Context, in backend.Registration) (string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) error

	ListProducts(ctx context.Context, page int, keyword string) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error

	GetOrder(ctx context.Context, token, id string) (*domain.Order, error)
	MyOrders(ctx context.Context, token string) ([]domain.Order, error)
	AllOrders(ctx context.Context, token string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, token, id, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, token, id string) error
}

// Deps carries what the router needs from main.
type Deps struct {
	Backend  Backend
	Sessions *session.Registry
	// Storage is pinged by /readyz; nil skips the check.
	Storage       storage.Pinger
	Metrics       *metrics.Metrics
	CORSOrigins   []string
	SessionTTL    time.Duration
	SecureCookies bool
}

type handlers struct {
	backend Backend
	logger  *zap.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Backend == nil {
		return nil, errors.New("httpserver: backend is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("httpserver: session registry is required")
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = session.DefaultTTL
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger))
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	var storagePinger pinger
	if deps.Storage != nil {
		storagePinger = deps.Storage
	}
	router.GET("/readyz", readyHandler(storagePinger, deps.Backend))

	h := &handlers{backend: deps.Backend, logger: logger}
	api := router.Group("/api", sessionMiddleware(deps.Sessions, deps.SessionTTL, deps.SecureCookies))

	auth := api.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/register", h.register)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.me)
	auth.POST("/forgot-password", h.forgotPassword)
	auth.PUT("/reset-password/:token", h.resetPassword)

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	api.GET("/cart", h.getCart)
	api.POST("/cart/items", h.addCartItem)
	api.PATCH("/cart/items/:id", h.updateCartItem)
	api.DELETE("/cart/items/:id", h.removeCartItem)
	api.DELETE("/cart", h.clearCart)

	api.GET("/checkout", h.checkoutStatus)
	api.POST("/checkout", h.submitCheckout)
	api.POST("/checkout/payment/completed", h.paymentCompleted)
	api.POST("/checkout/payment/dismissed", h.paymentDismissed)
	api.POST("/checkout/payment/error", h.paymentError)

	orders := api.Group("/orders", requireUser())
	orders.GET("/mine", h.myOrders)
	orders.GET("/:id", h.getOrder)

	admin := api.Group("/admin", requireAdmin())
	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/orders", h.allOrders)
	admin.PUT("/orders/:id", h.updateOrderStatus)
	admin.DELETE("/orders/:id", h.deleteOrder)

	return router, nil
}
