package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/example/storefront/docs"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Pinger is a dependency reported by GET /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the application components the HTTP API is built on.
type Services struct {
	Catalog  *service.Catalog
	Carts    *service.Carts
	Orders   *service.Orders
	Users    *service.Users
	Sessions *auth.SessionManager
	Payments payment.IntentCreator
	Checks   map[string]Pinger
}

type Gateway struct {
	config     *config.Config
	logger     *zap.Logger
	router     *gin.Engine
	server     *http.Server
	cookieName string

	catalog  *service.Catalog
	carts    *service.Carts
	orders   *service.Orders
	users    *service.Users
	sessions *auth.SessionManager
	payments payment.IntentCreator
	checks   map[string]Pinger
}

func NewGateway(cfg *config.Config, logger *zap.Logger, svc Services) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	binding.Validator = structValidator{validate: service.Validator}

	logger = logger.Named("gateway")
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(logger))
	router.Use(loggerMiddleware(logger))
	router.Use(metricsMiddleware())

	g := &Gateway{
		config:     cfg,
		logger:     logger,
		router:     router,
		cookieName: cfg.Auth.CookieName,
		catalog:    svc.Catalog,
		carts:      svc.Carts,
		orders:     svc.Orders,
		users:      svc.Users,
		sessions:   svc.Sessions,
		payments:   svc.Payments,
		checks:     svc.Checks,
	}
	g.SetupRoutes()

	g.server = &http.Server{
		Addr:              cfg.Server.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.health)
	g.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := g.router.Group("/api")
	api.Use(g.sessionMiddleware())
	{
		api.POST("/register", g.register)
		api.POST("/login", g.login)
		api.POST("/logout", g.logout)
		api.GET("/user", g.requireAuth(), g.currentUser)

		categories := api.Group("/categories")
		{
			categories.GET("", g.listCategories)
			categories.GET("/:idOrSlug", g.getCategory)
			categories.POST("", g.requireAdmin(), g.createCategory)
		}

		products := api.Group("/products")
		{
			products.GET("", g.listProducts)
			products.GET("/:id", g.getProduct)
			products.POST("", g.requireAdmin(), g.createProduct)
			products.PATCH("/:id", g.requireAdmin(), g.updateProduct)
			products.DELETE("/:id", g.requireAdmin(), g.deleteProduct)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("/:productId", g.getInventory)
			inventory.PATCH("/:productId", g.requireAdmin(), g.setStock)
		}

		cart := api.Group("/cart", g.requireAuth())
		{
			cart.GET("", g.listCart)
			cart.POST("", g.addToCart)
			cart.PATCH("/:productId", g.updateCartItem)
			cart.DELETE("/:productId", g.removeCartItem)
			cart.DELETE("", g.clearCart)
		}

		orders := api.Group("/orders", g.requireAuth())
		{
			orders.POST("", g.placeOrder)
			orders.GET("", g.listOrders)
			orders.GET("/:id", g.getOrder)
			orders.GET("/:id/history", g.orderHistory)
			orders.PATCH("/:id/status", g.requireAdmin(), g.updateOrderStatus)
		}

		api.POST("/create-payment-intent", g.requireAuth(), g.createPaymentIntent)
		api.POST("/chatbot/message", g.chatbotMessage)
		api.GET("/marketplace/:marketplace/status", g.marketplaceStatus)
	}
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves HTTP until Shutdown is called.
func (g *Gateway) Start() error {
	g.logger.Info("Gateway starting", zap.String("address", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("Gateway shutting down")
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(g.checks))
	for name, p := range g.checks {
		if err := p.Ping(ctx); err != nil {
			g.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
