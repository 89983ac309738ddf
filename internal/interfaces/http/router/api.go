package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"github.com/techsolutions/pos/internal/infrastructure/config"
	"github.com/techsolutions/pos/internal/infrastructure/logger"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
	"github.com/techsolutions/pos/internal/interfaces/http/handler"
	"github.com/techsolutions/pos/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Auth     *handler.AuthHandler
	Sale     *handler.SaleHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Report   *handler.ReportHandler
	User     *handler.UserHandler
	System   *handler.SystemHandler
}

// Dependencies is everything NewEngine needs. Meter may be nil, in which
// case HTTP metrics are not recorded.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	JWT         *auth.JWTService
	Revocations auth.RevocationList
	Meter       metric.Meter
	Handlers    Handlers
}

// NewEngine builds the gin engine: global middleware, health endpoints and
// the /api/v1 routes with their access levels.
//
//	operator:      checkout, lookups, catalog and customer reads
//	supervisor:    void, reports, operator lookups, catalog and customer writes
//	administrator: product deactivation
func NewEngine(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := deps.Handlers

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if deps.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(deps.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		engine.Use(httpMetrics)
	}
	engine.Use(
		middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)

	jwtConfig := middleware.DefaultJWTConfig(deps.JWT)
	jwtConfig.Revocations = deps.Revocations
	jwtConfig.Logger = log
	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
		middleware.TracingAttributeInjector(),
	}

	supervisor := middleware.RequireAccessLevel(identity.AccessLevelSupervisor)
	administrator := middleware.RequireAccessLevel(identity.AccessLevelAdministrator)
	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRatePerMin, cfg.HTTP.LoginBurst)

	r := NewRouter(engine)

	public := NewDomainGroup("public", "")
	public.GET("/health", h.System.Health)
	public.POST("/auth/login", middleware.RateLimit(loginLimiter), h.Auth.Login)
	r.Register(public)

	authGroup := NewDomainGroup("auth", "/auth").Use(authenticated...)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.GetCurrentUser)
	r.Register(authGroup)

	system := NewDomainGroup("system", "/system").Use(authenticated...)
	system.GET("/info", h.System.GetSystemInfo)
	r.Register(system)

	sales := NewDomainGroup("sales", "/sales").Use(authenticated...)
	sales.POST("", h.Sale.Commit)
	sales.GET("", h.Sale.ListByDateRange)
	sales.GET("/:id", h.Sale.GetByID)
	sales.GET("/invoice/:invoice", h.Sale.GetByInvoice)
	sales.POST("/:id/void", supervisor, h.Sale.Void)
	r.Register(sales)

	products := NewDomainGroup("catalog", "/products").Use(authenticated...)
	products.GET("", h.Product.List)
	products.GET("/search", h.Product.Search)
	products.GET("/low-stock", h.Sale.LowStock)
	products.GET("/code/:code", h.Product.GetByCode)
	products.GET("/:id", h.Product.GetByID)
	products.POST("", supervisor, h.Product.Create)
	products.PUT("/:id", supervisor, h.Product.Update)
	products.POST("/:id/stock", supervisor, h.Product.AdjustStock)
	products.DELETE("/:id", administrator, h.Product.Deactivate)
	r.Register(products)

	customers := NewDomainGroup("partner", "/customers").Use(authenticated...)
	customers.GET("", h.Customer.List)
	customers.GET("/search", h.Customer.Search)
	customers.GET("/:id", h.Customer.GetByID)
	customers.POST("", h.Customer.Create)
	customers.PUT("/:id", supervisor, h.Customer.Update)
	customers.DELETE("/:id", supervisor, h.Customer.Deactivate)
	r.Register(customers)

	users := NewDomainGroup("identity", "/users").Use(authenticated...).Use(supervisor)
	users.GET("/:id", h.User.GetByID)
	r.Register(users)

	reports := NewDomainGroup("report", "/reports").Use(authenticated...).Use(supervisor)
	reports.GET("/sales-summary", h.Report.SalesSummary)
	reports.GET("/daily-sales", h.Report.DailySales)
	r.Register(reports)

	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	return engine, nil
}
