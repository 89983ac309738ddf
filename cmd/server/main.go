package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/techsolutions/pos/internal/application/catalog"
	identityapp "github.com/techsolutions/pos/internal/application/identity"
	partnerapp "github.com/techsolutions/pos/internal/application/partner"
	reportapp "github.com/techsolutions/pos/internal/application/report"
	tradeapp "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/catalog"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/partner"
	"github.com/techsolutions/pos/internal/domain/trade"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"github.com/techsolutions/pos/internal/infrastructure/cache"
	"github.com/techsolutions/pos/internal/infrastructure/config"
	"github.com/techsolutions/pos/internal/infrastructure/demo"
	"github.com/techsolutions/pos/internal/infrastructure/event"
	"github.com/techsolutions/pos/internal/infrastructure/logger"
	"github.com/techsolutions/pos/internal/infrastructure/persistence"
	"github.com/techsolutions/pos/internal/infrastructure/telemetry"
	"github.com/techsolutions/pos/internal/interfaces/http/handler"
	"github.com/techsolutions/pos/internal/interfaces/http/middleware"
	"github.com/techsolutions/pos/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			POS Sale API
//	@version		1.0
//	@description	Point-of-sale checkout, void, catalog and sales reporting
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// storage is the set of repositories backing the services, plus the
// transaction scope the sale engine runs in.
type storage struct {
	scope     tradeapp.TransactionScope
	products  catalog.ProductRepository
	customers partner.CustomerRepository
	users     identity.UserRepository
	reports   trade.SalesReportRepository
	pinger    handler.Pinger
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting POS server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("mode", cfg.App.Mode),
		zap.String("version", version),
	)

	ctx := context.Background()

	provider, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		Profiling: telemetry.ProfilerConfig{
			Enabled:         cfg.Telemetry.ProfilingEnabled,
			ServerAddress:   cfg.Telemetry.PyroscopeAddress,
			ApplicationName: cfg.Telemetry.ServiceName,
			ProfileAlloc:    true,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}()

	saleMetrics, err := telemetry.NewSaleMetrics(provider.Meter("pos/sales"), log)
	if err != nil {
		log.Fatal("Failed to create sale metrics", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(tradeapp.NewLowStockAlertHandler(store.products, saleMetrics, log))
	eventBus.Subscribe(tradeapp.NewSaleMetricsHandler(saleMetrics))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	invoices, err := cache.NewInvoiceGeneratorFactory(cfg.Sales, cfg.Redis,
		cache.WithLogger(log),
		cache.WithLocalFallback(true),
	).Create()
	if err != nil {
		log.Fatal("Failed to create invoice generator", zap.Error(err))
	}

	revocations, closeRevocations := openRevocationList(cfg, log)
	defer closeRevocations()

	engineConfig := tradeapp.DefaultEngineConfig()
	if !cfg.Sales.TaxRate.IsZero() {
		engineConfig.TaxRate = cfg.Sales.TaxRate
	}
	if cfg.Sales.InvoiceMaxAttempts > 0 {
		engineConfig.MaxInvoiceAttempts = cfg.Sales.InvoiceMaxAttempts
	}
	saleEngine := tradeapp.NewSaleEngine(store.scope, invoices, engineConfig, log,
		tradeapp.WithEventPublisher(eventBus),
		tradeapp.WithSaleRecorder(saleMetrics),
	)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(store.users, jwtService, revocations, log)

	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.NewEngine(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		JWT:         jwtService,
		Revocations: revocations,
		Meter:       provider.Meter("pos/http"),
		Handlers: router.Handlers{
			Auth:     handler.NewAuthHandler(authService),
			Sale:     handler.NewSaleHandler(saleEngine),
			Product:  handler.NewProductHandler(catalogapp.NewProductService(store.products, store.scope)),
			Customer: handler.NewCustomerHandler(partnerapp.NewCustomerService(store.customers)),
			Report:   handler.NewReportHandler(reportapp.NewReportService(store.reports)),
			User:     handler.NewUserHandler(identityapp.NewUserService(store.users)),
			System:   handler.NewSystemHandler(cfg.App.Name, version, store.pinger),
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// openStorage returns the seeded in-memory store in demo mode and the
// GORM repositories otherwise.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage, error) {
	if cfg.App.Mode == config.ModeDemo {
		store, err := demo.NewSeededStore(ctx, log)
		if err != nil {
			return nil, fmt.Errorf("seed demo store: %w", err)
		}
		log.Warn("Running in demo mode, data is kept in memory only")
		return &storage{
			scope:     store,
			products:  store.Products(),
			customers: store.Customers(),
			users:     store.Users(),
			reports:   store.Reports(),
			close:     func() error { return nil },
		}, nil
	}

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLogger)
	if err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	if db.Driver == config.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:   db.Driver,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register db tracing: %w", err)
	}

	return &storage{
		scope:     persistence.NewGormSaleTransactionScope(db.DB, log),
		products:  persistence.NewGormProductRepository(db.DB),
		customers: persistence.NewGormCustomerRepository(db.DB),
		users:     persistence.NewGormUserRepository(db.DB),
		reports:   persistence.NewGormSalesReportRepository(db.DB),
		pinger:    db,
		close:     db.Close,
	}, nil
}

// openRevocationList picks the logout store. An unreachable Redis falls
// back to the in-process list.
func openRevocationList(cfg *config.Config, log *zap.Logger) (auth.RevocationList, func()) {
	if cfg.JWT.RevocationStore == config.RevocationRedis {
		list, err := auth.NewRedisRevocationList(cfg.Redis)
		if err == nil {
			log.Info("Using Redis token revocation list", zap.String("addr", cfg.Redis.Addr()))
			return list, func() {
				if err := list.Close(); err != nil {
					log.Error("Error closing revocation list", zap.Error(err))
				}
			}
		}
		log.Warn("Redis unavailable, revoked tokens are kept in memory", zap.Error(err))
	}
	return auth.NewInMemoryRevocationList(), func() {}
}
