package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/techsolutions/pos/internal/application/catalog"
	identityapp "github.com/techsolutions/pos/internal/application/identity"
	partnerapp "github.com/techsolutions/pos/internal/application/partner"
	reportapp "github.com/techsolutions/pos/internal/application/report"
	tradeapp "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"github.com/techsolutions/pos/internal/infrastructure/config"
	"github.com/techsolutions/pos/internal/infrastructure/demo"
	"github.com/techsolutions/pos/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Seeded ids of the demo store
const (
	adminID      int64 = 1
	supervisorID int64 = 2
	operatorID   int64 = 3

	laptopID  int64 = 1
	monitorID int64 = 2
)

type apiFixture struct {
	store  *demo.Store
	engine *tradeapp.SaleEngine
	jwt    *auth.JWTService
	router *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	middleware.SetupValidator()

	store, err := demo.NewSeededStore(context.Background(), zap.NewNop())
	require.NoError(t, err)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "pos-test",
	})
	revocations := auth.NewInMemoryRevocationList()
	engine := tradeapp.NewSaleEngine(store, tradeapp.NewSequenceInvoiceGenerator("FAC"), tradeapp.DefaultEngineConfig(), zap.NewNop())

	authHandler := NewAuthHandler(identityapp.NewAuthService(store.Users(), jwtService, revocations, zap.NewNop()))
	saleHandler := NewSaleHandler(engine)
	productHandler := NewProductHandler(catalogapp.NewProductService(store.Products(), store))
	customerHandler := NewCustomerHandler(partnerapp.NewCustomerService(store.Customers()))
	reportHandler := NewReportHandler(reportapp.NewReportService(store.Reports()))
	userHandler := NewUserHandler(identityapp.NewUserService(store.Users()))

	r := gin.New()
	r.POST("/auth/login", authHandler.Login)

	api := r.Group("", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:  jwtService,
		Revocations: revocations,
	}))
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.GetCurrentUser)
	api.GET("/users/:id", userHandler.GetByID)

	api.POST("/sales", saleHandler.Commit)
	api.GET("/sales", saleHandler.ListByDateRange)
	api.GET("/sales/:id", saleHandler.GetByID)
	api.GET("/sales/invoice/:invoice", saleHandler.GetByInvoice)
	api.POST("/sales/:id/void", saleHandler.Void)

	api.GET("/products", productHandler.List)
	api.GET("/products/search", productHandler.Search)
	api.GET("/products/low-stock", saleHandler.LowStock)
	api.GET("/products/code/:code", productHandler.GetByCode)
	api.GET("/products/:id", productHandler.GetByID)
	api.POST("/products", productHandler.Create)
	api.PUT("/products/:id", productHandler.Update)
	api.POST("/products/:id/stock", productHandler.AdjustStock)
	api.DELETE("/products/:id", productHandler.Deactivate)

	api.GET("/customers", customerHandler.List)
	api.GET("/customers/search", customerHandler.Search)
	api.GET("/customers/:id", customerHandler.GetByID)
	api.POST("/customers", customerHandler.Create)
	api.PUT("/customers/:id", customerHandler.Update)
	api.DELETE("/customers/:id", customerHandler.Deactivate)

	api.GET("/reports/sales-summary", reportHandler.SalesSummary)
	api.GET("/reports/daily-sales", reportHandler.DailySales)

	return &apiFixture{store: store, engine: engine, jwt: jwtService, router: r}
}

func (f *apiFixture) token(t *testing.T, userID int64, level identity.AccessLevel) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:      userID,
		Username:    "tester",
		DisplayName: "Tester",
		AccessLevel: level,
	})
	require.NoError(t, err)
	return token.Token
}

func (f *apiFixture) operatorToken(t *testing.T) string {
	return f.token(t, operatorID, identity.AccessLevelOperator)
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data member of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func saleBody(customerID *int64, lines ...tradeapp.SaleLineInput) map[string]any {
	body := map[string]any{"lines": lines}
	if customerID != nil {
		body["customer_id"] = *customerID
	}
	return body
}

func line(productID int64, qty int) tradeapp.SaleLineInput {
	return tradeapp.SaleLineInput{ProductID: productID, Quantity: qty}
}
