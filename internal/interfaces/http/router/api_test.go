package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/techsolutions/pos/internal/application/catalog"
	identityapp "github.com/techsolutions/pos/internal/application/identity"
	partnerapp "github.com/techsolutions/pos/internal/application/partner"
	reportapp "github.com/techsolutions/pos/internal/application/report"
	tradeapp "github.com/techsolutions/pos/internal/application/trade"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"github.com/techsolutions/pos/internal/infrastructure/config"
	"github.com/techsolutions/pos/internal/infrastructure/demo"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
	"github.com/techsolutions/pos/internal/interfaces/http/handler"
	"github.com/techsolutions/pos/internal/interfaces/http/middleware"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

type testAPI struct {
	engine *gin.Engine
	store  *demo.Store
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "pos-test", Mode: config.ModeDemo},
		HTTP: config.HTTPConfig{
			MaxBodySize:      4096,
			CORSAllowOrigins: []string{"https://till.example.com"},
			LoginRatePerMin:  60,
			LoginBurst:       5,
		},
		Telemetry: config.TelemetryConfig{ServiceName: "pos-test"},
	}
}

func newTestAPI(t *testing.T, cfg *config.Config) *testAPI {
	t.Helper()
	middleware.SetupValidator()

	store, err := demo.NewSeededStore(context.Background(), zap.NewNop())
	require.NoError(t, err)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "pos-test",
	})
	revocations := auth.NewInMemoryRevocationList()
	engine := tradeapp.NewSaleEngine(store, tradeapp.NewSequenceInvoiceGenerator("FAC"), tradeapp.DefaultEngineConfig(), zap.NewNop())

	api, err := NewEngine(Dependencies{
		Config:      cfg,
		Logger:      zap.NewNop(),
		JWT:         jwtService,
		Revocations: revocations,
		Meter:       sdkmetric.NewMeterProvider().Meter("router-test"),
		Handlers: Handlers{
			Auth:     handler.NewAuthHandler(identityapp.NewAuthService(store.Users(), jwtService, revocations, zap.NewNop())),
			Sale:     handler.NewSaleHandler(engine),
			Product:  handler.NewProductHandler(catalogapp.NewProductService(store.Products(), store)),
			Customer: handler.NewCustomerHandler(partnerapp.NewCustomerService(store.Customers())),
			Report:   handler.NewReportHandler(reportapp.NewReportService(store.Reports())),
			User:     handler.NewUserHandler(identityapp.NewUserService(store.Users())),
			System:   handler.NewSystemHandler("pos-test", "test", nil),
		},
	})
	require.NoError(t, err)
	return &testAPI{engine: api, store: store}
}

func (a *testAPI) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data identityapp.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t, testConfig())

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := api.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	api := newTestAPI(t, testConfig())

	for _, path := range []string{"/api/v1/sales?start_date=2024-01-01&end_date=2024-01-01", "/api/v1/products", "/api/v1/auth/me"} {
		w := api.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAPI_CheckoutAndVoidFlow(t *testing.T) {
	api := newTestAPI(t, testConfig())
	operator := api.login(t, "operador", "oper123")
	supervisor := api.login(t, "supervisor", "super123")

	w := api.request(t, http.MethodPost, "/api/v1/sales", operator, map[string]any{
		"customer_id": 2,
		"lines": []map[string]any{
			{"product_id": 3, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var commit struct {
		Data tradeapp.CommitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &commit))

	voidPath := fmt.Sprintf("/api/v1/sales/%d/void", commit.Data.SaleID)

	w = api.request(t, http.MethodPost, voidPath, operator, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, errorCodeOf(t, w))

	w = api.request(t, http.MethodPost, voidPath, supervisor, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	product, err := api.store.Products().FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 15, product.Stock)
}

func TestAPI_AccessLevels(t *testing.T) {
	api := newTestAPI(t, testConfig())
	operator := api.login(t, "operador", "oper123")
	supervisor := api.login(t, "supervisor", "super123")
	admin := api.login(t, "admin", "admin123")

	today := time.Now().Format("2006-01-02")
	summary := "/api/v1/reports/sales-summary?start_date=" + today + "&end_date=" + today

	assert.Equal(t, http.StatusForbidden, api.request(t, http.MethodGet, summary, operator, nil).Code)
	assert.Equal(t, http.StatusOK, api.request(t, http.MethodGet, summary, supervisor, nil).Code)

	newProduct := map[string]any{"code": "CAB-001", "name": "Cable HDMI", "price": "9.90", "stock": 50}
	assert.Equal(t, http.StatusForbidden, api.request(t, http.MethodPost, "/api/v1/products", operator, newProduct).Code)
	assert.Equal(t, http.StatusCreated, api.request(t, http.MethodPost, "/api/v1/products", supervisor, newProduct).Code)

	restock := map[string]any{"delta": 5}
	assert.Equal(t, http.StatusForbidden, api.request(t, http.MethodPost, "/api/v1/products/2/stock", operator, restock).Code)
	assert.Equal(t, http.StatusOK, api.request(t, http.MethodPost, "/api/v1/products/2/stock", supervisor, restock).Code)

	assert.Equal(t, http.StatusForbidden, api.request(t, http.MethodDelete, "/api/v1/products/1", supervisor, nil).Code)
	assert.Equal(t, http.StatusNoContent, api.request(t, http.MethodDelete, "/api/v1/products/1", admin, nil).Code)

	assert.Equal(t, http.StatusOK, api.request(t, http.MethodGet, "/api/v1/products/low-stock", operator, nil).Code)
	assert.Equal(t, http.StatusOK, api.request(t, http.MethodGet, "/api/v1/system/info", operator, nil).Code)

	assert.Equal(t, http.StatusForbidden, api.request(t, http.MethodGet, "/api/v1/users/1", operator, nil).Code)
	assert.Equal(t, http.StatusOK, api.request(t, http.MethodGet, "/api/v1/users/1", supervisor, nil).Code)
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t, testConfig())
	token := api.login(t, "operador", "oper123")

	require.Equal(t, http.StatusOK, api.request(t, http.MethodPost, "/api/v1/auth/logout", token, nil).Code)

	w := api.request(t, http.MethodGet, "/api/v1/products", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCodeOf(t, w))
}

func TestAPI_LoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.LoginRatePerMin = 1
	cfg.HTTP.LoginBurst = 2
	api := newTestAPI(t, cfg)

	body := map[string]string{"username": "operador", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w := api.request(t, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := api.request(t, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, errorCodeOf(t, w))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestAPI_BodyTooLarge(t *testing.T) {
	api := newTestAPI(t, testConfig())
	token := api.login(t, "operador", "oper123")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(strings.Repeat("x", 5000)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAPI_CORSPreflight(t *testing.T) {
	api := newTestAPI(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
	req.Header.Set("Origin", "https://till.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://till.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_NoRoute(t *testing.T) {
	api := newTestAPI(t, testConfig())

	w := api.request(t, http.MethodGet, "/api/v1/nothing-here", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, errorCodeOf(t, w))
}
