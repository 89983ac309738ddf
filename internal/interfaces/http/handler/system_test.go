package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newSystemRouter(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/system/info", h.GetSystemInfo)
	return r
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		pinger := new(MockPinger)
		pinger.On("Ping", mock.Anything).Return(nil)
		router := newSystemRouter(NewSystemHandler("pos-server", "test", pinger))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var health HealthResponse
		decodeData(t, w, &health)
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "up", health.Database)
		pinger.AssertExpectations(t)
	})

	t.Run("database down", func(t *testing.T) {
		pinger := new(MockPinger)
		pinger.On("Ping", mock.Anything).Return(errors.New("connection refused"))
		router := newSystemRouter(NewSystemHandler("pos-server", "test", pinger))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"down"`)
		assert.NotContains(t, w.Body.String(), "refused")
	})

	t.Run("no database", func(t *testing.T) {
		router := newSystemRouter(NewSystemHandler("pos-server", "test", nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"none"`)
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	router := newSystemRouter(NewSystemHandler("pos-server", "1.2.3", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/info", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var info SystemInfoResponse
	decodeData(t, w, &info)
	assert.Equal(t, "pos-server", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
