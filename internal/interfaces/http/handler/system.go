package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	store     Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. store may be nil when the
// service runs without a database.
func NewSystemHandler(name, version string, store Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		store:     store,
		startTime: time.Now(),
	}
}

// HealthResponse is the health probe body
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"up"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"pos-server"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

const healthTimeout = 2 * time.Second

// Health godoc
// @Summary      Health check
// @Description  Reports 503 when the database does not answer
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "healthy", Database: "none"}
	if h.store == nil {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		_ = c.Error(err)
		resp.Status = "unhealthy"
		resp.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}

	resp.Database = "up"
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
