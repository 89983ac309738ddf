package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/techsolutions/pos/internal/application/identity"
	"github.com/techsolutions/pos/internal/interfaces/http/middleware"
)

// AuthHandler handles operator login, logout and the current-user lookup
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LogoutResponse is returned after a token has been revoked
type LogoutResponse struct {
	Message string `json:"message"`
}

// Login godoc
// @Summary      Operator login
// @Description  Authenticate an operator with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginInput true "Login credentials"
// @Success      200 {object} dto.Response{data=identityapp.LoginResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout godoc
// @Summary      Operator logout
// @Description  Revoke the presented token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=LogoutResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// GetCurrentUser godoc
// @Summary      Get current operator
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}
