package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/techsolutions/pos/internal/application/identity"
)

// UserHandler exposes operator lookups
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetByID godoc
// @Summary      Get operator by ID
// @Description  Returns an operator, active or not, without the password hash
// @Tags         users
// @Produce      json
// @Param        id path int true "Operator ID"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}
