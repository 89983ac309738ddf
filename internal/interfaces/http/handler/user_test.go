package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	identityapp "github.com/techsolutions/pos/internal/application/identity"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
)

func TestUserHandler_GetByID(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, supervisorID, identity.AccessLevelSupervisor)

	w := f.do(t, http.MethodGet, "/users/3", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user identityapp.UserResponse
	decodeData(t, w, &user)
	assert.Equal(t, operatorID, user.ID)
	assert.Equal(t, "operador", user.Username)
	assert.Equal(t, 1, user.AccessLevel)
	assert.NotContains(t, w.Body.String(), "password")

	w = f.do(t, http.MethodGet, "/users/99", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)

	w = f.do(t, http.MethodGet, "/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
