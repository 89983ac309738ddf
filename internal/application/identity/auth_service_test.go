package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"github.com/techsolutions/pos/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

var (
	supervisorOnce sync.Once
	supervisorHash string
)

// newSupervisor returns a fresh user sharing one bcrypt hash across tests
func newSupervisor(t *testing.T) *identity.User {
	t.Helper()
	supervisorOnce.Do(func() {
		u, err := identity.NewUser("supervisor", "Supervisor de Ventas", "super123", identity.AccessLevelSupervisor)
		require.NoError(t, err)
		supervisorHash = u.PasswordHash
	})
	return &identity.User{
		BaseEntity:   shared.BaseEntity{ID: 2, CreatedAt: time.Now()},
		Username:     "supervisor",
		DisplayName:  "Supervisor de Ventas",
		PasswordHash: supervisorHash,
		AccessLevel:  identity.AccessLevelSupervisor,
		Active:       true,
	}
}

type authFixture struct {
	repo        *MockUserRepository
	jwt         *auth.JWTService
	revocations *auth.InMemoryRevocationList
	svc         *AuthService
}

func newAuthFixture() *authFixture {
	repo := new(MockUserRepository)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough",
		AccessTokenExpiration: time.Hour,
		Issuer:                "pos-test",
	})
	revocations := auth.NewInMemoryRevocationList()
	return &authFixture{
		repo:        repo,
		jwt:         jwtService,
		revocations: revocations,
		svc:         NewAuthService(repo, jwtService, revocations, zap.NewNop()),
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token carrying id and access level", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByUsername", ctx, "supervisor").Return(newSupervisor(t), nil)

		result, err := f.svc.Login(ctx, LoginInput{Username: " supervisor ", Password: "super123"})

		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "supervisor", result.User.Role)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(2), claims.UserID)
		assert.Equal(t, identity.AccessLevelSupervisor, claims.Level())
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByUsername", ctx, "supervisor").Return(newSupervisor(t), nil)

		_, err := f.svc.Login(ctx, LoginInput{Username: "supervisor", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user looks like a wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Username: "ghost", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newAuthFixture()
		user := newSupervisor(t)
		user.Active = false
		f.repo.On("FindByUsername", ctx, "supervisor").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginInput{Username: "supervisor", Password: "super123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("storage failure is not masked", func(t *testing.T) {
		f := newAuthFixture()
		boom := errors.New("db down")
		f.repo.On("FindByUsername", ctx, "supervisor").Return(nil, boom)

		_, err := f.svc.Login(ctx, LoginInput{Username: "supervisor", Password: "super123"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	token, err := f.jwt.GenerateAccessToken(auth.GenerateTokenInput{UserID: 2, Username: "supervisor", AccessLevel: identity.AccessLevelSupervisor})
	require.NoError(t, err)
	claims, err := f.jwt.ValidateAccessToken(token.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims))

	revoked, err := f.revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, f.svc.Logout(ctx, nil), shared.ErrUnauthorized)
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	inactive := newSupervisor(t)
	inactive.ID = 3
	inactive.Active = false
	f.repo.On("FindByID", ctx, int64(2)).Return(newSupervisor(t), nil)
	f.repo.On("FindByID", ctx, int64(3)).Return(inactive, nil)
	f.repo.On("FindByID", ctx, int64(4)).Return(nil, shared.ErrNotFound)

	user, err := f.svc.GetCurrentUser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Supervisor de Ventas", user.DisplayName)

	_, err = f.svc.GetCurrentUser(ctx, 3)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = f.svc.GetCurrentUser(ctx, 4)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByID", ctx, int64(2)).Return(newSupervisor(t), nil)

	user, err := NewUserService(repo).GetByID(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, user.AccessLevel)
	assert.Equal(t, "supervisor", user.Username)
}
