package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/domain/shared"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials hides whether the username or the password was wrong
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// AuthService handles operator login and logout
type AuthService struct {
	userRepo    identity.UserRepository
	jwtService  *auth.JWTService
	revocations auth.RevocationList
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		logger:      logger,
	}
}

// Login verifies the password of an active operator and issues a token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		s.logger.Warn("Login for inactive user", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AccessLevel: user.AccessLevel,
	})
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.AccessLevel.String()),
	)

	return &LoginResult{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserResponse(user),
	}, nil
}

// Logout revokes the token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return shared.ErrUnauthorized
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}
	s.logger.Info("User logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// GetCurrentUser returns the operator behind a token. Deactivated operators
// are rejected even while their token is still valid.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, shared.ErrUnauthorized
	}
	response := ToUserResponse(user)
	return &response, nil
}
