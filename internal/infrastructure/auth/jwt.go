package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/infrastructure/config"
)

// Token errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims identifies the operator a token was issued to
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"name,omitempty"`
	AccessLevel int    `json:"access_level"`
}

// AccessToken is a signed operator token
type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	UserID      int64
	Username    string
	DisplayName string
	AccessLevel identity.AccessLevel
}

// JWTService issues and validates HS256 operator tokens. Tokens last one
// shift by default and are not refreshed; the operator logs in again.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// GenerateAccessToken signs a token for the given operator
func (s *JWTService) GenerateAccessToken(input GenerateTokenInput) (*AccessToken, error) {
	if input.UserID <= 0 {
		return nil, ErrMissingUserID
	}

	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(input.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:      input.UserID,
		Username:    input.Username,
		DisplayName: input.DisplayName,
		AccessLevel: int(input.AccessLevel),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &AccessToken{
		Token:     signed,
		ExpiresAt: expiresAt,
		TokenType: "Bearer",
	}, nil
}

// ValidateAccessToken checks signature, issuer and validity window and
// returns the claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID <= 0 {
		return nil, ErrMissingUserID
	}
	if !claims.Level().IsValid() {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Expiration returns the token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// Level returns the operator's access level
func (c *Claims) Level() identity.AccessLevel {
	return identity.AccessLevel(c.AccessLevel)
}

// HasAccess reports whether the operator's level is at least required
func (c *Claims) HasAccess(required identity.AccessLevel) bool {
	return c.Level() >= required
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
