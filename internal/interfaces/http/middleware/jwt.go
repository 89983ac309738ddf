package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/techsolutions/pos/internal/domain/identity"
	"github.com/techsolutions/pos/internal/infrastructure/auth"
	"github.com/techsolutions/pos/internal/infrastructure/logger"
	"github.com/techsolutions/pos/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// errMissingCredentials marks requests without a bearer token
var errMissingCredentials = errors.New("missing bearer credentials")

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Revocations is optional; when set, logged-out tokens are rejected
	Revocations auth.RevocationList
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/login",
		},
	}
}

// JWTAuthMiddlewareWithConfig authenticates the operator behind each request.
// On success the claims are stored under JWTClaimsKey and the operator id is
// attached to the request context and its logger.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, errMissingCredentials, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, errMissingCredentials, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, log, errMissingCredentials, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}

		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open on store errors
				log.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, log, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)

		ctx := logger.WithOperatorID(c.Request.Context(), claims.UserID)
		reqLogger := logger.FromContext(ctx).With(zap.Int64("operator_id", claims.UserID))
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))
		if _, ok := c.Get(logger.GinLoggerKey); ok {
			c.Set(logger.GinLoggerKey, reqLogger)
		}

		c.Next()
	}
}

// RequireAccessLevel rejects operators below the required access level.
// It must run after JWTAuthMiddlewareWithConfig.
func RequireAccessLevel(required identity.AccessLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !claims.HasAccess(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Requires "+required.String()+" access",
				GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetOperatorID returns the authenticated operator's user id, or 0
func GetOperatorID(c *gin.Context) int64 {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}
