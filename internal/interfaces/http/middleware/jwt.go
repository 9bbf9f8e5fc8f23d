package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/infrastructure/auth"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTTeamIDKey  = "jwt_team_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AccessTokenValidator validates access tokens
type AccessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// JWTConfig holds configuration for the JWT middleware
type JWTConfig struct {
	Tokens AccessTokenValidator
	// Blacklist is optional; a lookup failure lets the request through
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// JWTAuth requires a valid bearer access token and stores the caller's
// user and team IDs in the gin context
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
			return
		}

		claims, err := cfg.Tokens.ValidateAccessToken(token)
		if err != nil {
			rejectToken(c, log, err)
			return
		}
		userID, err := claims.GetUserUUID()
		if err != nil {
			rejectToken(c, log, auth.ErrInvalidClaims)
			return
		}
		teamID, err := claims.GetTeamUUID()
		if err != nil {
			rejectToken(c, log, auth.ErrInvalidClaims)
			return
		}

		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				rejectToken(c, log, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, userID)
		c.Set(JWTTeamIDKey, teamID)
		c.Set(TeamIDKey, teamID)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		ctx = logger.WithTeamID(ctx, claims.TeamID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	code, message := "TOKEN_INVALID", "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = "TOKEN_INVALID", "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = "TOKEN_INVALID", "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = "TOKEN_REVOKED", "Token has been revoked"
	}
	log.Debug("JWT authentication failed",
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	abort(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims returns the validated claims, or nil outside an authenticated route
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user's ID
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return getUUID(c, JWTUserIDKey)
}

func getUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	if v, ok := c.Get(key); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

