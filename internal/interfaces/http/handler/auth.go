package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/projledger/backend/internal/application/identity"
	"github.com/projledger/backend/internal/interfaces/http/middleware"
)

// AuthService is the subset of the identity auth service used over HTTP
type AuthService interface {
	Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.AuthResult, error)
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.AuthResult, error)
	RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.AuthResult, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	GetCurrentUser(ctx context.Context, userID, teamID uuid.UUID) (*appidentity.CurrentUserResult, error)
}

// AuthHandler serves registration, login and token endpoints
type AuthHandler struct {
	BaseHandler
	auth    AuthService
	limiter gin.HandlerFunc
}

// NewAuthHandler creates a new AuthHandler. limiter guards the
// credential endpoints and may be nil.
func NewAuthHandler(auth AuthService, limiter gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// RegisterPublic mounts the unauthenticated routes
func (h *AuthHandler) RegisterPublic(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	if h.limiter != nil {
		g.Use(h.limiter)
	}
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
}

// RegisterRoutes mounts the authenticated routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.Me)
}

// Register creates a user together with their personal team
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.auth.Register(c.Request.Context(), appidentity.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		TeamName: req.TeamName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTokenResponse(result))
}

// Login issues a token pair scoped to one team
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		TeamID:   req.TeamID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTokenResponse(result))
}

// Refresh exchanges a refresh token, optionally switching team
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.auth.RefreshToken(c.Request.Context(), appidentity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
		TeamID:       req.TeamID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTokenResponse(result))
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := middleware.GetUserID(c)
	err := h.auth.Logout(c.Request.Context(), appidentity.LogoutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		RemainingTTL: claims.GetRemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the caller, the active team and all their teams
func (h *AuthHandler) Me(c *gin.Context) {
	teamID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	result, err := h.auth.GetCurrentUser(c.Request.Context(), userID, teamID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CurrentUserResponse{
		User:   toUserResponse(result.User),
		TeamID: result.TeamID,
		Teams:  toTeamResponses(result.Teams),
	})
}
