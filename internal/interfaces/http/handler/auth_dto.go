package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/projledger/backend/internal/application/identity"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	TeamName string `json:"team_name" binding:"omitempty,max=100"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password" binding:"required"`
	TeamID   *uuid.UUID `json:"team_id"`
}

// RefreshTokenRequest is the body of POST /auth/refresh
type RefreshTokenRequest struct {
	RefreshToken string     `json:"refresh_token" binding:"required"`
	TeamID       *uuid.UUID `json:"team_id"`
}

// UserResponse describes the authenticated user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TokenResponse is returned by register, login and refresh
type TokenResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	TeamID                uuid.UUID    `json:"team_id"`
	User                  UserResponse `json:"user"`
}

// CurrentUserResponse is returned by GET /auth/me
type CurrentUserResponse struct {
	User   UserResponse   `json:"user"`
	TeamID uuid.UUID      `json:"team_id"`
	Teams  []TeamResponse `json:"teams"`
}

// CreateTeamRequest is the body of POST /teams
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// AddTeamMemberRequest is the body of POST /teams/:id/members
type AddTeamMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TeamMemberResponse describes one team member
type TeamMemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamResponse describes a team as seen by the caller
type TeamResponse struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	OwnerID   uuid.UUID            `json:"owner_id"`
	Role      string               `json:"role"`
	Members   []TeamMemberResponse `json:"members"`
	CreatedAt time.Time            `json:"created_at"`
}

func toUserResponse(u appidentity.UserInfo) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		LastLoginAt: u.LastLoginAt,
	}
}

func toTokenResponse(r *appidentity.AuthResult) TokenResponse {
	return TokenResponse{
		AccessToken:           r.AccessToken,
		RefreshToken:          r.RefreshToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
		TokenType:             r.TokenType,
		TeamID:                r.TeamID,
		User:                  toUserResponse(r.User),
	}
}

func toTeamResponse(t appidentity.TeamInfo) TeamResponse {
	members := make([]TeamMemberResponse, len(t.Members))
	for i, m := range t.Members {
		members[i] = TeamMemberResponse{
			UserID:   m.UserID,
			Email:    m.Email,
			Name:     m.Name,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}
	return TeamResponse{
		ID:        t.ID,
		Name:      t.Name,
		OwnerID:   t.OwnerID,
		Role:      t.Role,
		Members:   members,
		CreatedAt: t.CreatedAt,
	}
}

func toTeamResponses(teams []appidentity.TeamInfo) []TeamResponse {
	out := make([]TeamResponse, len(teams))
	for i, t := range teams {
		out[i] = toTeamResponse(t)
	}
	return out
}
