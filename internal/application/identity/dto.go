package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	TeamName string // Optional, defaults to "<name>'s team"
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	TeamID   *uuid.UUID // Team to sign into, defaults to the first team
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	TeamID                uuid.UUID
	User                  UserInfo
}

// UserInfo contains basic user information
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	Name        string
	LastLoginAt *time.Time
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
	TeamID       *uuid.UUID // Switch team while refreshing
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	RemainingTTL time.Duration
}

// CurrentUserResult is the current user with the teams they belong to
type CurrentUserResult struct {
	User   UserInfo
	TeamID uuid.UUID
	Teams  []TeamInfo
}

// TeamInfo describes a team and the caller's role in it
type TeamInfo struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	Role      string
	Members   []TeamMemberInfo
	CreatedAt time.Time
}

// TeamMemberInfo describes one team member
type TeamMemberInfo struct {
	UserID   uuid.UUID
	Email    string
	Name     string
	Role     string
	JoinedAt time.Time
}

// CreateTeamInput contains the input for team creation
type CreateTeamInput struct {
	Name string
}

// AddTeamMemberInput adds an existing user to a team by email
type AddTeamMemberInput struct {
	Email string
}
