package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/identity"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountInactive    = shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	ErrEmailTaken         = shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	ErrNoTeam             = shared.NewDomainError("NO_TEAM", "User does not belong to any team")
	ErrNotTeamMember      = shared.NewDomainError("NOT_A_TEAM_MEMBER", "User is not a member of this team")
)

// TokenIssuer issues and refreshes token pairs
type TokenIssuer interface {
	GenerateTokenPair(input auth.GenerateTokenInput) (*auth.TokenPair, error)
	ValidateRefreshToken(tokenString string) (*auth.Claims, error)
	RefreshTokenPair(refreshToken string, teamID *uuid.UUID) (*auth.TokenPair, *auth.Claims, error)
}

// AuthService handles registration and authentication
type AuthService struct {
	userRepo       identity.UserRepository
	teamRepo       identity.TeamRepository
	tokens         TokenIssuer
	blacklist      auth.TokenBlacklist
	tx             shared.Transactor
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	teamRepo identity.TeamRepository,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	tx shared.Transactor,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		teamRepo:  teamRepo,
		tokens:    tokens,
		blacklist: blacklist,
		tx:        tx,
		logger:    logger.Named("auth"),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates an account together with a personal team owned by it
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := identity.NewUser(input.Email, input.Name, input.Password)
	if err != nil {
		return nil, err
	}
	teamName := input.TeamName
	if teamName == "" {
		teamName = fmt.Sprintf("%s's team", user.Name)
	}
	team, err := identity.NewTeam(teamName, user.ID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.teamRepo.Save(ctx, team)
	})
	if errors.Is(err, shared.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		s.logger.Error("Failed to register user", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, user.GetDomainEvents()...)
	user.ClearDomainEvents()
	s.publish(ctx, team.GetDomainEvents()...)
	team.ClearDomainEvents()

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("team_id", team.ID.String()))

	return s.issue(user, team.ID)
}

// Login authenticates a user and returns tokens scoped to one of their teams
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountInactive
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	teams, err := s.teamRepo.FindByMember(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	teamID, err := pickTeam(user.ID, teams, input.TeamID)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the login itself succeeded
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("team_id", teamID.String()))

	return s.issue(user, teamID)
}

// RefreshToken exchanges a refresh token for a new pair, optionally switching team
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}

	teamID, err := claims.GetTeamUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid team ID in token")
	}
	if input.TeamID != nil {
		teamID = *input.TeamID
	}
	member, err := s.teamRepo.IsMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotTeamMember
	}

	pair, _, err := s.tokens.RefreshTokenPair(input.RefreshToken, &teamID)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, mapTokenError(err)
	}

	return toAuthResult(pair, user, teamID), nil
}

// Logout revokes the access token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout", zap.String("user_id", input.UserID.String()))

	if input.TokenJTI == "" || input.RemainingTTL <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.RemainingTTL); err != nil {
		s.logger.Error("Failed to blacklist token", zap.String("jti", input.TokenJTI), zap.Error(err))
		return err
	}
	return nil
}

// GetCurrentUser returns the user with the teams they belong to
func (s *AuthService) GetCurrentUser(ctx context.Context, userID, teamID uuid.UUID) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	teams, err := s.teamRepo.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]TeamInfo, len(teams))
	for i := range teams {
		infos[i] = toTeamInfo(&teams[i], userID, nil)
	}
	return &CurrentUserResult{
		User:   toUserInfo(user),
		TeamID: teamID,
		Teams:  infos,
	}, nil
}

func (s *AuthService) issue(user *identity.User, teamID uuid.UUID) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		TeamID: teamID,
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return toAuthResult(pair, user, teamID), nil
}

func (s *AuthService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
}

// pickTeam returns the requested team, or the user's own team, or their first team
func pickTeam(userID uuid.UUID, teams []identity.Team, requested *uuid.UUID) (uuid.UUID, error) {
	if len(teams) == 0 {
		return uuid.Nil, ErrNoTeam
	}
	if requested != nil {
		for i := range teams {
			if teams[i].ID == *requested {
				return teams[i].ID, nil
			}
		}
		return uuid.Nil, ErrNotTeamMember
	}
	for i := range teams {
		if teams[i].IsOwner(userID) {
			return teams[i].ID, nil
		}
	}
	return teams[0].ID, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingUserID),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to refresh token")
	}
}

func toAuthResult(pair *auth.TokenPair, user *identity.User, teamID uuid.UUID) *AuthResult {
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		TeamID:                teamID,
		User:                  toUserInfo(user),
	}
}

func toUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		LastLoginAt: user.LastLoginAt,
	}
}

// toTeamInfo converts a team; users fills in member names when given
func toTeamInfo(team *identity.Team, callerID uuid.UUID, users map[uuid.UUID]identity.User) TeamInfo {
	info := TeamInfo{
		ID:        team.ID,
		Name:      team.Name,
		OwnerID:   team.OwnerID,
		CreatedAt: team.CreatedAt,
	}
	for _, m := range team.Members {
		if m.UserID == callerID {
			info.Role = string(m.Role)
		}
		if users == nil {
			continue
		}
		member := TeamMemberInfo{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
		if u, ok := users[m.UserID]; ok {
			member.Email = u.Email
			member.Name = u.Name
		}
		info.Members = append(info.Members, member)
	}
	return info
}
