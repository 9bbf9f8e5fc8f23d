package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/identity"
	"github.com/projledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TeamService manages teams and their members
type TeamService struct {
	teamRepo       identity.TeamRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(teamRepo identity.TeamRepository, userRepo identity.UserRepository, logger *zap.Logger) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		logger:   logger.Named("team"),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *TeamService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a team owned by the caller
func (s *TeamService) Create(ctx context.Context, userID uuid.UUID, input CreateTeamInput) (*TeamInfo, error) {
	team, err := identity.NewTeam(input.Name, userID)
	if err != nil {
		return nil, err
	}
	if err := s.teamRepo.Save(ctx, team); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, team)

	s.logger.Info("Team created", zap.String("team_id", team.ID.String()), zap.String("owner_id", userID.String()))
	return s.describe(ctx, team, userID)
}

// ListMine lists the teams the caller belongs to
func (s *TeamService) ListMine(ctx context.Context, userID uuid.UUID) ([]TeamInfo, error) {
	teams, err := s.teamRepo.FindByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]TeamInfo, 0, len(teams))
	for i := range teams {
		info, err := s.describe(ctx, &teams[i], userID)
		if err != nil {
			return nil, err
		}
		items = append(items, *info)
	}
	return items, nil
}

// AddMember adds an existing user, looked up by email. Only the owner may add members.
func (s *TeamService) AddMember(ctx context.Context, callerID, teamID uuid.UUID, input AddTeamMemberInput) (*TeamInfo, error) {
	team, err := s.ownedTeam(ctx, callerID, teamID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("No user with this email")
		}
		return nil, err
	}

	if err := team.AddMember(user.ID); err != nil {
		return nil, err
	}
	if err := s.teamRepo.Save(ctx, team); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, team)

	s.logger.Info("Team member added", zap.String("team_id", team.ID.String()), zap.String("user_id", user.ID.String()))
	return s.describe(ctx, team, callerID)
}

// RemoveMember removes a member. Only the owner may remove members.
func (s *TeamService) RemoveMember(ctx context.Context, callerID, teamID, userID uuid.UUID) (*TeamInfo, error) {
	team, err := s.ownedTeam(ctx, callerID, teamID)
	if err != nil {
		return nil, err
	}
	if err := team.RemoveMember(userID); err != nil {
		return nil, err
	}
	if err := s.teamRepo.Save(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("Team member removed", zap.String("team_id", team.ID.String()), zap.String("user_id", userID.String()))
	return s.describe(ctx, team, callerID)
}

// IsMember reports whether the user belongs to the team
func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	return s.teamRepo.IsMember(ctx, teamID, userID)
}

func (s *TeamService) ownedTeam(ctx context.Context, callerID, teamID uuid.UUID) (*identity.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.HasMember(callerID) {
		// hide teams the caller cannot see
		return nil, shared.ErrNotFound.WithMessage("Team not found")
	}
	if !team.IsOwner(callerID) {
		return nil, shared.ErrForbidden.WithMessage("Only the team owner can manage members")
	}
	return team, nil
}

func (s *TeamService) describe(ctx context.Context, team *identity.Team, callerID uuid.UUID) (*TeamInfo, error) {
	ids := make([]uuid.UUID, len(team.Members))
	for i, m := range team.Members {
		ids[i] = m.UserID
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]identity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	info := toTeamInfo(team, callerID, byID)
	return &info, nil
}

func (s *TeamService) publishEvents(ctx context.Context, team *identity.Team) {
	events := team.GetDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	team.ClearDomainEvents()
}
