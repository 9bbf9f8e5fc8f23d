package identity

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
)

// TeamRole is a member's role within a team
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "OWNER"
	TeamRoleMember TeamRole = "MEMBER"
)

// TeamMember links a user to a team
type TeamMember struct {
	UserID   uuid.UUID
	Role     TeamRole
	JoinedAt time.Time
}

// Team is the tenant boundary: projects and financial documents belong to a team
type Team struct {
	shared.BaseAggregateRoot
	Name    string
	OwnerID uuid.UUID
	Members []TeamMember
}

// NewTeam creates a team owned by ownerID
func NewTeam(name string, ownerID uuid.UUID) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TEAM_NAME", "Team name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_TEAM_NAME", "Team name cannot exceed 200 characters")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Team owner cannot be empty")
	}

	team := &Team{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OwnerID:           ownerID,
		Members:           []TeamMember{{UserID: ownerID, Role: TeamRoleOwner, JoinedAt: time.Now()}},
	}
	team.AddDomainEvent(NewTeamCreatedEvent(team))
	return team, nil
}

// AddMember adds a user to the team
func (t *Team) AddMember(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if t.HasMember(userID) {
		return shared.NewDomainError("ALREADY_MEMBER", "User is already a member of this team")
	}
	t.Members = append(t.Members, TeamMember{UserID: userID, Role: TeamRoleMember, JoinedAt: time.Now()})
	t.Touch()
	t.AddDomainEvent(NewTeamMemberAddedEvent(t, userID))
	return nil
}

// RemoveMember removes a user from the team. The owner cannot be removed.
func (t *Team) RemoveMember(userID uuid.UUID) error {
	if userID == t.OwnerID {
		return shared.NewDomainError("CANNOT_REMOVE_OWNER", "The team owner cannot be removed")
	}
	idx := slices.IndexFunc(t.Members, func(m TeamMember) bool { return m.UserID == userID })
	if idx < 0 {
		return shared.NewDomainError("NOT_A_MEMBER", "User is not a member of this team")
	}
	t.Members = slices.Delete(t.Members, idx, idx+1)
	t.Touch()
	return nil
}

// HasMember reports whether the user belongs to the team
func (t *Team) HasMember(userID uuid.UUID) bool {
	return slices.ContainsFunc(t.Members, func(m TeamMember) bool { return m.UserID == userID })
}

// IsOwner reports whether the user owns the team
func (t *Team) IsOwner(userID uuid.UUID) bool {
	return t.OwnerID == userID
}
