package identity

import (
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeUser = "User"
	AggregateTypeTeam = "Team"
)

// Event type constants
const (
	EventTypeUserRegistered  = "UserRegistered"
	EventTypeTeamCreated     = "TeamCreated"
	EventTypeTeamMemberAdded = "TeamMemberAdded"
)

// UserRegisteredEvent is raised when a new account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(u *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, u.ID, uuid.Nil),
		Email:           u.Email,
	}
}

// TeamCreatedEvent is raised when a team is created
type TeamCreatedEvent struct {
	shared.BaseDomainEvent
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewTeamCreatedEvent creates a new TeamCreatedEvent
func NewTeamCreatedEvent(t *Team) *TeamCreatedEvent {
	return &TeamCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeamCreated, AggregateTypeTeam, t.ID, t.ID),
		Name:            t.Name,
		OwnerID:         t.OwnerID,
	}
}

// TeamMemberAddedEvent is raised when a user joins a team
type TeamMemberAddedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewTeamMemberAddedEvent creates a new TeamMemberAddedEvent
func NewTeamMemberAddedEvent(t *Team, userID uuid.UUID) *TeamMemberAddedEvent {
	return &TeamMemberAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTeamMemberAdded, AggregateTypeTeam, t.ID, t.ID),
		UserID:          userID,
	}
}
