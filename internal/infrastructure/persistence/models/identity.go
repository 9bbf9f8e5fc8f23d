package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(200);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Active       bool   `gorm:"not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// TeamModel is the persistence model for the Team aggregate.
type TeamModel struct {
	AggregateModel
	Name    string            `gorm:"type:varchar(200);not null"`
	OwnerID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Members []TeamMemberModel `gorm:"foreignKey:TeamID;references:ID"`
}

// TableName returns the table name for GORM
func (TeamModel) TableName() string {
	return "teams"
}

// ToDomain converts the persistence model to a domain Team.
func (m *TeamModel) ToDomain() *identity.Team {
	team := &identity.Team{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		OwnerID:           m.OwnerID,
		Members:           make([]identity.TeamMember, len(m.Members)),
	}
	for i, member := range m.Members {
		team.Members[i] = identity.TeamMember{
			UserID:   member.UserID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		}
	}
	return team
}

// TeamModelFromDomain creates a persistence model from a domain Team.
func TeamModelFromDomain(t *identity.Team) *TeamModel {
	m := &TeamModel{
		Name:    t.Name,
		OwnerID: t.OwnerID,
		Members: make([]TeamMemberModel, len(t.Members)),
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	for i, member := range t.Members {
		m.Members[i] = TeamMemberModel{
			TeamID:   t.ID,
			UserID:   member.UserID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		}
	}
	return m
}

// TeamMemberModel links a user to a team
type TeamMemberModel struct {
	TeamID   uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID         `gorm:"type:uuid;primaryKey;index"`
	Role     identity.TeamRole `gorm:"type:varchar(20);not null;default:'MEMBER'"`
	JoinedAt time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TeamMemberModel) TableName() string {
	return "team_members"
}
