package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TeamRepository persists teams together with their member list
type TeamRepository interface {
	Save(ctx context.Context, team *Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*Team, error)
	FindByMember(ctx context.Context, userID uuid.UUID) ([]Team, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}
