package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/identity"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository implements identity.TeamRepository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

func preloadTeamMembers(db *gorm.DB) *gorm.DB {
	return db.Order("joined_at ASC")
}

// Save inserts or updates the team and replaces its member list
func (r *GormTeamRepository) Save(ctx context.Context, team *identity.Team) error {
	model := models.TeamModelFromDomain(team)
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.TeamModel{}).
			Where("id = ?", model.ID).
			Select("*").
			Omit("id", "created_at", "Members").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("team_id = ?", model.ID).Delete(&models.TeamMemberModel{}).Error; err != nil {
			return err
		}
		if len(model.Members) > 0 {
			return tx.Create(&model.Members).Error
		}
		return nil
	})
}

// FindByID finds a team with its members
func (r *GormTeamRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Team, error) {
	var model models.TeamModel
	if err := conn(ctx, r.db).
		Preload("Members", preloadTeamMembers).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByMember lists the teams a user belongs to
func (r *GormTeamRepository) FindByMember(ctx context.Context, userID uuid.UUID) ([]identity.Team, error) {
	db := conn(ctx, r.db)
	var rows []models.TeamModel
	if err := db.
		Where("id IN (?)", db.Model(&models.TeamMemberModel{}).Select("team_id").Where("user_id = ?", userID)).
		Preload("Members", preloadTeamMembers).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	teams := make([]identity.Team, len(rows))
	for i := range rows {
		teams[i] = *rows[i].ToDomain()
	}
	return teams, nil
}

// IsMember reports whether the user belongs to the team
func (r *GormTeamRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.TeamMemberModel{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

var _ identity.TeamRepository = (*GormTeamRepository)(nil)
