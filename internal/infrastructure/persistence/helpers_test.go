package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := NewSQLiteDatabase("file::memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.DB.AutoMigrate(models.All()...))
	return database.DB
}

// newMockDB opens gorm on a sqlmock connection speaking the postgres dialect
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func createTestProject(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *project.Project {
	t.Helper()

	p, err := project.NewProject(tenantID, uuid.New(), project.Details{Name: "Website redesign"})
	require.NoError(t, err)
	require.NoError(t, NewGormProjectRepository(db).Save(t.Context(), p))
	return p
}

func newTestDocument(t *testing.T, tenantID uuid.UUID, kind billing.DocumentKind, number string, projectID *uuid.UUID, amount int64) *billing.FinancialDocument {
	t.Helper()

	doc, err := billing.NewFinancialDocument(tenantID, kind, billing.DocumentInput{
		Number:    number,
		PartyName: "Acme Corp",
		ProjectID: projectID,
		Lines: []billing.LineInput{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(amount)},
		},
	})
	require.NoError(t, err)
	return doc
}
