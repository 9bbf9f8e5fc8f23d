package project

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	created, err := f.projects.Create(ctx, f.tenantID, f.ownerID, CreateProjectRequest{
		Name:      "  Mobile app  ",
		Status:    "active",
		StartDate: &start,
		EndDate:   &end,
		Budget:    decimal.RequireFromString("12000.505"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mobile app", created.Name)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Equal(t, f.ownerID, created.OwnerID)
	assert.Equal(t, []uuid.UUID{f.ownerID}, created.MemberIDs)
	assert.True(t, created.Budget.Equal(decimal.RequireFromString("12000.51")))
	assert.True(t, created.Financials.Revenue.IsZero())

	found, err := f.projects.GetByID(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.projects.GetByID(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProjectService_CreateRejectsBadDates(t *testing.T) {
	f := newProjectFixture(t)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := f.projects.Create(context.Background(), f.tenantID, f.ownerID, CreateProjectRequest{
		Name: "Backwards", StartDate: &start, EndDate: &end,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DATES", domainErr.Code)
}

func TestProjectService_List(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	f.createProject(t, "Website redesign")
	mobile := f.createProject(t, "Mobile app")
	member := f.addMember(t, mobile.ID)

	items, total, err := f.projects.List(ctx, f.tenantID, ProjectListFilter{Search: "mobile"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Mobile app", items[0].Name)

	items, total, err = f.projects.List(ctx, f.tenantID, ProjectListFilter{MemberID: member.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mobile.ID, items[0].ID)

	_, total, err = f.projects.List(ctx, f.tenantID, ProjectListFilter{OrderBy: "name", OrderDir: "asc", PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = f.projects.List(ctx, f.tenantID, ProjectListFilter{MemberID: "not-a-uuid"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestProjectService_UpdateKeepsFinancials(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	created := f.createProject(t, "Website redesign")

	repo := persistence.NewGormProjectRepository(f.db)
	p, err := repo.FindByID(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	p.Financials.Revenue = decimal.NewFromInt(500)
	p.Financials.Profit = decimal.NewFromInt(500)
	require.NoError(t, repo.UpdateFinancials(ctx, p))

	updated, err := f.projects.Update(ctx, f.tenantID, created.ID, UpdateProjectRequest{
		Name:   "Website relaunch",
		Status: "ON_HOLD",
		Budget: decimal.NewFromInt(9000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Website relaunch", updated.Name)
	assert.Equal(t, "ON_HOLD", updated.Status)

	found, err := f.projects.GetByID(ctx, f.tenantID, created.ID)
	require.NoError(t, err)
	assert.True(t, found.Financials.Revenue.Equal(decimal.NewFromInt(500)))
	assert.True(t, found.Budget.Equal(decimal.NewFromInt(9000)))
}

func TestProjectService_Members(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p := f.createProject(t, "Website redesign")

	outsider := uuid.New()
	_, err := f.projects.AddMember(ctx, f.tenantID, p.ID, AddProjectMemberRequest{UserID: outsider})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_A_TEAM_MEMBER", domainErr.Code)

	member := f.addMember(t, p.ID)
	_, err = f.projects.AddMember(ctx, f.tenantID, p.ID, AddProjectMemberRequest{UserID: member})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_MEMBER", domainErr.Code)

	resp, err := f.projects.RemoveMember(ctx, f.tenantID, p.ID, member)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.ownerID}, resp.MemberIDs)

	_, err = f.projects.RemoveMember(ctx, f.tenantID, p.ID, f.ownerID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CANNOT_REMOVE_OWNER", domainErr.Code)
}

func TestProjectService_DeleteRemovesTasksAndTimesheets(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p := f.createProject(t, "Website redesign")
	task := f.createTask(t, p.ID, "Wireframes")
	entry, err := f.timesheets.Create(ctx, f.tenantID, f.ownerID, CreateTimesheetRequest{
		ProjectID: p.ID, WorkDate: time.Now(), Hours: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(ctx, f.tenantID, p.ID))

	_, err = f.projects.GetByID(ctx, f.tenantID, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.tasks.GetByID(ctx, f.tenantID, task.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.timesheets.GetByID(ctx, f.tenantID, entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, f.projects.Delete(ctx, f.tenantID, p.ID), shared.ErrNotFound)
}

func TestProjectService_RecomputeFinancials(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()
	p := f.createProject(t, "Website redesign")
	f.rollup.figures = &financials.ProjectFinancialsResponse{
		ProjectID:          p.ID,
		FinancialsResponse: financials.FinancialsResponse{Revenue: decimal.NewFromInt(350)},
	}

	resp, err := f.projects.RecomputeFinancials(ctx, f.tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "UPDATED", resp.Rollup.Status)
	require.NotNil(t, resp.Financials)
	assert.True(t, resp.Financials.Revenue.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, []billing.DocumentKind{financials.TriggerManual}, f.rollup.kinds)

	f.rollup.status = financials.StatusStale
	resp, err = f.projects.RecomputeFinancials(ctx, f.tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "STALE", resp.Rollup.Status)
	assert.NotEmpty(t, resp.Rollup.Error)
	assert.Nil(t, resp.Financials)

	_, err = f.projects.RecomputeFinancials(ctx, f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Len(t, f.rollup.kinds, 2)
}
