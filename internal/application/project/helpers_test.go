package project

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/infrastructure/persistence"
	"github.com/projledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeTeams treats every user in members as part of the team
type fakeTeams struct {
	members map[uuid.UUID]bool
}

func (f *fakeTeams) IsMember(_ context.Context, _, userID uuid.UUID) (bool, error) {
	return f.members[userID], nil
}

// fakeRollup records manual recomputes and answers with a fixed status
type fakeRollup struct {
	mu      sync.Mutex
	status  financials.Status
	kinds   []billing.DocumentKind
	figures *financials.ProjectFinancialsResponse
}

func (f *fakeRollup) RecomputeProjectFinancials(_ context.Context, _ uuid.UUID, projectID *uuid.UUID, kind billing.DocumentKind) financials.RollupResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	result := financials.RollupResult{Status: f.status, ProjectID: *projectID, Kind: kind}
	if f.status == financials.StatusStale {
		result.Err = financials.ErrLockTimeout
	}
	return result
}

func (f *fakeRollup) GetFinancials(_ context.Context, _, projectID uuid.UUID) (*financials.ProjectFinancialsResponse, error) {
	if f.figures != nil {
		return f.figures, nil
	}
	return &financials.ProjectFinancialsResponse{ProjectID: projectID}, nil
}

type projectFixture struct {
	db         *gorm.DB
	projects   *ProjectService
	tasks      *TaskService
	timesheets *TimesheetService
	teams      *fakeTeams
	rollup     *fakeRollup
	tenantID   uuid.UUID
	ownerID    uuid.UUID
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()

	database, err := persistence.NewSQLiteDatabase("file::memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.DB.AutoMigrate(models.All()...))

	db := database.DB
	logger := zap.NewNop()
	ownerID := uuid.New()
	projects := persistence.NewGormProjectRepository(db)
	tasks := persistence.NewGormTaskRepository(db)
	teams := &fakeTeams{members: map[uuid.UUID]bool{ownerID: true}}
	rollup := &fakeRollup{status: financials.StatusUpdated}

	return &projectFixture{
		db:         db,
		projects:   NewProjectService(projects, teams, rollup, logger),
		tasks:      NewTaskService(tasks, projects, logger),
		timesheets: NewTimesheetService(persistence.NewGormTimesheetRepository(db), projects, tasks, persistence.NewTxManager(db), logger),
		teams:      teams,
		rollup:     rollup,
		tenantID:   uuid.New(),
		ownerID:    ownerID,
	}
}

func (f *projectFixture) createProject(t *testing.T, name string) *ProjectResponse {
	t.Helper()
	p, err := f.projects.Create(context.Background(), f.tenantID, f.ownerID, CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return p
}

// addMember puts a new user on the team and the project
func (f *projectFixture) addMember(t *testing.T, projectID uuid.UUID) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	f.teams.members[userID] = true
	_, err := f.projects.AddMember(context.Background(), f.tenantID, projectID, AddProjectMemberRequest{UserID: userID})
	require.NoError(t, err)
	return userID
}

func (f *projectFixture) createTask(t *testing.T, projectID uuid.UUID, title string) *TaskResponse {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), f.tenantID, projectID, CreateTaskRequest{Title: title})
	require.NoError(t, err)
	return task
}

func boardTitles(board *BoardResponse, status project.TaskStatus) []string {
	for _, column := range board.Columns {
		if column.Status != string(status) {
			continue
		}
		titles := make([]string, len(column.Tasks))
		for i, task := range column.Tasks {
			titles[i] = task.Title
		}
		return titles
	}
	return nil
}
