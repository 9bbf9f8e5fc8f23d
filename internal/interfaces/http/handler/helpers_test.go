package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/projledger/backend/internal/application/billing"
	"github.com/projledger/backend/internal/application/financials"
	appidentity "github.com/projledger/backend/internal/application/identity"
	appproject "github.com/projledger/backend/internal/application/project"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/interfaces/http/dto"
	"github.com/projledger/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	testTeamID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testUserID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// newEngine mounts the registrar behind a stub that plays the part of
// JWTAuth and TeamContext
func newEngine(registrars ...interface{ RegisterRoutes(*gin.RouterGroup) }) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, "req-test")
		c.Set(middleware.JWTUserIDKey, testUserID)
		c.Set(middleware.TeamIDKey, testTeamID)
		c.Next()
	})
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}

func doJSON(engine http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	env := decode(t, w)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error
}

// ==================== Mocks ====================

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, input appidentity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) GetCurrentUser(ctx context.Context, userID, teamID uuid.UUID) (*appidentity.CurrentUserResult, error) {
	args := m.Called(ctx, userID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.CurrentUserResult), args.Error(1)
}

type MockTeamService struct{ mock.Mock }

func (m *MockTeamService) Create(ctx context.Context, userID uuid.UUID, input appidentity.CreateTeamInput) (*appidentity.TeamInfo, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.TeamInfo), args.Error(1)
}

func (m *MockTeamService) ListMine(ctx context.Context, userID uuid.UUID) ([]appidentity.TeamInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appidentity.TeamInfo), args.Error(1)
}

func (m *MockTeamService) AddMember(ctx context.Context, callerID, teamID uuid.UUID, input appidentity.AddTeamMemberInput) (*appidentity.TeamInfo, error) {
	args := m.Called(ctx, callerID, teamID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.TeamInfo), args.Error(1)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, callerID, teamID, userID uuid.UUID) (*appidentity.TeamInfo, error) {
	args := m.Called(ctx, callerID, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.TeamInfo), args.Error(1)
}

type MockProjectService struct{ mock.Mock }

func (m *MockProjectService) Create(ctx context.Context, tenantID, userID uuid.UUID, req appproject.CreateProjectRequest) (*appproject.ProjectResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appproject.ProjectResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, tenantID uuid.UUID, filter appproject.ProjectListFilter) ([]appproject.ProjectResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appproject.ProjectResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectService) Update(ctx context.Context, tenantID, id uuid.UUID, req appproject.UpdateProjectRequest) (*appproject.ProjectResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProjectService) AddMember(ctx context.Context, tenantID, id uuid.UUID, req appproject.AddProjectMemberRequest) (*appproject.ProjectResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) RemoveMember(ctx context.Context, tenantID, id, userID uuid.UUID) (*appproject.ProjectResponse, error) {
	args := m.Called(ctx, tenantID, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) GetFinancials(ctx context.Context, tenantID, id uuid.UUID) (*financials.ProjectFinancialsResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financials.ProjectFinancialsResponse), args.Error(1)
}

func (m *MockProjectService) RecomputeFinancials(ctx context.Context, tenantID, id uuid.UUID) (*appproject.RecomputeResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.RecomputeResponse), args.Error(1)
}

type MockTaskService struct{ mock.Mock }

func (m *MockTaskService) Create(ctx context.Context, tenantID, projectID uuid.UUID, req appproject.CreateTaskRequest) (*appproject.TaskResponse, error) {
	args := m.Called(ctx, tenantID, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TaskResponse), args.Error(1)
}

func (m *MockTaskService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appproject.TaskResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TaskResponse), args.Error(1)
}

func (m *MockTaskService) ListByProject(ctx context.Context, tenantID, projectID uuid.UUID, filter appproject.TaskListFilter) ([]appproject.TaskResponse, int64, error) {
	args := m.Called(ctx, tenantID, projectID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appproject.TaskResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskService) Board(ctx context.Context, tenantID, projectID uuid.UUID) (*appproject.BoardResponse, error) {
	args := m.Called(ctx, tenantID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.BoardResponse), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, tenantID, id uuid.UUID, req appproject.UpdateTaskRequest) (*appproject.TaskResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TaskResponse), args.Error(1)
}

func (m *MockTaskService) Move(ctx context.Context, tenantID, id uuid.UUID, req appproject.MoveTaskRequest) (*appproject.TaskResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TaskResponse), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockTimesheetService struct{ mock.Mock }

func (m *MockTimesheetService) Create(ctx context.Context, tenantID, userID uuid.UUID, req appproject.CreateTimesheetRequest) (*appproject.TimesheetResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TimesheetResponse), args.Error(1)
}

func (m *MockTimesheetService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appproject.TimesheetResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TimesheetResponse), args.Error(1)
}

func (m *MockTimesheetService) List(ctx context.Context, tenantID uuid.UUID, filter appproject.TimesheetListFilter) ([]appproject.TimesheetResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appproject.TimesheetResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTimesheetService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req appproject.UpdateTimesheetRequest) (*appproject.TimesheetResponse, error) {
	args := m.Called(ctx, tenantID, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TimesheetResponse), args.Error(1)
}

func (m *MockTimesheetService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, userID, id).Error(0)
}

func (m *MockTimesheetService) Summary(ctx context.Context, tenantID, projectID uuid.UUID) (*appproject.TimesheetSummaryResponse, error) {
	args := m.Called(ctx, tenantID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appproject.TimesheetSummaryResponse), args.Error(1)
}

type MockDocumentService struct{ mock.Mock }

func (m *MockDocumentService) Create(ctx context.Context, tenantID, userID uuid.UUID, kind billing.DocumentKind, req appbilling.CreateDocumentRequest) (*appbilling.DocumentResult, error) {
	args := m.Called(ctx, tenantID, userID, kind, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.DocumentResult), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*appbilling.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, filter appbilling.DocumentListFilter) ([]appbilling.DocumentResponse, int64, error) {
	args := m.Called(ctx, tenantID, kind, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appbilling.DocumentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentService) Update(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID, req appbilling.UpdateDocumentRequest) (*appbilling.DocumentResult, error) {
	args := m.Called(ctx, tenantID, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.DocumentResult), args.Error(1)
}

func (m *MockDocumentService) ChangeStatus(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID, req appbilling.ChangeStatusRequest) (*appbilling.DocumentResult, error) {
	args := m.Called(ctx, tenantID, kind, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.DocumentResult), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*financials.RollupStatusResponse, error) {
	args := m.Called(ctx, tenantID, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financials.RollupStatusResponse), args.Error(1)
}

func (m *MockDocumentService) Convert(ctx context.Context, tenantID, userID uuid.UUID, sourceKind billing.DocumentKind, sourceID uuid.UUID, req appbilling.ConvertDocumentRequest) (*appbilling.DocumentResult, error) {
	args := m.Called(ctx, tenantID, userID, sourceKind, sourceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.DocumentResult), args.Error(1)
}

type MockExpenseService struct{ mock.Mock }

func (m *MockExpenseService) Create(ctx context.Context, tenantID, userID uuid.UUID, req appbilling.CreateExpenseRequest) (*appbilling.ExpenseResult, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.ExpenseResult), args.Error(1)
}

func (m *MockExpenseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*appbilling.ExpenseResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.ExpenseResponse), args.Error(1)
}

func (m *MockExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter appbilling.ExpenseListFilter) ([]appbilling.ExpenseResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appbilling.ExpenseResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseService) Update(ctx context.Context, tenantID, id uuid.UUID, req appbilling.UpdateExpenseRequest) (*appbilling.ExpenseResult, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.ExpenseResult), args.Error(1)
}

func (m *MockExpenseService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req appbilling.ChangeStatusRequest) (*appbilling.ExpenseResult, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbilling.ExpenseResult), args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, tenantID, id uuid.UUID) (*financials.RollupStatusResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financials.RollupStatusResponse), args.Error(1)
}

var (
	_ AuthService      = (*MockAuthService)(nil)
	_ TeamService      = (*MockTeamService)(nil)
	_ ProjectService   = (*MockProjectService)(nil)
	_ TaskService      = (*MockTaskService)(nil)
	_ TimesheetService = (*MockTimesheetService)(nil)
	_ DocumentService  = (*MockDocumentService)(nil)
	_ ExpenseService   = (*MockExpenseService)(nil)
)
