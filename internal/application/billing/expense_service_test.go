package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type expenseFixture struct {
	service   *ExpenseService
	expenses  *MockExpenseRepository
	sequence  *MockNumberSequence
	projects  *MockProjectLookup
	rollup    *recordingRecomputer
	publisher *recordingPublisher
	tenantID  uuid.UUID
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()
	f := &expenseFixture{
		expenses:  new(MockExpenseRepository),
		sequence:  new(MockNumberSequence),
		projects:  new(MockProjectLookup),
		rollup:    &recordingRecomputer{result: financials.RollupResult{Status: financials.StatusUpdated}},
		publisher: &recordingPublisher{},
		tenantID:  uuid.New(),
	}
	f.service = NewExpenseService(f.expenses, f.sequence, f.projects, f.rollup, zap.NewNop())
	f.service.numbers.now = func() time.Time { return fixedNow }
	f.service.SetEventPublisher(f.publisher)
	return f
}

func existingExpense(t *testing.T, tenantID uuid.UUID, projectID *uuid.UUID, amount string) *billing.Expense {
	t.Helper()
	e, err := billing.NewExpense(tenantID, billing.ExpenseInput{
		Number:    "EXP-2026-001",
		Amount:    decimal.RequireFromString(amount),
		Category:  billing.ExpenseCategoryTravel,
		ProjectID: projectID,
	})
	require.NoError(t, err)
	return e
}

func TestExpenseService_Create_DraftSkipsRollup(t *testing.T) {
	f := newExpenseFixture(t)
	projectID := uuid.New()
	userID := uuid.New()

	f.projects.On("Exists", mock.Anything, f.tenantID, projectID).Return(true, nil)
	f.sequence.On("Next", mock.Anything, f.tenantID, billing.KindExpense, 2026).Return(int64(4), nil)
	f.expenses.On("Save", mock.Anything, mock.AnythingOfType("*billing.Expense")).Return(nil)

	result, err := f.service.Create(context.Background(), f.tenantID, userID, CreateExpenseRequest{
		Amount:      decimal.RequireFromString("75.004"),
		Category:    "software",
		Description: "IDE licence",
		ProjectID:   &projectID,
	})

	require.NoError(t, err)
	assert.Equal(t, "EXP-2026-004", result.Expense.Number)
	assert.Equal(t, "SOFTWARE", result.Expense.Category)
	assert.Equal(t, "DRAFT", result.Expense.Status)
	assert.True(t, result.Expense.Amount.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, &userID, result.Expense.CreatedBy)
	assert.Equal(t, "SKIPPED", result.Financials.Status)
	assert.Empty(t, f.rollup.calls)
}

func TestExpenseService_Create_Validation(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.tenantID, uuid.New(), CreateExpenseRequest{Amount: decimal.Zero, Category: "TRAVEL"})
	assert.ErrorIs(t, err, billing.ErrInvalidAmount)

	_, err = f.service.Create(ctx, f.tenantID, uuid.New(), CreateExpenseRequest{Amount: decimal.NewFromInt(5), Category: "yachts"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YACHTS")

	missing := uuid.New()
	f.projects.On("Exists", mock.Anything, f.tenantID, missing).Return(false, nil)
	_, err = f.service.Create(ctx, f.tenantID, uuid.New(), CreateExpenseRequest{Amount: decimal.NewFromInt(5), Category: "TRAVEL", ProjectID: &missing})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	f.expenses.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestExpenseService_ChangeStatus_RunsRollup(t *testing.T) {
	f := newExpenseFixture(t)
	projectID := uuid.New()
	expense := existingExpense(t, f.tenantID, &projectID, "75")

	f.expenses.On("FindByID", mock.Anything, f.tenantID, expense.ID).Return(expense, nil)
	f.expenses.On("Save", mock.Anything, expense).Return(nil)

	result, err := f.service.ChangeStatus(context.Background(), f.tenantID, expense.ID, ChangeStatusRequest{Status: "approved"})

	require.NoError(t, err)
	assert.Equal(t, "APPROVED", result.Expense.Status)
	assert.Equal(t, "UPDATED", result.Financials.Status)
	assert.Equal(t, []string{billing.EventTypeExpenseStatusChanged}, f.publisher.types())
	require.Len(t, f.rollup.calls, 1)
	assert.Equal(t, projectID, *f.rollup.calls[0][0])
	assert.Equal(t, billing.KindExpense, f.rollup.kinds[0])
}

func TestExpenseService_ChangeStatus_PublishFailureIsLogged(t *testing.T) {
	f := newExpenseFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)
	f.service.logger = zap.New(core)
	f.publisher.err = errors.New("bus closed")
	expense := existingExpense(t, f.tenantID, nil, "20")

	f.expenses.On("FindByID", mock.Anything, f.tenantID, expense.ID).Return(expense, nil)
	f.expenses.On("Save", mock.Anything, expense).Return(nil)

	result, err := f.service.ChangeStatus(context.Background(), f.tenantID, expense.ID, ChangeStatusRequest{Status: "approved"})

	require.NoError(t, err)
	assert.Equal(t, "APPROVED", result.Expense.Status)
	entries := logs.FilterMessage("failed to publish domain events").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, billing.EventTypeExpenseStatusChanged, entries[0].ContextMap()["event_type"])
	assert.Equal(t, "bus closed", entries[0].ContextMap()["error"])
	assert.Empty(t, expense.GetDomainEvents())
}

func TestExpenseService_ChangeStatus_Rejections(t *testing.T) {
	f := newExpenseFixture(t)
	expense := existingExpense(t, f.tenantID, nil, "10")
	f.expenses.On("FindByID", mock.Anything, f.tenantID, expense.ID).Return(expense, nil)

	_, err := f.service.ChangeStatus(context.Background(), f.tenantID, expense.ID, ChangeStatusRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, billing.ErrInvalidStatus)

	result, err := f.service.ChangeStatus(context.Background(), f.tenantID, expense.ID, ChangeStatusRequest{Status: "DRAFT"})
	require.NoError(t, err)
	assert.Equal(t, "SKIPPED", result.Financials.Status)

	f.expenses.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, f.rollup.calls)
}

func TestExpenseService_Update_RecomputesBothProjects(t *testing.T) {
	f := newExpenseFixture(t)
	from := uuid.New()
	to := uuid.New()
	expense := existingExpense(t, f.tenantID, &from, "40")

	f.expenses.On("FindByID", mock.Anything, f.tenantID, expense.ID).Return(expense, nil)
	f.projects.On("Exists", mock.Anything, f.tenantID, to).Return(true, nil)
	f.expenses.On("Save", mock.Anything, expense).Return(nil)

	result, err := f.service.Update(context.Background(), f.tenantID, expense.ID, UpdateExpenseRequest{
		Amount:    decimal.NewFromInt(60),
		Category:  "MEALS",
		ProjectID: &to,
	})

	require.NoError(t, err)
	assert.True(t, result.Expense.Amount.Equal(decimal.NewFromInt(60)))
	require.Len(t, f.rollup.calls, 1)
	require.Len(t, f.rollup.calls[0], 2)
	assert.Equal(t, from, *f.rollup.calls[0][0])
	assert.Equal(t, to, *f.rollup.calls[0][1])
}

func TestExpenseService_Update_ApprovedIsLocked(t *testing.T) {
	f := newExpenseFixture(t)
	expense := existingExpense(t, f.tenantID, nil, "40")
	require.NoError(t, expense.ChangeStatus(billing.StatusApproved))
	f.expenses.On("FindByID", mock.Anything, f.tenantID, expense.ID).Return(expense, nil)

	_, err := f.service.Update(context.Background(), f.tenantID, expense.ID, UpdateExpenseRequest{
		Amount:   decimal.NewFromInt(1),
		Category: "OTHER",
	})

	assert.ErrorIs(t, err, billing.ErrNotEditable)
}

func TestExpenseService_Delete(t *testing.T) {
	f := newExpenseFixture(t)
	projectID := uuid.New()
	expense := existingExpense(t, f.tenantID, &projectID, "40")

	f.expenses.On("FindByID", mock.Anything, f.tenantID, expense.ID).Return(expense, nil)
	f.expenses.On("Delete", mock.Anything, f.tenantID, expense.ID).Return(nil)

	status, err := f.service.Delete(context.Background(), f.tenantID, expense.ID)

	require.NoError(t, err)
	assert.Equal(t, "UPDATED", status.Status)
	require.Len(t, f.rollup.calls, 1)
	assert.Equal(t, projectID, *f.rollup.calls[0][0])
}

func TestExpenseService_List(t *testing.T) {
	f := newExpenseFixture(t)
	expenses := []billing.Expense{*existingExpense(t, f.tenantID, nil, "12.50")}

	f.expenses.On("FindAll", mock.Anything, f.tenantID, mock.MatchedBy(func(filter billing.ExpenseFilter) bool {
		return filter.Status == billing.StatusApproved &&
			filter.Category == billing.ExpenseCategoryTravel &&
			filter.ProjectID == nil &&
			filter.OrderBy == "expense_date" && filter.OrderDir == "asc"
	})).Return(expenses, int64(1), nil)

	items, total, err := f.service.List(context.Background(), f.tenantID, ExpenseListFilter{
		Status:   "approved",
		Category: "travel",
		OrderBy:  "expense_date",
		OrderDir: "asc",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "EXP-2026-001", items[0].Number)
}
