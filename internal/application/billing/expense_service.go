package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpenseService handles expenses. Only approved and paid expenses reach the
// project cost, so status changes run the roll-up.
type ExpenseService struct {
	expenses       billing.ExpenseRepository
	projects       ProjectLookup
	rollup         FinancialsRecomputer
	numbers        *numberAllocator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenses billing.ExpenseRepository,
	sequence billing.NumberSequence,
	projects ProjectLookup,
	rollup FinancialsRecomputer,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenses: expenses,
		projects: projects,
		rollup:   rollup,
		logger:   logger,
		numbers: &numberAllocator{
			sequence: sequence,
			attempts: DefaultNumberAttempts,
			now:      time.Now,
			logger:   logger.Named("expense_numbering"),
		},
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create records a draft expense
func (s *ExpenseService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseResult, error) {
	if err := checkProject(ctx, s.projects, tenantID, req.ProjectID); err != nil {
		return nil, err
	}

	expense, err := billing.NewExpense(tenantID, billing.ExpenseInput{
		Number:      req.Number,
		Amount:      req.Amount,
		Category:    parseCategory(req.Category),
		Description: req.Description,
		ExpenseDate: dateOrZero(req.ExpenseDate),
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		return nil, err
	}
	expense.SetCreatedBy(userID)

	err = s.numbers.insert(ctx, tenantID, billing.KindExpense, req.Number != "",
		func(number string) { expense.Number = number },
		func(ctx context.Context) error { return s.expenses.Save(ctx, expense) },
	)
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense)

	// a draft never counts toward cost
	return &ExpenseResult{
		Expense:    ToExpenseResponse(expense),
		Financials: financials.ToRollupStatusResponse(),
	}, nil
}

// GetByID retrieves an expense
func (s *ExpenseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToExpenseResponse(expense), nil
}

// List lists expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	projectID, err := parseOptionalID(filter.ProjectID, "project_id")
	if err != nil {
		return nil, 0, err
	}
	domainFilter := billing.ExpenseFilter{
		Filter:    buildFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		Status:    parseStatus(filter.Status),
		Category:  parseCategory(filter.Category),
		ProjectID: projectID,
	}

	expenses, total, err := s.expenses.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		items[i] = *ToExpenseResponse(&expenses[i])
	}
	return items, total, nil
}

// Update edits an expense that is not yet approved or paid
func (s *ExpenseService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResult, error) {
	expense, err := s.expenses.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := checkProject(ctx, s.projects, tenantID, req.ProjectID); err != nil {
		return nil, err
	}

	previousProject := expense.ProjectID
	if err := expense.Update(billing.ExpenseInput{
		Amount:      req.Amount,
		Category:    parseCategory(req.Category),
		Description: req.Description,
		ExpenseDate: dateOrZero(req.ExpenseDate),
		ProjectID:   req.ProjectID,
	}); err != nil {
		return nil, err
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}

	results := s.rollup.RecomputeProjects(ctx, tenantID, billing.KindExpense, previousProject, expense.ProjectID)
	return &ExpenseResult{
		Expense:    ToExpenseResponse(expense),
		Financials: financials.ToRollupStatusResponse(results...),
	}, nil
}

// ChangeStatus moves an expense through DRAFT, SUBMITTED, APPROVED, REJECTED and PAID
func (s *ExpenseService) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, req ChangeStatusRequest) (*ExpenseResult, error) {
	expense, err := s.expenses.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	previous := expense.Status
	if err := expense.ChangeStatus(parseStatus(req.Status)); err != nil {
		return nil, err
	}
	if expense.Status == previous {
		return &ExpenseResult{
			Expense:    ToExpenseResponse(expense),
			Financials: financials.ToRollupStatusResponse(),
		}, nil
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, expense)

	results := s.rollup.RecomputeProjects(ctx, tenantID, billing.KindExpense, expense.ProjectID)
	return &ExpenseResult{
		Expense:    ToExpenseResponse(expense),
		Financials: financials.ToRollupStatusResponse(results...),
	}, nil
}

// Delete hard-deletes an expense
func (s *ExpenseService) Delete(ctx context.Context, tenantID, id uuid.UUID) (*financials.RollupStatusResponse, error) {
	expense, err := s.expenses.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.expenses.Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}

	results := s.rollup.RecomputeProjects(ctx, tenantID, billing.KindExpense, expense.ProjectID)
	return financials.ToRollupStatusResponse(results...), nil
}

func (s *ExpenseService) publishEvents(ctx context.Context, expense *billing.Expense) {
	publishAll(ctx, s.eventPublisher, s.logger, expense.GetDomainEvents()...)
	expense.ClearDomainEvents()
}

func parseCategory(s string) billing.ExpenseCategory {
	return billing.ExpenseCategory(strings.ToUpper(strings.TrimSpace(s)))
}
