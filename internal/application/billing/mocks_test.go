package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a mock implementation of billing.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.FinancialDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.DocumentFilter) ([]billing.FinancialDocument, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billing.FinancialDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *billing.FinancialDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockDocumentRepository) ExistsBySource(ctx context.Context, tenantID, sourceID uuid.UUID, kind billing.DocumentKind) (bool, error) {
	args := m.Called(ctx, tenantID, sourceID, kind)
	return args.Bool(0), args.Error(1)
}

// MockExpenseRepository is a mock implementation of billing.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter billing.ExpenseFilter) ([]billing.Expense, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billing.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *billing.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockNumberSequence is a mock implementation of billing.NumberSequence
type MockNumberSequence struct {
	mock.Mock
}

func (m *MockNumberSequence) Next(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, year int) (int64, error) {
	args := m.Called(ctx, tenantID, kind, year)
	return args.Get(0).(int64), args.Error(1)
}

// MockProjectLookup is a mock implementation of ProjectLookup
type MockProjectLookup struct {
	mock.Mock
}

func (m *MockProjectLookup) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

// recordingRecomputer records roll-up requests and answers with a fixed status
type recordingRecomputer struct {
	mu     sync.Mutex
	calls  [][]*uuid.UUID
	kinds  []billing.DocumentKind
	result financials.RollupResult
}

func (r *recordingRecomputer) RecomputeProjects(_ context.Context, _ uuid.UUID, kind billing.DocumentKind, ids ...*uuid.UUID) []financials.RollupResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ids)
	r.kinds = append(r.kinds, kind)

	results := make([]financials.RollupResult, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		res := r.result
		res.ProjectID = *id
		res.Kind = kind
		results = append(results, res)
	}
	return results
}

// recordingPublisher keeps every published event and returns err
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
