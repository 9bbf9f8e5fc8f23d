package financials

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/project"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProjectRepository is a mock implementation of project.Repository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter project.Filter) ([]project.Project, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]project.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProjectRepository) Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) UpdateFinancials(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

// MockTotalsReader is a mock implementation of billing.TotalsReader
type MockTotalsReader struct {
	mock.Mock
}

func (m *MockTotalsReader) SumByProject(ctx context.Context, tenantID, projectID uuid.UUID) (billing.ProjectTotals, error) {
	args := m.Called(ctx, tenantID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(billing.ProjectTotals), args.Error(1)
}

// passthroughTx runs the unit of work without a database
type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// lockerFunc adapts a function to ProjectLocker
type lockerFunc func(ctx context.Context, projectID uuid.UUID) (func(), error)

func (f lockerFunc) Lock(ctx context.Context, projectID uuid.UUID) (func(), error) {
	return f(ctx, projectID)
}

func noopLocker() ProjectLocker {
	return lockerFunc(func(context.Context, uuid.UUID) (func(), error) {
		return func() {}, nil
	})
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
