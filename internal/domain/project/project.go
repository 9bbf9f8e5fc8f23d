package project

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeProject is the aggregate type name used in events
const AggregateTypeProject = "Project"

// Status represents the lifecycle status of a project
type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusActive    Status = "ACTIVE"
	StatusOnHold    Status = "ON_HOLD"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid project status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project is the unit of work that financial documents, tasks and
// timesheets attach to. Revenue, Cost and Profit are a cache of the
// roll-up over its documents and are only written through ApplyFinancials.
type Project struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
	Status      Status
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      decimal.Decimal
	OwnerID     uuid.UUID
	MemberIDs   []uuid.UUID
	Financials  Financials
}

// Details are the fields editable through the project endpoints
type Details struct {
	Name        string
	Description string
	Status      Status
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      decimal.Decimal
}

// NewProject creates a project owned by ownerID, who is also its first member
func NewProject(tenantID, ownerID uuid.UUID, d Details) (*Project, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Project owner cannot be empty")
	}
	if d.Status == "" {
		d.Status = StatusPlanning
	}

	p := &Project{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OwnerID:             ownerID,
		MemberIDs:           []uuid.UUID{ownerID},
		Financials:          ZeroFinancials(),
	}
	p.SetCreatedBy(ownerID)
	if err := p.apply(d); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	if !d.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown project status %q", d.Status))
	}
	if d.StartDate != nil && d.EndDate != nil && d.EndDate.Before(*d.StartDate) {
		return shared.NewDomainError("INVALID_DATES", "End date cannot be before start date")
	}
	if d.Budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}

	p.Name = name
	p.Description = strings.TrimSpace(d.Description)
	p.Status = d.Status
	p.StartDate = d.StartDate
	p.EndDate = d.EndDate
	p.Budget = shared.RoundMoney(d.Budget)
	return nil
}

// Update replaces the editable fields. Financial fields are untouched.
func (p *Project) Update(d Details) error {
	if d.Status == "" {
		d.Status = p.Status
	}
	if err := p.apply(d); err != nil {
		return err
	}
	p.Touch()
	return nil
}

// AddMember adds a user to the project team
func (p *Project) AddMember(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if p.HasMember(userID) {
		return shared.NewDomainError("ALREADY_MEMBER", "User is already a project member")
	}
	p.MemberIDs = append(p.MemberIDs, userID)
	p.Touch()
	return nil
}

// RemoveMember removes a user from the project team. The owner stays.
func (p *Project) RemoveMember(userID uuid.UUID) error {
	if userID == p.OwnerID {
		return shared.NewDomainError("CANNOT_REMOVE_OWNER", "The project owner cannot be removed")
	}
	idx := slices.Index(p.MemberIDs, userID)
	if idx < 0 {
		return shared.NewDomainError("NOT_A_MEMBER", "User is not a project member")
	}
	p.MemberIDs = slices.Delete(p.MemberIDs, idx, idx+1)
	p.Touch()
	return nil
}

// HasMember reports whether the user is on the project team
func (p *Project) HasMember(userID uuid.UUID) bool {
	return slices.Contains(p.MemberIDs, userID)
}

// ApplyFinancials overwrites the cached roll-up figures
func (p *Project) ApplyFinancials(f Financials) {
	previous := p.Financials
	p.Financials = f
	p.Touch()
	p.IncrementVersion()
	if !previous.Equal(f) {
		p.AddDomainEvent(NewFinancialsUpdatedEvent(p, previous))
	}
}
