package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeExpense is the aggregate type name used in events
const AggregateTypeExpense = "Expense"

// ExpenseCategory groups expenses for reporting
type ExpenseCategory string

const (
	ExpenseCategoryTravel    ExpenseCategory = "TRAVEL"
	ExpenseCategoryMeals     ExpenseCategory = "MEALS"
	ExpenseCategorySupplies  ExpenseCategory = "SUPPLIES"
	ExpenseCategorySoftware  ExpenseCategory = "SOFTWARE"
	ExpenseCategoryEquipment ExpenseCategory = "EQUIPMENT"
	ExpenseCategoryServices  ExpenseCategory = "SERVICES"
	ExpenseCategoryOther     ExpenseCategory = "OTHER"
)

// IsValid checks if the category is known
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryTravel, ExpenseCategoryMeals, ExpenseCategorySupplies, ExpenseCategorySoftware,
		ExpenseCategoryEquipment, ExpenseCategoryServices, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is a single spend record. Only approved or paid expenses count
// toward their project's cost.
type Expense struct {
	shared.TenantAggregateRoot
	Number      string
	Amount      decimal.Decimal
	Category    ExpenseCategory
	Description string
	ExpenseDate time.Time
	ProjectID   *uuid.UUID
	Status      Status
}

// ExpenseInput carries the caller-supplied fields of an expense
type ExpenseInput struct {
	Number      string
	Amount      decimal.Decimal
	Category    ExpenseCategory
	Description string
	ExpenseDate time.Time
	ProjectID   *uuid.UUID
}

// NewExpense creates a draft expense
func NewExpense(tenantID uuid.UUID, in ExpenseInput) (*Expense, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	e := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              StatusDraft,
	}
	if in.Number != "" {
		if err := e.AssignNumber(in.Number); err != nil {
			return nil, err
		}
	}
	if err := e.apply(in); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Expense) apply(in ExpenseInput) error {
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !in.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown expense category %q", in.Category))
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > 1000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}

	date := in.ExpenseDate
	if date.IsZero() {
		date = time.Now()
	}

	e.Amount = shared.RoundMoney(in.Amount)
	e.Category = in.Category
	e.Description = description
	e.ExpenseDate = date
	e.ProjectID = normalizeID(in.ProjectID)
	return nil
}

// Update changes the editable fields. Approved and paid expenses are locked.
func (e *Expense) Update(in ExpenseInput) error {
	if e.Status == StatusApproved || e.Status == StatusPaid {
		return ErrNotEditable.WithMessage("Approved or paid expenses cannot be edited")
	}
	if err := e.apply(in); err != nil {
		return err
	}
	e.Touch()
	return nil
}

// AssignNumber sets the expense number if it has none yet
func (e *Expense) AssignNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > 50 {
		return ErrInvalidNumber
	}
	if e.Number != "" {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Expense already has a number")
	}
	e.Number = number
	return nil
}

// ChangeStatus moves the expense to any allowed expense status
func (e *Expense) ChangeStatus(status Status) error {
	if !status.IsAllowedFor(KindExpense) {
		return ErrInvalidStatus.WithMessage(fmt.Sprintf("Status %s is not allowed for expenses", status))
	}
	if status == e.Status {
		return nil
	}
	previous := e.Status
	e.Status = status
	e.Touch()
	e.AddDomainEvent(NewExpenseStatusChangedEvent(e, previous))
	return nil
}

// CountsTowardRollup reports whether the expense is part of its project's cost
func (e *Expense) CountsTowardRollup() bool {
	return e.Status.CountsTowardRollup(KindExpense)
}
