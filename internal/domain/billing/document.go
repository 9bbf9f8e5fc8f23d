package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeFinancialDocument is the aggregate type name used in events
const AggregateTypeFinancialDocument = "FinancialDocument"

// FinancialDocument is a sales order, invoice, purchase order or vendor bill.
// Subtotal, TaxAmount and Total are derived from Lines and TaxRate.
type FinancialDocument struct {
	shared.TenantAggregateRoot
	Kind             DocumentKind
	Number           string
	PartyName        string
	ProjectID        *uuid.UUID
	SourceDocumentID *uuid.UUID
	IssueDate        time.Time
	DueDate          *time.Time
	Lines            []LineItem
	TaxRate          decimal.Decimal
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	Status           Status
	Notes            string
}

// DocumentInput carries the caller-supplied fields of a document
type DocumentInput struct {
	Number    string
	PartyName string
	ProjectID *uuid.UUID
	IssueDate time.Time
	DueDate   *time.Time
	Lines     []LineInput
	TaxRate   decimal.Decimal
	Notes     string
}

// NewFinancialDocument creates a draft document of the given kind and prices its lines.
// An empty Number is allowed; the document then needs AssignNumber before it is saved.
func NewFinancialDocument(tenantID uuid.UUID, kind DocumentKind, in DocumentInput) (*FinancialDocument, error) {
	if !kind.HasLines() {
		return nil, ErrInvalidKind
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}

	doc := &FinancialDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		Status:              StatusDraft,
	}
	if in.Number != "" {
		if err := doc.AssignNumber(in.Number); err != nil {
			return nil, err
		}
	}
	if err := doc.apply(in); err != nil {
		return nil, err
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

// apply validates and copies the editable fields, then reprices the document
func (d *FinancialDocument) apply(in DocumentInput) error {
	party := strings.TrimSpace(in.PartyName)
	if party == "" {
		if d.Kind.IsCustomerFacing() {
			return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
		}
		return shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if len(party) > 200 {
		return shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot exceed 200 characters")
	}

	issueDate := in.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if in.DueDate != nil {
		if !d.Kind.HasDueDate() {
			return shared.NewDomainError("INVALID_DUE_DATE", fmt.Sprintf("%s does not have a due date", d.Kind.Label()))
		}
		if in.DueDate.Before(truncateDay(issueDate)) {
			return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the issue date")
		}
	}

	lines, err := BuildLines(in.Lines)
	if err != nil {
		return err
	}
	totals, err := ComputeTotals(lines, in.TaxRate)
	if err != nil {
		return err
	}

	d.PartyName = party
	d.ProjectID = normalizeID(in.ProjectID)
	d.IssueDate = issueDate
	d.DueDate = in.DueDate
	d.Lines = lines
	d.TaxRate = in.TaxRate
	d.Subtotal = totals.Subtotal
	d.TaxAmount = totals.TaxAmount
	d.Total = totals.Total
	d.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// Update replaces the editable fields and line list of a draft document.
// The number is kept; in.Number is ignored.
func (d *FinancialDocument) Update(in DocumentInput) error {
	if d.Status != StatusDraft {
		return ErrNotEditable
	}
	if err := d.apply(in); err != nil {
		return err
	}
	d.Touch()
	return nil
}

// AssignNumber sets the document number if it has none yet
func (d *FinancialDocument) AssignNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > 50 {
		return ErrInvalidNumber
	}
	if d.Number != "" {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Document already has a number")
	}
	d.Number = number
	return nil
}

// ChangeStatus moves the document to any status allowed for its kind
func (d *FinancialDocument) ChangeStatus(status Status) error {
	if !status.IsAllowedFor(d.Kind) {
		return ErrInvalidStatus.WithMessage(fmt.Sprintf("Status %s is not allowed for %s", status, d.Kind.Label()))
	}
	if status == d.Status {
		return nil
	}

	previous := d.Status
	d.Status = status
	d.Touch()
	d.AddDomainEvent(NewDocumentStatusChangedEvent(d, previous))
	return nil
}

// SetSource records the order this document was created from
func (d *FinancialDocument) SetSource(sourceID uuid.UUID) {
	d.SourceDocumentID = &sourceID
}

// CountsTowardRollup reports whether the document contributes to its project's financials
func (d *FinancialDocument) CountsTowardRollup() bool {
	return d.Status.CountsTowardRollup(d.Kind)
}

// IsCancelled returns true if the document has been retired
func (d *FinancialDocument) IsCancelled() bool {
	return d.Status == StatusCancelled
}

// LineInputs returns the lines as inputs, for copying into another document
func (d *FinancialDocument) LineInputs() []LineInput {
	inputs := make([]LineInput, len(d.Lines))
	for i, l := range d.Lines {
		inputs[i] = LineInput{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return inputs
}

// ConversionKind returns the kind a document of this kind converts into:
// sales orders are invoiced, purchase orders are billed.
func ConversionKind(kind DocumentKind) (DocumentKind, bool) {
	switch kind {
	case KindSalesOrder:
		return KindInvoice, true
	case KindPurchaseOrder:
		return KindVendorBill, true
	}
	return "", false
}

// ConversionInput builds the input for the invoice or bill created from this order
func (d *FinancialDocument) ConversionInput(dueDate *time.Time) (DocumentKind, DocumentInput, error) {
	target, ok := ConversionKind(d.Kind)
	if !ok {
		return "", DocumentInput{}, ErrInvalidSource.WithMessage(fmt.Sprintf("%s cannot be converted", d.Kind.Label()))
	}
	if d.IsCancelled() {
		return "", DocumentInput{}, ErrInvalidSource.WithMessage("Cancelled documents cannot be converted")
	}
	return target, DocumentInput{
		PartyName: d.PartyName,
		ProjectID: d.ProjectID,
		IssueDate: time.Now(),
		DueDate:   dueDate,
		Lines:     d.LineInputs(),
		TaxRate:   d.TaxRate,
		Notes:     fmt.Sprintf("Created from %s", d.Number),
	}, nil
}

func normalizeID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	v := *id
	return &v
}

func truncateDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}
