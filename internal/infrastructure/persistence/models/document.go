package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DocumentModel stores sales orders, invoices, purchase orders and vendor bills
// in one table discriminated by kind.
type DocumentModel struct {
	AggregateModel
	TenantID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_documents_tenant_kind_number,priority:1;index:idx_documents_rollup,priority:1"`
	CreatedBy        *uuid.UUID           `gorm:"type:uuid"`
	Kind             billing.DocumentKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_documents_tenant_kind_number,priority:2;index:idx_documents_rollup,priority:3"`
	Number           string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_documents_tenant_kind_number,priority:3"`
	PartyName        string               `gorm:"type:varchar(200);not null"`
	ProjectID        *uuid.UUID           `gorm:"type:uuid;index:idx_documents_rollup,priority:2"`
	SourceDocumentID *uuid.UUID           `gorm:"type:uuid;index;uniqueIndex:idx_financial_documents_live_conversion,where:status <> 'CANCELLED'"`
	IssueDate        time.Time            `gorm:"not null"`
	DueDate          *time.Time
	TaxRate          decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount        decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Status           billing.Status      `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Notes            string              `gorm:"type:text"`
	Lines            []DocumentLineModel `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "financial_documents"
}

// ToDomain converts the persistence model to a domain FinancialDocument.
func (m *DocumentModel) ToDomain() *billing.FinancialDocument {
	doc := &billing.FinancialDocument{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			TenantID:          m.TenantID,
			CreatedBy:         m.CreatedBy,
		},
		Kind:                m.Kind,
		Number:              m.Number,
		PartyName:           m.PartyName,
		ProjectID:           m.ProjectID,
		SourceDocumentID:    m.SourceDocumentID,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		TaxRate:             m.TaxRate,
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		Total:               m.Total,
		Status:              m.Status,
		Notes:               m.Notes,
		Lines:               make([]billing.LineItem, len(m.Lines)),
	}
	for i, line := range m.Lines {
		doc.Lines[i] = line.ToDomain()
	}
	return doc
}

// FromDomain populates the persistence model from a domain FinancialDocument.
func (m *DocumentModel) FromDomain(d *billing.FinancialDocument) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.TenantID = d.TenantID
	m.CreatedBy = d.CreatedBy
	m.Kind = d.Kind
	m.Number = d.Number
	m.PartyName = d.PartyName
	m.ProjectID = d.ProjectID
	m.SourceDocumentID = d.SourceDocumentID
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.TaxRate = d.TaxRate
	m.Subtotal = d.Subtotal
	m.TaxAmount = d.TaxAmount
	m.Total = d.Total
	m.Status = d.Status
	m.Notes = d.Notes
	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i, line := range d.Lines {
		m.Lines[i] = DocumentLineModelFromDomain(d.ID, line)
	}
}

// DocumentModelFromDomain creates a persistence model from a domain FinancialDocument.
func DocumentModelFromDomain(d *billing.FinancialDocument) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// DocumentLineModel is one priced line of a financial document
type DocumentLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "financial_document_lines"
}

// ToDomain converts the line model to a domain LineItem
func (m DocumentLineModel) ToDomain() billing.LineItem {
	return billing.LineItem{
		ID:          m.ID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		Position:    m.Position,
	}
}

// DocumentLineModelFromDomain creates a line model for the given document
func DocumentLineModelFromDomain(documentID uuid.UUID, l billing.LineItem) DocumentLineModel {
	return DocumentLineModel{
		ID:          l.ID,
		DocumentID:  documentID,
		Position:    l.Position,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		Amount:      l.Amount,
	}
}
