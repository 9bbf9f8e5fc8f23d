package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrAlreadyConverted is returned when an order already has a live invoice or bill
var ErrAlreadyConverted = billing.ErrAlreadyConverted

// FinancialsRecomputer recomputes project figures after a document mutation
type FinancialsRecomputer interface {
	RecomputeProjects(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, ids ...*uuid.UUID) []financials.RollupResult
}

// ProjectLookup checks that a referenced project exists in the tenant
type ProjectLookup interface {
	Exists(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

// DocumentService handles sales orders, invoices, purchase orders and vendor bills.
// Every mutation that can change a project's figures runs the roll-up after
// the document is committed.
type DocumentService struct {
	documents      billing.DocumentRepository
	projects       ProjectLookup
	rollup         FinancialsRecomputer
	numbers        *numberAllocator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documents billing.DocumentRepository,
	sequence billing.NumberSequence,
	projects ProjectLookup,
	rollup FinancialsRecomputer,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		projects:  projects,
		rollup:    rollup,
		logger:    logger,
		numbers: &numberAllocator{
			sequence: sequence,
			attempts: DefaultNumberAttempts,
			now:      time.Now,
			logger:   logger.Named("document_numbering"),
		},
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a draft document, numbering it when no number is given
func (s *DocumentService) Create(ctx context.Context, tenantID, userID uuid.UUID, kind billing.DocumentKind, req CreateDocumentRequest) (*DocumentResult, error) {
	if !kind.HasLines() {
		return nil, billing.ErrInvalidKind
	}
	if err := s.checkProject(ctx, tenantID, req.ProjectID); err != nil {
		return nil, err
	}

	doc, err := billing.NewFinancialDocument(tenantID, kind, billing.DocumentInput{
		Number:    req.Number,
		PartyName: partyName(kind, req.CustomerName, req.VendorName),
		ProjectID: req.ProjectID,
		IssueDate: dateOrZero(req.IssueDate),
		DueDate:   req.DueDate,
		Lines:     lineInputs(req.Lines),
		TaxRate:   req.TaxRate,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	doc.SetCreatedBy(userID)

	if err := s.insert(ctx, doc, req.Number != ""); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	results := s.rollup.RecomputeProjects(ctx, tenantID, kind, doc.ProjectID)
	return &DocumentResult{
		Document:   ToDocumentResponse(doc),
		Financials: financials.ToRollupStatusResponse(results...),
	}, nil
}

// GetByID retrieves a document of the given kind
func (s *DocumentService) GetByID(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.find(ctx, tenantID, kind, id)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponse(doc), nil
}

// List lists documents of one kind with filtering and pagination
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, filter DocumentListFilter) ([]DocumentResponse, int64, error) {
	projectID, err := parseOptionalID(filter.ProjectID, "project_id")
	if err != nil {
		return nil, 0, err
	}
	domainFilter := billing.DocumentFilter{
		Filter:    buildFilter(filter.Search, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		Kind:      kind,
		Status:    parseStatus(filter.Status),
		ProjectID: projectID,
	}

	docs, total, err := s.documents.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = *ToDocumentResponse(&docs[i])
	}
	return items, total, nil
}

// Update replaces the lines and editable fields of a draft document. When the
// document moves to another project both projects are recomputed.
func (s *DocumentService) Update(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResult, error) {
	doc, err := s.find(ctx, tenantID, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, tenantID, req.ProjectID); err != nil {
		return nil, err
	}

	previousProject := doc.ProjectID
	if err := doc.Update(billing.DocumentInput{
		PartyName: partyName(kind, req.CustomerName, req.VendorName),
		ProjectID: req.ProjectID,
		IssueDate: dateOrZero(req.IssueDate),
		DueDate:   req.DueDate,
		Lines:     lineInputs(req.Lines),
		TaxRate:   req.TaxRate,
		Notes:     req.Notes,
	}); err != nil {
		return nil, err
	}

	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	results := s.rollup.RecomputeProjects(ctx, tenantID, kind, previousProject, doc.ProjectID)
	return &DocumentResult{
		Document:   ToDocumentResponse(doc),
		Financials: financials.ToRollupStatusResponse(results...),
	}, nil
}

// ChangeStatus moves a document to any status allowed for its kind
func (s *DocumentService) ChangeStatus(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID, req ChangeStatusRequest) (*DocumentResult, error) {
	doc, err := s.find(ctx, tenantID, kind, id)
	if err != nil {
		return nil, err
	}

	previous := doc.Status
	if err := doc.ChangeStatus(parseStatus(req.Status)); err != nil {
		return nil, err
	}
	if doc.Status == previous {
		return &DocumentResult{
			Document:   ToDocumentResponse(doc),
			Financials: financials.ToRollupStatusResponse(),
		}, nil
	}

	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	results := s.rollup.RecomputeProjects(ctx, tenantID, kind, doc.ProjectID)
	return &DocumentResult{
		Document:   ToDocumentResponse(doc),
		Financials: financials.ToRollupStatusResponse(results...),
	}, nil
}

// Delete hard-deletes a document and recomputes its project as if it never existed
func (s *DocumentService) Delete(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*financials.RollupStatusResponse, error) {
	doc, err := s.find(ctx, tenantID, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.documents.Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}
	s.publish(ctx, billing.NewDocumentDeletedEvent(tenantID, doc.ID, doc.Kind, doc.Number, doc.ProjectID))

	results := s.rollup.RecomputeProjects(ctx, tenantID, kind, doc.ProjectID)
	return financials.ToRollupStatusResponse(results...), nil
}

// Convert creates an invoice from a sales order, or a vendor bill from a
// purchase order. Lines, party, project and tax are copied and the new
// document links back to its source.
func (s *DocumentService) Convert(ctx context.Context, tenantID, userID uuid.UUID, sourceKind billing.DocumentKind, sourceID uuid.UUID, req ConvertDocumentRequest) (*DocumentResult, error) {
	source, err := s.find(ctx, tenantID, sourceKind, sourceID)
	if err != nil {
		return nil, err
	}
	target, input, err := source.ConversionInput(req.DueDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.documents.ExistsBySource(ctx, tenantID, source.ID, target)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyConverted.WithMessage(fmt.Sprintf("%s %s already has a %s", source.Kind.Label(), source.Number, strings.ToLower(target.Label())))
	}

	doc, err := billing.NewFinancialDocument(tenantID, target, input)
	if err != nil {
		return nil, err
	}
	doc.SetSource(source.ID)
	doc.SetCreatedBy(userID)

	if err := s.insert(ctx, doc, false); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	results := s.rollup.RecomputeProjects(ctx, tenantID, target, doc.ProjectID)
	return &DocumentResult{
		Document:   ToDocumentResponse(doc),
		Financials: financials.ToRollupStatusResponse(results...),
	}, nil
}

func (s *DocumentService) insert(ctx context.Context, doc *billing.FinancialDocument, explicit bool) error {
	return s.numbers.insert(ctx, doc.TenantID, doc.Kind, explicit,
		func(number string) { doc.Number = number },
		func(ctx context.Context) error { return s.documents.Save(ctx, doc) },
	)
}

// find loads a document and hides documents of other kinds behind NOT_FOUND
func (s *DocumentService) find(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind, id uuid.UUID) (*billing.FinancialDocument, error) {
	doc, err := s.documents.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.Kind != kind {
		return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("%s not found", kind.Label()))
	}
	return doc, nil
}

func (s *DocumentService) checkProject(ctx context.Context, tenantID uuid.UUID, projectID *uuid.UUID) error {
	return checkProject(ctx, s.projects, tenantID, projectID)
}

func (s *DocumentService) publishEvents(ctx context.Context, doc *billing.FinancialDocument) {
	s.publish(ctx, doc.GetDomainEvents()...)
	doc.ClearDomainEvents()
}

func (s *DocumentService) publish(ctx context.Context, events ...shared.DomainEvent) {
	publishAll(ctx, s.eventPublisher, s.logger, events...)
}

// publishAll hands events to the publisher. The write they describe is already
// committed, so a failure is only logged.
func publishAll(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, log).Warn("failed to publish domain events",
			zap.String("event_type", events[0].EventType()),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func checkProject(ctx context.Context, projects ProjectLookup, tenantID uuid.UUID, projectID *uuid.UUID) error {
	if projectID == nil || *projectID == uuid.Nil {
		return nil
	}
	exists, err := projects.Exists(ctx, tenantID, *projectID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound.WithMessage("Project not found")
	}
	return nil
}

func buildFilter(search string, page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	filter.Search = strings.TrimSpace(search)
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	filter.Normalize()
	return filter
}

func parseStatus(s string) billing.Status {
	return billing.Status(strings.ToUpper(strings.TrimSpace(s)))
}

func parseOptionalID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be a UUID", field))
	}
	return &id, nil
}
