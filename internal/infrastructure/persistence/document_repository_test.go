package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDocumentRepository_SaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	doc, err := billing.NewFinancialDocument(tenantID, billing.KindInvoice, billing.DocumentInput{
		Number:    "INV-2026-001",
		PartyName: "Acme Corp",
		TaxRate:   decimal.NewFromInt(10),
		Lines: []billing.LineInput{
			{Description: "Design", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(50.25)},
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	found, err := repo.FindByID(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-001", found.Number)
	assert.Equal(t, billing.KindInvoice, found.Kind)
	assert.Equal(t, billing.StatusDraft, found.Status)
	require.Len(t, found.Lines, 2)
	assert.Equal(t, "Design", found.Lines[0].Description)
	assert.True(t, found.Lines[0].Amount.Equal(decimal.NewFromFloat(100.5)))
	assert.True(t, found.Subtotal.Equal(decimal.NewFromFloat(120.5)), found.Subtotal.String())
	assert.True(t, found.Total.Equal(doc.Total), found.Total.String())

	t.Run("other tenants cannot see it", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update replaces lines", func(t *testing.T) {
		require.NoError(t, doc.Update(billing.DocumentInput{
			PartyName: "Acme Corp",
			Lines: []billing.LineInput{
				{Description: "Retainer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(300)},
			},
		}))
		require.NoError(t, repo.Save(ctx, doc))

		found, err := repo.FindByID(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, "Retainer", found.Lines[0].Description)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, "INV-2026-001", found.Number)
	})
}

func TestGormDocumentRepository_DuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, repo.Save(ctx, newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-001", nil, 100)))

	err := repo.Save(ctx, newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-001", nil, 200))
	assert.ErrorIs(t, err, billing.ErrDuplicateNumber)

	t.Run("same number is free in another tenant or kind", func(t *testing.T) {
		assert.NoError(t, repo.Save(ctx, newTestDocument(t, uuid.New(), billing.KindInvoice, "INV-2026-001", nil, 100)))
		assert.NoError(t, repo.Save(ctx, newTestDocument(t, tenantID, billing.KindSalesOrder, "INV-2026-001", nil, 100)))
	})
}

func TestGormDocumentRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	p := createTestProject(t, db, tenantID)

	require.NoError(t, repo.Save(ctx, newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-001", &p.ID, 100)))
	require.NoError(t, repo.Save(ctx, newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-002", nil, 200)))
	require.NoError(t, repo.Save(ctx, newTestDocument(t, tenantID, billing.KindSalesOrder, "SO-2026-001", &p.ID, 300)))
	require.NoError(t, repo.Save(ctx, newTestDocument(t, uuid.New(), billing.KindInvoice, "INV-2026-003", nil, 400)))

	filter := billing.DocumentFilter{Filter: shared.DefaultFilter(), Kind: billing.KindInvoice}
	docs, total, err := repo.FindAll(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, docs, 2)

	filter.ProjectID = &p.ID
	docs, total, err = repo.FindAll(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, docs, 1)
	assert.Equal(t, "INV-2026-001", docs[0].Number)
	assert.Len(t, docs[0].Lines, 1)

	search := billing.DocumentFilter{Filter: shared.DefaultFilter()}
	search.Search = "so-2026"
	docs, total, err = repo.FindAll(ctx, tenantID, search)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, docs, 1)
	assert.Equal(t, billing.KindSalesOrder, docs[0].Kind)
}

func TestGormDocumentRepository_DeleteAndExistsBySource(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newTestDocument(t, tenantID, billing.KindSalesOrder, "SO-2026-001", nil, 100)
	require.NoError(t, repo.Save(ctx, order))

	invoice := newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-001", nil, 100)
	invoice.SetSource(order.ID)
	require.NoError(t, repo.Save(ctx, invoice))

	exists, err := repo.ExistsBySource(ctx, tenantID, order.ID, billing.KindInvoice)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, invoice.ChangeStatus(billing.StatusCancelled))
	require.NoError(t, repo.Save(ctx, invoice))
	exists, err = repo.ExistsBySource(ctx, tenantID, order.ID, billing.KindInvoice)
	require.NoError(t, err)
	assert.False(t, exists, "cancelled conversions do not block a new one")

	require.NoError(t, repo.Delete(ctx, tenantID, invoice.ID))
	_, err = repo.FindByID(ctx, tenantID, invoice.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, tenantID, invoice.ID), shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New(), order.ID), shared.ErrNotFound)
}

func TestGormDocumentRepository_SaveRejectsStaleCopy(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	invoice := newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-001", nil, 100)
	require.NoError(t, repo.Save(ctx, invoice))
	assert.Equal(t, 1, invoice.Version)

	first, err := repo.FindByID(ctx, tenantID, invoice.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, tenantID, invoice.ID)
	require.NoError(t, err)

	require.NoError(t, first.ChangeStatus(billing.StatusPaid))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, second.ChangeStatus(billing.StatusCancelled))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, second.Version)

	stored, err := repo.FindByID(ctx, tenantID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, stored.Status)
	assert.Equal(t, 2, stored.Version)
	assert.Len(t, stored.Lines, len(invoice.Lines))
}

func TestGormDocumentRepository_OneLiveConversionPerOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newTestDocument(t, tenantID, billing.KindSalesOrder, "SO-2026-001", nil, 100)
	require.NoError(t, repo.Save(ctx, order))

	first := newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-001", nil, 100)
	first.SetSource(order.ID)
	require.NoError(t, repo.Save(ctx, first))

	second := newTestDocument(t, tenantID, billing.KindInvoice, "INV-2026-002", nil, 100)
	second.SetSource(order.ID)
	assert.ErrorIs(t, repo.Save(ctx, second), billing.ErrAlreadyConverted)

	require.NoError(t, first.ChangeStatus(billing.StatusCancelled))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second), "a cancelled conversion frees the order")
}
