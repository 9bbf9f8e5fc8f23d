package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// tenantScope restricts a query to one team's rows
func tenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// paginate applies a whitelisted order and the page window of f
func paginate(f shared.Filter, sortFields map[string]bool, defaultSort string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		f.Normalize()
		order := fmt.Sprintf("%s %s", ValidateSortField(f.OrderBy, sortFields, defaultSort), ValidateSortOrder(f.OrderDir))
		return db.Order(order).Offset(f.Offset()).Limit(f.PageSize)
	}
}

// ValidateSortOrder normalizes the sort direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// likePattern escapes LIKE wildcards in a search term
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(search))) + "%"
}

// notFound maps gorm's missing-row error to the domain error
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// Allowed sort columns per table
var (
	DocumentSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "number": true, "issue_date": true,
		"due_date": true, "party_name": true, "status": true, "total": true,
	}
	ExpenseSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "number": true, "expense_date": true,
		"category": true, "amount": true, "status": true,
	}
	ProjectSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "name": true, "status": true,
		"start_date": true, "end_date": true, "budget": true, "revenue": true, "profit": true,
	}
	TaskSortFields = map[string]bool{
		"created_at": true, "updated_at": true, "title": true, "status": true,
		"priority": true, "due_date": true, "position": true,
	}
	TimesheetSortFields = map[string]bool{
		"created_at": true, "work_date": true, "hours": true,
	}
)
