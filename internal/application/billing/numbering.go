package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/domain/billing"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DefaultNumberAttempts bounds how many sequence values a create draws when a
// generated number collides with one a user supplied explicitly
const DefaultNumberAttempts = 3

// numberAllocator assigns "<PREFIX>-<year>-<seq>" numbers from the atomic sequence
type numberAllocator struct {
	sequence billing.NumberSequence
	attempts int
	now      func() time.Time
	logger   *zap.Logger
}

func (a *numberAllocator) next(ctx context.Context, tenantID uuid.UUID, kind billing.DocumentKind) (string, error) {
	year := a.now().Year()
	seq, err := a.sequence.Next(ctx, tenantID, kind, year)
	if err != nil {
		return "", fmt.Errorf("allocate %s number: %w", kind, err)
	}
	return billing.FormatNumber(kind, year, seq), nil
}

// insert persists a new record. An explicit number is saved as is and a
// collision is returned to the caller. Otherwise numbers are drawn from the
// sequence until save succeeds or attempts run out.
//
// The sequence and each save commit separately: on postgres a failed insert
// aborts its transaction, and a rolled back sequence would hand out the same
// value again.
func (a *numberAllocator) insert(
	ctx context.Context,
	tenantID uuid.UUID,
	kind billing.DocumentKind,
	explicit bool,
	setNumber func(string),
	save func(context.Context) error,
) error {
	if explicit {
		return save(ctx)
	}

	attempts := max(a.attempts, 1)
	for attempt := 1; ; attempt++ {
		number, err := a.next(ctx, tenantID, kind)
		if err != nil {
			return err
		}
		setNumber(number)

		err = save(ctx)
		if !errors.Is(err, billing.ErrDuplicateNumber) || attempt >= attempts {
			return err
		}
		logger.Enrich(ctx, a.logger).Warn("generated document number already taken, retrying",
			zap.String("kind", kind.String()),
			zap.String("number", number),
			zap.Int("attempt", attempt),
		)
	}
}
