package financials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/projledger/backend/internal/infrastructure/lock"
	"go.uber.org/zap"
)

// releaseTimeout bounds how long an unlock may take once the roll-up is done
const releaseTimeout = 2 * time.Second

// ProjectLocker serializes financial roll-ups of a single project
type ProjectLocker interface {
	Lock(ctx context.Context, projectID uuid.UUID) (func(), error)
}

// LockKey returns the lock key guarding a project's roll-up
func LockKey(projectID uuid.UUID) string {
	return "rollup:project:" + projectID.String()
}

type keyedProjectLocker struct {
	locker lock.Locker
	logger *zap.Logger
}

// NewProjectLocker adapts a keyed locker (in-process or Redis) to ProjectLocker
func NewProjectLocker(locker lock.Locker, logger *zap.Logger) ProjectLocker {
	return &keyedProjectLocker{locker: locker, logger: logger}
}

func (l *keyedProjectLocker) Lock(ctx context.Context, projectID uuid.UUID) (func(), error) {
	release, err := l.locker.Acquire(ctx, LockKey(projectID))
	if err != nil {
		return nil, err
	}
	return func() {
		// the request context may already be cancelled when the roll-up returns
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			l.logger.Warn("failed to release roll-up lock",
				zap.String("project_id", projectID.String()),
				zap.Error(err),
			)
		}
	}, nil
}
