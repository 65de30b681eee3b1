// concurrency/concurrency.go
/* Package concurrency caps the number of admin API requests in flight at once.
Every request acquires a permit before it is sent and releases it when its response
body has been closed. Permits carry a uuid so acquisition and release can be correlated in logs. */
package concurrency

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/deploymenttheory/go-menu-admin-client/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyHandler controls the number of concurrent HTTP requests.
type ConcurrencyHandler struct {
	sem      *semaphore.Weighted
	limit    int64
	inFlight atomic.Int64
	logger   logger.Logger
}

// NewConcurrencyHandler returns a handler allowing at most limit concurrent permits.
// A limit below one is treated as one.
func NewConcurrencyHandler(limit int, log logger.Logger) *ConcurrencyHandler {
	if limit < 1 {
		limit = 1
	}
	return &ConcurrencyHandler{
		sem:    semaphore.NewWeighted(int64(limit)),
		limit:  int64(limit),
		logger: log,
	}
}

// AcquireConcurrencyPermit blocks until a permit is available or ctx is done.
// The returned id must be passed to ReleaseConcurrencyPermit exactly once.
func (ch *ConcurrencyHandler) AcquireConcurrencyPermit(ctx context.Context) (uuid.UUID, error) {
	start := time.Now()
	requestID := uuid.New()

	if err := ch.sem.Acquire(ctx, 1); err != nil {
		ch.logger.Warn("Failed to acquire concurrency permit",
			zap.String("permit_id", requestID.String()),
			zap.Duration("waited", time.Since(start)),
			zap.Error(err),
		)
		return uuid.Nil, err
	}

	inFlight := ch.inFlight.Add(1)
	ch.logger.Debug("Acquired concurrency permit",
		zap.String("permit_id", requestID.String()),
		zap.Duration("acquisition_time", time.Since(start)),
		zap.Int64("in_flight", inFlight),
		zap.Int64("available", ch.limit-inFlight),
	)
	return requestID, nil
}

// ReleaseConcurrencyPermit returns a permit to the pool.
func (ch *ConcurrencyHandler) ReleaseConcurrencyPermit(requestID uuid.UUID) {
	inFlight := ch.inFlight.Add(-1)
	ch.sem.Release(1)

	ch.logger.Debug("Released concurrency permit",
		zap.String("permit_id", requestID.String()),
		zap.Int64("in_flight", inFlight),
	)
}

// InFlight returns the number of permits currently held.
func (ch *ConcurrencyHandler) InFlight() int {
	return int(ch.inFlight.Load())
}

// Limit returns the configured maximum.
func (ch *ConcurrencyHandler) Limit() int {
	return int(ch.limit)
}
