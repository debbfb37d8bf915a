package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	apperrors "tablepos/internal/errors"
	"tablepos/internal/infrastructure/mysql"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error)
}

// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms), then 400ms.
var retryBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

func isRetryable(err error) bool {
	return mysql.IsDeadlock(err) || mysql.IsDuplicateKey(err)
}

// backoff returns the wait before the next attempt with ±20% jitter.
func backoff(attempt int) time.Duration {
	idx := attempt
	if idx >= len(retryBackoffs) {
		idx = len(retryBackoffs) - 1
	}
	base := retryBackoffs[idx]
	if base == 0 {
		return 0
	}
	factor := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(base) * factor)
}

// inTx runs fn in a repeatable-read transaction. Lock conflicts and
// duplicate keys roll back and rerun fn; any other error rolls back and is
// returned.
func (uc *LifecycleUseCase) inTx(ctx context.Context, operation string, fn func(ctx context.Context, tx mysql.Tx) error) error {
	maxAttempts := uc.maxRetryAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := uc.runTx(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return classify(operation, err)
		}

		if attempt == maxAttempts {
			uc.logger.Error("lock conflict, retries exhausted", zap.String("operation", operation), zap.Int("attempts", attempt), zap.Error(err))
			break
		}

		wait := backoff(attempt)
		uc.logger.Warn("lock conflict, retrying",
			zap.String("operation", operation), zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Duration("backoff", wait), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func (uc *LifecycleUseCase) runTx(ctx context.Context, fn func(ctx context.Context, tx mysql.Tx) error) (err error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				uc.logger.Error("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(txCtx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// classify passes typed errors through and wraps everything else so that
// store details never reach the caller.
func classify(operation string, err error) error {
	if _, ok := apperrors.IsValidationError(err); ok {
		return err
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return err
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return err
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		return err
	}
	if _, ok := apperrors.IsInternalError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDeadlockError("transaction timed out waiting for locks")
	}
	return apperrors.NewInternalError(operation+" failed", err)
}
