package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"tablepos/internal/infrastructure/mysql"
)

const (
	TicketNumberPrefix = "KOT"
	OrderNumberPrefix  = "ORD"
)

type NumberChecker interface {
	NumberExists(ctx context.Context, q mysql.DBTX, restaurantID int, number string) (bool, error)
}

// NumberingService generates human readable numbers of the form
// PREFIX-YYYYMMDD-NNNN, unique per restaurant.
type NumberingService struct {
	maxAttempts int
	now         func() time.Time
	randN       func(n int) int
	logger      *zap.Logger
}

func NewNumberingService(maxAttempts int, logger *zap.Logger) *NumberingService {
	return NewNumberingServiceWithSource(maxAttempts, time.Now, rand.IntN, logger)
}

func NewNumberingServiceWithSource(maxAttempts int, now func() time.Time, randN func(n int) int, logger *zap.Logger) *NumberingService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &NumberingService{
		maxAttempts: maxAttempts,
		now:         now,
		randN:       randN,
		logger:      logger,
	}
}

// Next must run on the same transaction as the insert that uses the number.
// The date part is the UTC date, matching the stored createdAt.
// After maxAttempts collisions it returns a timestamp qualified number
// without checking it.
func (s *NumberingService) Next(ctx context.Context, q mysql.DBTX, checker NumberChecker, prefix string, restaurantID int) (string, error) {
	now := s.now().UTC()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number := fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), s.randN(10000))

		exists, err := checker.NumberExists(ctx, q, restaurantID, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}

	number := fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102150405"), s.randN(10000))
	s.logger.Warn("number space exhausted, using timestamp qualified number",
		zap.String("prefix", prefix), zap.Int("restaurantId", restaurantID), zap.Int("attempts", s.maxAttempts), zap.String("number", number))

	return number, nil
}
