package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
)

// ConflictChecker answers whether a candidate range collides with an existing
// non-cancelled booking of the same property. It never treats a store error
// as "no conflict".
type ConflictChecker struct {
	bookingRepo ports.BookingRepository
	mode        domain.OverlapMode
}

func NewConflictChecker(bookingRepo ports.BookingRepository, mode domain.OverlapMode) *ConflictChecker {
	if mode == "" {
		mode = domain.OverlapHalfOpen
	}
	return &ConflictChecker{bookingRepo: bookingRepo, mode: mode}
}

func (c *ConflictChecker) Mode() domain.OverlapMode {
	return c.mode
}

func (c *ConflictChecker) HasConflict(ctx context.Context, propertyID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	overlap, err := c.bookingRepo.HasOverlap(ctx, ports.OverlapQuery{
		PropertyID: propertyID,
		Range:      domain.DateRange{Start: domain.TruncateDate(start), End: domain.TruncateDate(end)},
		Mode:       c.mode,
		ExcludeID:  excludeID,
	})
	if err != nil {
		return false, fmt.Errorf("%w: checking booking overlap: %v", domain.ErrPersistence, err)
	}
	return overlap, nil
}
