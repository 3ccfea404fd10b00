package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

// MutateFunc changes a booking in place and reports whether anything changed.
type MutateFunc func(b *domain.Booking) (bool, error)

// OverlapQuery asks whether any non-cancelled booking of a property intersects a range.
type OverlapQuery struct {
	PropertyID uuid.UUID
	Range      domain.DateRange
	Mode       domain.OverlapMode
	ExcludeID  *uuid.UUID
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	// FindByID reports found=false without error when the booking does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (booking *domain.Booking, found bool, err error)
	FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Booking, error)
	HasOverlap(ctx context.Context, q OverlapQuery) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, reference string) error
	// Mutate locks the booking row, applies fn and persists the result in one transaction.
	Mutate(ctx context.Context, id uuid.UUID, fn MutateFunc) (*domain.Booking, bool, error)
	FindConfirmedEndedBefore(ctx context.Context, day time.Time, limit int) ([]uuid.UUID, error)
	FindUnpaidPendingUpdatedBefore(ctx context.Context, t time.Time, limit int) ([]uuid.UUID, error)
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}
