package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports/mocks"
	"github.com/srgjo27/livestock_booking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSweeper_Sweep(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	sweeper := services.NewSweeper(repo, time.Minute, 48*time.Hour, zerolog.Nop())

	ctx := context.Background()
	ended := uuid.New()
	longAgo := time.Now().Add(-72 * time.Hour)

	idle := pendingBooking(uuid.New(), "100")
	idle.UpdatedAt = longAgo

	// a payment attempt was recorded after the scan picked it up
	retried := pendingBooking(uuid.New(), "100")
	retried.UpdatedAt = time.Now()

	// paid in the meantime
	paid := pendingBooking(uuid.New(), "100")
	paid.UpdatedAt = longAgo
	paid.Status = domain.BookingConfirmed
	paid.PaymentStatus = domain.PaymentPaid

	repo.On("FindConfirmedEndedBefore", ctx, mock.MatchedBy(func(day time.Time) bool {
		return day.Equal(domain.TruncateDate(day))
	}), 100).Return([]uuid.UUID{ended}, nil)
	repo.On("UpdateStatus", ctx, ended, domain.BookingCompleted).Return(nil)

	repo.On("FindUnpaidPendingUpdatedBefore", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		return cutoff.Before(time.Now().Add(-47 * time.Hour))
	}), 100).Return([]uuid.UUID{idle.ID, retried.ID, paid.ID}, nil)
	for _, b := range []*domain.Booking{idle, retried, paid} {
		repo.On("Mutate", ctx, b.ID, mock.Anything).Return(mutateOn(b))
	}

	sweeper.Sweep(ctx)

	assert.Equal(t, domain.BookingCancelled, idle.Status)
	assert.Equal(t, domain.BookingPending, retried.Status)
	assert.Equal(t, domain.BookingConfirmed, paid.Status)
	repo.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestSweeper_ExpiryDisabled(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	sweeper := services.NewSweeper(repo, time.Minute, 0, zerolog.Nop())

	ctx := context.Background()
	repo.On("FindConfirmedEndedBefore", ctx, mock.Anything, 100).Return(nil, errors.New("db unavailable"))

	sweeper.Sweep(ctx)

	repo.AssertNotCalled(t, "FindUnpaidPendingUpdatedBefore", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	repo := mocks.NewBookingRepository(t)
	sweeper := services.NewSweeper(repo, time.Hour, 0, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, sweeper.Run(ctx))
}
