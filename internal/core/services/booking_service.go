package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
)

type CreateBookingRequest struct {
	PropertyID  string          `json:"property_id"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type BookingService struct {
	bookingRepo  ports.BookingRepository
	propertyRepo ports.PropertyRepository
	checker      *ConflictChecker
	locker       ports.PropertyLocker
	lockTTL      time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

func NewBookingService(
	bookingRepo ports.BookingRepository,
	propertyRepo ports.PropertyRepository,
	checker *ConflictChecker,
	locker ports.PropertyLocker,
	lockTTL time.Duration,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		checker:      checker,
		locker:       locker,
		lockTTL:      lockTTL,
		logger:       logger.With().Str("component", "booking_service").Logger(),
		now:          time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, requesterID uuid.UUID, req CreateBookingRequest) (*domain.Booking, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid property_id", domain.ErrValidation)
	}

	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	draft := domain.BookingDraft{
		PropertyID:  propertyID,
		RequesterID: requesterID,
		StartDate:   start,
		EndDate:     end,
		TotalAmount: req.TotalAmount,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsActive {
		return nil, fmt.Errorf("%w: property %s is not available", domain.ErrNotFound, propertyID)
	}

	release, err := s.locker.Acquire(ctx, propertyLockKey(propertyID), s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn().Err(err).Str("property_id", propertyID.String()).Msg("failed to release property lock")
		}
	}()

	conflict, err := s.checker.HasConflict(ctx, propertyID, draft.StartDate, draft.EndDate, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.ErrDateConflict
	}

	booking, err := domain.NewBooking(draft, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to create booking: %v", domain.ErrPersistence, err)
	}

	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("property_id", propertyID.String()).
		Str("range", booking.Range().String()).
		Msg("booking created")

	return booking, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.FindByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch bookings: %v", domain.ErrPersistence, err)
	}
	return bookings, nil
}

// ListPropertyBookings returns the non-cancelled bookings of a property.
func (s *BookingService) ListPropertyBookings(ctx context.Context, propertyID uuid.UUID) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch bookings: %v", domain.ErrPersistence, err)
	}

	active := bookings[:0]
	for _, b := range bookings {
		if b.Status != domain.BookingCancelled {
			active = append(active, b)
		}
	}
	return active, nil
}

// GetOwnedBooking loads a booking and checks that requesterID created it.
func (s *BookingService) GetOwnedBooking(ctx context.Context, requesterID, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, found, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch booking: %v", domain.ErrPersistence, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, bookingID)
	}
	if !booking.OwnedBy(requesterID) {
		return nil, fmt.Errorf("%w: booking %s belongs to another user", domain.ErrForbidden, bookingID)
	}
	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, requesterID, bookingID uuid.UUID) (*domain.Booking, error) {
	if _, err := s.GetOwnedBooking(ctx, requesterID, bookingID); err != nil {
		return nil, err
	}

	booking, changed, err := s.bookingRepo.Mutate(ctx, bookingID, func(b *domain.Booking) (bool, error) {
		if b.Status != domain.BookingPending {
			return false, fmt.Errorf("%w: only pending bookings can be cancelled", domain.ErrIllegalTransition)
		}
		return b.TransitionTo(domain.BookingCancelled)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info().Str("booking_id", bookingID.String()).Msg("booking cancelled")
	}
	return booking, nil
}

// RecordPaymentAttempt attaches the reference of a payment about to be opened
// and restarts the booking's idle clock. The payable state is checked again
// under the row lock.
func (s *BookingService) RecordPaymentAttempt(ctx context.Context, bookingID uuid.UUID, reference string) (*domain.Booking, error) {
	booking, _, err := s.bookingRepo.Mutate(ctx, bookingID, func(b *domain.Booking) (bool, error) {
		return b.RecordPaymentAttempt(reference)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func propertyLockKey(propertyID uuid.UUID) string {
	return "booking:property:" + propertyID.String()
}
