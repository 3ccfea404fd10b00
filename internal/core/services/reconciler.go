package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
)

// ReconcileResult describes what Apply did with an outcome.
type ReconcileResult string

const (
	ResultConfirmed ReconcileResult = "confirmed"
	ResultFailed    ReconcileResult = "failed"
	ResultNoop      ReconcileResult = "noop"
	ResultIgnored   ReconcileResult = "ignored"
	ResultQueued    ReconcileResult = "queued"
	ResultDropped   ReconcileResult = "dropped"
)

// Reconciler applies gateway-reported payment outcomes to bookings. Both the
// webhook and the verify endpoint go through Apply.
type Reconciler struct {
	bookingRepo ports.BookingRepository
	events      ports.EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

func NewReconciler(bookingRepo ports.BookingRepository, events ports.EventPublisher, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		bookingRepo: bookingRepo,
		events:      events,
		logger:      logger.With().Str("component", "reconciler").Logger(),
		now:         time.Now,
	}
}

// Apply is idempotent: replaying an outcome that was already applied returns
// ResultNoop and publishes nothing.
func (r *Reconciler) Apply(ctx context.Context, outcome domain.PaymentOutcome) (ReconcileResult, error) {
	log := r.logger.With().
		Str("reference", outcome.Reference).
		Str("status", string(outcome.Status)).
		Str("source", outcome.Source).
		Logger()

	if outcome.Status != domain.TransactionSuccess && outcome.Status != domain.TransactionFailed {
		log.Info().Msg("unhandled transaction status, ignoring")
		return ResultIgnored, nil
	}

	bookingID, ok := outcome.BookingID()
	if !ok {
		log.Error().Str("metadata_booking_id", outcome.Metadata.BookingID).Msg("no booking id in payment metadata")
		return ResultIgnored, nil
	}
	log = log.With().Str("booking_id", bookingID.String()).Logger()

	if refID, err := domain.ParsePaymentReference(outcome.Reference); err == nil && refID != bookingID {
		log.Error().Str("reference_booking_id", refID.String()).Msg("reference and metadata disagree on booking id")
		return ResultIgnored, nil
	}

	var (
		apply  ports.MutateFunc
		result ReconcileResult
	)
	switch outcome.Status {
	case domain.TransactionSuccess:
		result = ResultConfirmed
		apply = func(b *domain.Booking) (bool, error) {
			expected := domain.ToMinorUnits(b.TotalAmount)
			if outcome.AmountMinor != 0 && outcome.AmountMinor != expected {
				return false, fmt.Errorf("%w: got %d, expected %d", domain.ErrAmountMismatch, outcome.AmountMinor, expected)
			}
			return b.ApplyPaymentSuccess(outcome.Reference)
		}
	case domain.TransactionFailed:
		result = ResultFailed
		apply = func(b *domain.Booking) (bool, error) {
			return b.ApplyPaymentFailure(outcome.Reference)
		}
	}

	booking, changed, err := r.bookingRepo.Mutate(ctx, bookingID, apply)
	if err != nil {
		log.Error().Err(err).Msg("failed to apply payment outcome")
		return "", err
	}
	if !changed {
		log.Info().Msg("payment outcome already applied")
		return ResultNoop, nil
	}

	log.Info().
		Str("payment_status", string(booking.PaymentStatus)).
		Str("booking_status", string(booking.Status)).
		Int64("amount", outcome.AmountMinor).
		Msg("payment outcome applied")

	r.publish(ctx, log, booking, outcome, result)
	return result, nil
}

func (r *Reconciler) publish(ctx context.Context, log zerolog.Logger, b *domain.Booking, outcome domain.PaymentOutcome, result ReconcileResult) {
	var err error
	switch result {
	case ResultConfirmed:
		err = r.events.PublishBookingConfirmed(ctx, domain.BookingConfirmedEvent{
			BookingID:   b.ID,
			PropertyID:  b.PropertyID,
			RequesterID: b.RequesterID,
			Reference:   outcome.Reference,
			AmountMinor: domain.ToMinorUnits(b.TotalAmount),
			ConfirmedAt: r.now().UTC(),
		})
	case ResultFailed:
		err = r.events.PublishPaymentFailed(ctx, domain.PaymentFailedEvent{
			BookingID: b.ID,
			Reference: outcome.Reference,
			FailedAt:  r.now().UTC(),
		})
	}
	if err != nil {
		log.Error().Err(err).Str("result", string(result)).Msg("failed to publish payment event")
	}
}

// ApplyOrEnqueue applies the outcome and hands failures to the retry queue.
// It never returns the mutation error: callers have already acknowledged the
// gateway.
func (r *Reconciler) ApplyOrEnqueue(ctx context.Context, queue ports.ReconciliationQueue, outcome domain.PaymentOutcome) ReconcileResult {
	result, err := r.Apply(ctx, outcome)
	if err == nil {
		return result
	}

	if qerr := queue.Enqueue(ctx, outcome, err); qerr != nil {
		r.logger.Error().
			Err(errors.Join(err, qerr)).
			Str("reference", outcome.Reference).
			Str("booking_id", outcome.Metadata.BookingID).
			Msg("payment outcome lost: reconciliation failed and could not be queued")
		return ResultDropped
	}
	return ResultQueued
}
