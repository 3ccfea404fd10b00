package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
)

const sweepBatchSize = 100

// Sweeper completes confirmed bookings whose stay has ended and cancels
// unpaid pending bookings idle for longer than pendingTTL (zero disables
// expiry). Opening a payment attempt resets the idle clock.
type Sweeper struct {
	bookingRepo ports.BookingRepository
	interval    time.Duration
	pendingTTL  time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

func NewSweeper(bookingRepo ports.BookingRepository, interval, pendingTTL time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		bookingRepo: bookingRepo,
		interval:    interval,
		pendingTTL:  pendingTTL,
		logger:      logger.With().Str("component", "sweeper").Logger(),
		now:         time.Now,
	}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("booking sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("booking sweeper stopped")
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now().UTC()

	ended, err := s.bookingRepo.FindConfirmedEndedBefore(ctx, domain.TruncateDate(now), sweepBatchSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch ended bookings")
	} else {
		s.transitionAll(ctx, ended, domain.BookingCompleted)
	}

	if s.pendingTTL <= 0 {
		return
	}

	cutoff := now.Add(-s.pendingTTL)
	stale, err := s.bookingRepo.FindUnpaidPendingUpdatedBefore(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch stale pending bookings")
		return
	}
	s.expireAll(ctx, stale, cutoff)
}

// expireAll re-checks each booking under the row lock, so a payment attempt
// recorded after the scan keeps its booking.
func (s *Sweeper) expireAll(ctx context.Context, ids []uuid.UUID, cutoff time.Time) {
	if len(ids) == 0 {
		return
	}

	s.logger.Info().Int("count", len(ids)).Msg("expiring idle pending bookings")

	for _, id := range ids {
		_, changed, err := s.bookingRepo.Mutate(ctx, id, func(b *domain.Booking) (bool, error) {
			return b.ExpireIfIdle(cutoff)
		})
		if err != nil {
			s.logger.Error().Err(err).Str("booking_id", id.String()).Msg("failed to expire booking")
			continue
		}
		if !changed {
			s.logger.Info().Str("booking_id", id.String()).Msg("booking active since scan, kept")
			continue
		}
		s.logger.Info().Str("booking_id", id.String()).Str("to", string(domain.BookingCancelled)).Msg("booking swept")
	}
}

func (s *Sweeper) transitionAll(ctx context.Context, ids []uuid.UUID, to domain.BookingStatus) {
	if len(ids) == 0 {
		return
	}

	s.logger.Info().Int("count", len(ids)).Str("to", string(to)).Msg("sweeping bookings")

	for _, id := range ids {
		if err := s.bookingRepo.UpdateStatus(ctx, id, to); err != nil {
			s.logger.Error().Err(err).Str("booking_id", id.String()).Str("to", string(to)).Msg("failed to sweep booking")
			continue
		}
		s.logger.Info().Str("booking_id", id.String()).Str("to", string(to)).Msg("booking swept")
	}
}
