package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
)

const (
	pqExclusionViolation  = "23P01"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

const bookingColumns = `id, property_id, requester_id, start_date, end_date, total_amount,
	status, payment_status, payment_reference, created_at, updated_at`

type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
	INSERT INTO bookings (id, property_id, requester_id, start_date, end_date, total_amount,
		status, payment_status, payment_reference, created_at, updated_at)
	VALUES (:id, :property_id, :requester_id, :start_date, :end_date, :total_amount,
		:status, :payment_status, :payment_reference, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, booking)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqExclusionViolation:
				return domain.ErrDateConflict
			case pqForeignKeyViolation:
				return fmt.Errorf("%w: property %s", domain.ErrNotFound, booking.PropertyID)
			case pqCheckViolation:
				return fmt.Errorf("%w: %s", domain.ErrValidation, pqErr.Constraint)
			}
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, bool, error) {
	var booking domain.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &booking, true, nil
}

func (r *BookingRepository) FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error) {
	bookings := []domain.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
	SELECT `+bookingColumns+` FROM bookings
	WHERE requester_id = $1
	ORDER BY created_at DESC
	`, requesterID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Booking, error) {
	bookings := []domain.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
	SELECT `+bookingColumns+` FROM bookings
	WHERE property_id = $1
	ORDER BY start_date ASC
	`, propertyID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepository) HasOverlap(ctx context.Context, q ports.OverlapQuery) (bool, error) {
	// ranges intersect iff each starts before the other ends
	cmp := "<"
	if q.Mode == domain.OverlapInclusive {
		cmp = "<="
	}

	query := `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE property_id = $1
			AND status <> 'cancelled'
			AND start_date ` + cmp + ` $3::date
			AND $2::date ` + cmp + ` end_date
			AND ($4::uuid IS NULL OR id <> $4::uuid)
	)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, q.PropertyID, q.Range.Start, q.Range.End, q.ExcludeID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	_, _, err := r.Mutate(ctx, id, func(b *domain.Booking) (bool, error) {
		return b.TransitionTo(status)
	})
	return err
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, reference string) error {
	_, _, err := r.Mutate(ctx, id, func(b *domain.Booking) (bool, error) {
		return b.SetPaymentStatus(status, reference)
	})
	return err
}

func (r *BookingRepository) Mutate(ctx context.Context, id uuid.UUID, fn ports.MutateFunc) (*domain.Booking, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: begin transaction: %v", domain.ErrPersistence, err)
	}

	defer tx.Rollback()

	var booking domain.Booking
	err = tx.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf("%w: booking %s", domain.ErrNotFound, id)
		}
		return nil, false, fmt.Errorf("%w: lock booking: %v", domain.ErrPersistence, err)
	}

	changed, err := fn(&booking)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return &booking, false, nil
	}

	booking.UpdatedAt = time.Now().UTC()

	_, err = tx.NamedExecContext(ctx, `
	UPDATE bookings
	SET status = :status,
		payment_status = :payment_status,
		payment_reference = :payment_reference,
		updated_at = :updated_at
	WHERE id = :id
	`, &booking)
	if err != nil {
		return nil, false, fmt.Errorf("%w: update booking: %v", domain.ErrPersistence, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("%w: commit: %v", domain.ErrPersistence, err)
	}

	return &booking, true, nil
}

func (r *BookingRepository) FindConfirmedEndedBefore(ctx context.Context, day time.Time, limit int) ([]uuid.UUID, error) {
	return r.selectIDs(ctx, `
	SELECT id FROM bookings
	WHERE status = 'confirmed' AND end_date <= $1::date
	ORDER BY end_date
	LIMIT $2
	`, day, limit)
}

func (r *BookingRepository) FindUnpaidPendingUpdatedBefore(ctx context.Context, t time.Time, limit int) ([]uuid.UUID, error) {
	return r.selectIDs(ctx, `
	SELECT id FROM bookings
	WHERE status = 'pending' AND payment_status <> 'paid' AND updated_at < $1
	ORDER BY updated_at
	LIMIT $2
	`, t, limit)
}

func (r *BookingRepository) selectIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}
