package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// bookingTransitions lists the legal targets for each booking status.
// Terminal states have no entry.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(to PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID               uuid.UUID       `db:"id"`
	PropertyID       uuid.UUID       `db:"property_id"`
	RequesterID      uuid.UUID       `db:"requester_id"`
	StartDate        time.Time       `db:"start_date"`
	EndDate          time.Time       `db:"end_date"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	Status           BookingStatus   `db:"status"`
	PaymentStatus    PaymentStatus   `db:"payment_status"`
	PaymentReference *string         `db:"payment_reference"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// BookingDraft is the caller-supplied part of a booking.
type BookingDraft struct {
	PropertyID  uuid.UUID
	RequesterID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	TotalAmount decimal.Decimal
}

func (d BookingDraft) Validate() error {
	if d.PropertyID == uuid.Nil {
		return fmt.Errorf("%w: property_id is required", ErrValidation)
	}
	if d.RequesterID == uuid.Nil {
		return fmt.Errorf("%w: requester is required", ErrValidation)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrValidation)
	}
	if !TruncateDate(d.EndDate).After(TruncateDate(d.StartDate)) {
		return fmt.Errorf("%w: end_date must be after start_date", ErrValidation)
	}
	if !d.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: total_amount must be positive", ErrValidation)
	}
	return nil
}

func (d BookingDraft) Range() DateRange {
	return DateRange{Start: TruncateDate(d.StartDate), End: TruncateDate(d.EndDate)}
}

// NewBooking validates the draft and returns a pending booking with a fresh id.
func NewBooking(d BookingDraft, now time.Time) (*Booking, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	r := d.Range()
	return &Booking{
		ID:            uuid.New(),
		PropertyID:    d.PropertyID,
		RequesterID:   d.RequesterID,
		StartDate:     r.Start,
		EndDate:       r.End,
		TotalAmount:   d.TotalAmount,
		Status:        BookingPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

func (b *Booking) OwnedBy(requesterID uuid.UUID) bool {
	return b.RequesterID == requesterID
}

func (b *Booking) Reference() string {
	if b.PaymentReference == nil {
		return ""
	}
	return *b.PaymentReference
}

// TransitionTo moves the booking to a new status. It reports false without
// error when the booking is already in that status.
func (b *Booking) TransitionTo(to BookingStatus) (bool, error) {
	if !to.Valid() {
		return false, fmt.Errorf("%w: unknown booking status %q", ErrValidation, to)
	}
	if b.Status == to {
		return false, nil
	}
	if !b.Status.CanTransitionTo(to) {
		return false, fmt.Errorf("%w: booking %s -> %s", ErrIllegalTransition, b.Status, to)
	}
	if to == BookingCancelled && b.PaymentStatus == PaymentPaid {
		return false, fmt.Errorf("%w: paid booking cannot be cancelled", ErrIllegalTransition)
	}

	b.Status = to
	return true, nil
}

// SetPaymentStatus moves the payment track. Paid requires a confirmed or
// completed booking; use ApplyPaymentSuccess to move both tracks together.
func (b *Booking) SetPaymentStatus(to PaymentStatus, reference string) (bool, error) {
	if !to.Valid() {
		return false, fmt.Errorf("%w: unknown payment status %q", ErrValidation, to)
	}
	if b.PaymentStatus == to {
		if reference != "" && b.Reference() != reference && to != PaymentPaid {
			b.PaymentReference = &reference
			return true, nil
		}
		return false, nil
	}
	if !b.PaymentStatus.CanTransitionTo(to) {
		return false, fmt.Errorf("%w: payment %s -> %s", ErrIllegalTransition, b.PaymentStatus, to)
	}
	if to == PaymentPaid && b.Status != BookingConfirmed && b.Status != BookingCompleted {
		return false, fmt.Errorf("%w: payment cannot be paid while booking is %s", ErrIllegalTransition, b.Status)
	}

	b.PaymentStatus = to
	if reference != "" {
		b.PaymentReference = &reference
	}
	return true, nil
}

// ApplyPaymentSuccess marks the booking paid and confirmed as one unit.
// Replaying it on an already paid booking is a no-op.
func (b *Booking) ApplyPaymentSuccess(reference string) (bool, error) {
	if b.PaymentStatus == PaymentPaid {
		if b.Status == BookingPending {
			// earlier partial write: paid recorded but confirmation missing
			b.Status = BookingConfirmed
			return true, nil
		}
		return false, nil
	}
	if !b.PaymentStatus.CanTransitionTo(PaymentPaid) {
		return false, fmt.Errorf("%w: payment %s -> %s", ErrIllegalTransition, b.PaymentStatus, PaymentPaid)
	}
	if b.Status != BookingPending && b.Status != BookingConfirmed {
		return false, fmt.Errorf("%w: cannot confirm payment for %s booking", ErrIllegalTransition, b.Status)
	}

	b.PaymentStatus = PaymentPaid
	if reference != "" {
		b.PaymentReference = &reference
	}
	b.Status = BookingConfirmed
	return true, nil
}

// ApplyPaymentFailure records a failed attempt. Booking status is left as is
// so a new attempt can be started; a paid booking ignores late failures.
func (b *Booking) ApplyPaymentFailure(reference string) (bool, error) {
	if b.PaymentStatus == PaymentPaid {
		return false, nil
	}
	return b.SetPaymentStatus(PaymentFailed, reference)
}

// CanStartPayment reports whether a new gateway transaction may be opened.
// RecordPaymentAttempt stores the reference of a gateway transaction about to
// be opened. It always reports a change so the booking's idle clock restarts.
func (b *Booking) RecordPaymentAttempt(reference string) (bool, error) {
	if err := b.CanStartPayment(); err != nil {
		return false, err
	}
	b.PaymentReference = &reference
	return true, nil
}

// ExpireIfIdle cancels an unpaid pending booking last updated before cutoff.
// Anything touched since then, such as a booking with a fresh payment
// attempt, is left alone.
func (b *Booking) ExpireIfIdle(cutoff time.Time) (bool, error) {
	if b.Status != BookingPending || b.PaymentStatus == PaymentPaid || !b.UpdatedAt.Before(cutoff) {
		return false, nil
	}
	return b.TransitionTo(BookingCancelled)
}

func (b *Booking) CanStartPayment() error {
	if b.PaymentStatus == PaymentPaid {
		return fmt.Errorf("%w: booking already paid", ErrConflict)
	}
	if b.Status != BookingPending {
		return fmt.Errorf("%w: booking is %s", ErrConflict, b.Status)
	}
	return nil
}
