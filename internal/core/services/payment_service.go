package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
)

const (
	SourceWebhook = "webhook"
	SourceVerify  = "verify"
)

// Requester is the authenticated party calling the API.
type Requester struct {
	ID    uuid.UUID
	Email string
}

type InitializePaymentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyPaymentResponse struct {
	Status    domain.TransactionStatus `json:"status"`
	Amount    decimal.Decimal          `json:"amount"`
	Reference string                   `json:"reference"`
	PaidAt    *time.Time               `json:"paid_at"`
}

type PaymentStatusResponse struct {
	PaymentStatus    domain.PaymentStatus `json:"payment_status"`
	BookingStatus    domain.BookingStatus `json:"booking_status"`
	PaymentReference *string              `json:"payment_reference"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
}

type PaymentService struct {
	bookings    *BookingService
	gateway     ports.PaymentGateway
	reconciler  *Reconciler
	queue       ports.ReconciliationQueue
	callbackURL string
	logger      zerolog.Logger
	now         func() time.Time
}

func NewPaymentService(
	bookings *BookingService,
	gateway ports.PaymentGateway,
	reconciler *Reconciler,
	queue ports.ReconciliationQueue,
	frontendURL string,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		bookings:    bookings,
		gateway:     gateway,
		reconciler:  reconciler,
		queue:       queue,
		callbackURL: strings.TrimRight(frontendURL, "/") + "/payment/callback",
		logger:      logger.With().Str("component", "payment_service").Logger(),
		now:         time.Now,
	}
}

// InitializePayment opens a gateway transaction for a booking owned by the requester.
// Ownership and paid state are checked before the gateway is called.
func (s *PaymentService) InitializePayment(ctx context.Context, requester Requester, bookingID uuid.UUID) (*InitializePaymentResponse, error) {
	booking, err := s.bookings.GetOwnedBooking(ctx, requester.ID, bookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.CanStartPayment(); err != nil {
		return nil, err
	}
	if requester.Email == "" {
		return nil, fmt.Errorf("%w: requester email is required for payment", domain.ErrValidation)
	}

	reference := domain.NewPaymentReference(booking.ID, s.now())
	if _, err := s.bookings.RecordPaymentAttempt(ctx, booking.ID, reference); err != nil {
		return nil, err
	}

	auth, err := s.gateway.InitializeTransaction(ctx, domain.InitializeRequest{
		Email:       requester.Email,
		AmountMinor: domain.ToMinorUnits(booking.TotalAmount),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata: domain.TransactionMetadata{
			BookingID:   booking.ID.String(),
			RequesterID: requester.ID.String(),
			PropertyID:  booking.PropertyID.String(),
		},
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("booking_id", booking.ID.String()).
			Str("reference", reference).
			Msg("payment initialization failed")
		return nil, err
	}

	if auth.Reference == "" {
		auth.Reference = reference
	}

	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("reference", auth.Reference).
		Msg("payment initialized")

	return &InitializePaymentResponse{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        auth.Reference,
	}, nil
}

// VerifyPayment pulls the transaction from the gateway and reconciles the
// booking with the reported outcome.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (*VerifyPaymentResponse, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: reference is required", domain.ErrValidation)
	}

	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("payment verification failed")
		return nil, err
	}
	if tx.Reference == "" {
		tx.Reference = reference
	}

	s.reconciler.ApplyOrEnqueue(ctx, s.queue, domain.OutcomeFromTransaction(*tx, SourceVerify))

	return &VerifyPaymentResponse{
		Status:    tx.Status,
		Amount:    tx.Amount(),
		Reference: tx.Reference,
		PaidAt:    tx.PaidAt,
	}, nil
}

func (s *PaymentService) GetPaymentStatus(ctx context.Context, requesterID, bookingID uuid.UUID) (*PaymentStatusResponse, error) {
	booking, err := s.bookings.GetOwnedBooking(ctx, requesterID, bookingID)
	if err != nil {
		return nil, err
	}

	return &PaymentStatusResponse{
		PaymentStatus:    booking.PaymentStatus,
		BookingStatus:    booking.Status,
		PaymentReference: booking.PaymentReference,
		TotalAmount:      booking.TotalAmount,
	}, nil
}

// HandleWebhookEvent reconciles a signature-verified webhook event. Unknown
// events are logged and ignored; mutation failures go to the retry queue.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event string, outcome domain.PaymentOutcome) ReconcileResult {
	outcome.Source = SourceWebhook

	switch event {
	case domain.EventChargeSuccess:
		outcome.Status = domain.TransactionSuccess
	case domain.EventChargeFailed:
		outcome.Status = domain.TransactionFailed
	default:
		s.logger.Info().Str("event", event).Str("reference", outcome.Reference).Msg("unhandled webhook event")
		return ResultIgnored
	}

	return s.reconciler.ApplyOrEnqueue(ctx, s.queue, outcome)
}
