package ports

import (
	"context"
	"time"

	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req domain.InitializeRequest) (*domain.Authorization, error)
	VerifyTransaction(ctx context.Context, reference string) (*domain.Transaction, error)
}

// PropertyLocker serializes booking creation per property across instances.
type PropertyLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, evt domain.BookingConfirmedEvent) error
	PublishPaymentFailed(ctx context.Context, evt domain.PaymentFailedEvent) error
}

// ReconciliationQueue receives outcomes that could not be applied synchronously.
type ReconciliationQueue interface {
	Enqueue(ctx context.Context, outcome domain.PaymentOutcome, reason error) error
}
