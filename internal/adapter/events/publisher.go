package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

const RetryTopic = "reconciliation.retry"

var retryEventName = cqrs.StructName(domain.ReconciliationRetryRequested{})

func topicFor(eventName string) string {
	if eventName == retryEventName {
		return RetryTopic
	}
	return eventName
}

func NewEventBus(pub message.Publisher, logger watermill.LoggerAdapter) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(
		pub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return topicFor(params.EventName), nil
			},
			Marshaler: newMarshaler(),
			Logger:    logger,
		},
	)
}

func newMarshaler() cqrs.JSONMarshaler {
	return cqrs.JSONMarshaler{
		GenerateName: cqrs.StructName,
	}
}

// Publisher emits booking payment events and feeds the reconciliation retry queue.
type Publisher struct {
	bus *cqrs.EventBus
	now func() time.Time
}

func NewPublisher(bus *cqrs.EventBus) *Publisher {
	return &Publisher{bus: bus, now: time.Now}
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, evt domain.BookingConfirmedEvent) error {
	return p.bus.Publish(ctx, evt)
}

func (p *Publisher) PublishPaymentFailed(ctx context.Context, evt domain.PaymentFailedEvent) error {
	return p.bus.Publish(ctx, evt)
}

func (p *Publisher) Enqueue(ctx context.Context, outcome domain.PaymentOutcome, reason error) error {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}

	return p.bus.Publish(ctx, domain.ReconciliationRetryRequested{
		Outcome:     outcome,
		Reason:      msg,
		RequestedAt: p.now().UTC(),
	})
}
