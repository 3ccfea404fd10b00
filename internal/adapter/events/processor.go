package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/services"
)

const PoisonTopic = "reconciliation.poison"

type OutcomeApplier interface {
	Apply(ctx context.Context, outcome domain.PaymentOutcome) (services.ReconcileResult, error)
}

type SubscriberConstructor func(handlerName string) (message.Subscriber, error)

type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Minute,
	}
}

// NewRouter builds the router that re-applies reconciliations which failed
// after the gateway was acknowledged. Permanent failures skip retries; both
// they and exhausted transient failures end up on PoisonTopic.
func NewRouter(
	newSubscriber SubscriberConstructor,
	publisher message.Publisher,
	applier OutcomeApplier,
	retry RetryConfig,
	wlogger watermill.LoggerAdapter,
	logger zerolog.Logger,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, wlogger)
	if err != nil {
		return nil, err
	}

	poisonAll, err := middleware.PoisonQueue(publisher, PoisonTopic)
	if err != nil {
		return nil, err
	}

	poisonPermanent, err := middleware.PoisonQueueWithFilter(publisher, PoisonTopic, domain.IsPermanent)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(poisonAll)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      retry.MaxRetries,
		InitialInterval: retry.InitialInterval,
		MaxInterval:     retry.MaxInterval,
		Multiplier:      2,
		Logger:          wlogger,
	}.Middleware)
	router.AddMiddleware(poisonPermanent)
	router.AddMiddleware(middleware.Recoverer)

	processor, err := cqrs.NewEventProcessorWithConfig(
		router,
		cqrs.EventProcessorConfig{
			GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
				return topicFor(params.EventName), nil
			},
			SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return newSubscriber(params.HandlerName)
			},
			Marshaler: newMarshaler(),
			Logger:    wlogger,
		},
	)
	if err != nil {
		return nil, err
	}

	err = processor.AddHandlers(
		RetryReconciliationHandler(applier, logger),
	)
	if err != nil {
		return nil, err
	}

	poisonSub, err := newSubscriber("log_poisoned_reconciliations")
	if err != nil {
		return nil, err
	}
	router.AddNoPublisherHandler(
		"log_poisoned_reconciliations",
		PoisonTopic,
		poisonSub,
		PoisonedReconciliationHandler(logger),
	)

	return router, nil
}

func RetryReconciliationHandler(applier OutcomeApplier, logger zerolog.Logger) cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"RetryReconciliation",
		func(ctx context.Context, evt *domain.ReconciliationRetryRequested) error {
			result, err := applier.Apply(ctx, evt.Outcome)
			if err != nil {
				return fmt.Errorf("retry reconciliation for %s: %w", evt.Outcome.Reference, err)
			}

			logger.Info().
				Str("reference", evt.Outcome.Reference).
				Str("booking_id", evt.Outcome.Metadata.BookingID).
				Str("result", string(result)).
				Str("original_failure", evt.Reason).
				Msg("queued reconciliation applied")
			return nil
		},
	)
}

// PoisonedReconciliationHandler raises an error-level log for every outcome
// that could not be applied, so it can be alerted on and replayed by hand.
func PoisonedReconciliationHandler(logger zerolog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		logger.Error().
			Err(errors.New(msg.Metadata.Get(middleware.ReasonForPoisonedKey))).
			Str("message_uuid", msg.UUID).
			Str("poisoned_topic", msg.Metadata.Get(middleware.PoisonedTopicKey)).
			Str("poisoned_handler", msg.Metadata.Get(middleware.PoisonedHandlerKey)).
			RawJSON("payload", msg.Payload).
			Msg("payment reconciliation dead-lettered")
		return nil
	}
}
