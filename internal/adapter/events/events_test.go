package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/srgjo27/livestock_booking/internal/adapter/events"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApplier struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakeApplier) Apply(_ context.Context, _ domain.PaymentOutcome) (services.ReconcileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return services.ResultConfirmed, nil
}

func (f *fakeApplier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()

	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func outcome() domain.PaymentOutcome {
	id := uuid.New()
	return domain.PaymentOutcome{
		Reference:   domain.NewPaymentReference(id, time.Now()),
		Status:      domain.TransactionSuccess,
		AmountMinor: 10000,
		Metadata:    domain.TransactionMetadata{BookingID: id.String()},
		Source:      services.SourceWebhook,
	}
}

func TestPublisher_Topics(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	bus, err := events.NewEventBus(pubSub, watermill.NopLogger{})
	require.NoError(t, err)
	publisher := events.NewPublisher(bus)

	ctx := context.Background()

	confirmed, err := pubSub.Subscribe(ctx, "BookingConfirmedEvent")
	require.NoError(t, err)
	failed, err := pubSub.Subscribe(ctx, "PaymentFailedEvent")
	require.NoError(t, err)
	retries, err := pubSub.Subscribe(ctx, events.RetryTopic)
	require.NoError(t, err)

	bookingID := uuid.New()
	require.NoError(t, publisher.PublishBookingConfirmed(ctx, domain.BookingConfirmedEvent{BookingID: bookingID, AmountMinor: 5000000}))

	var evt domain.BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(receive(t, confirmed).Payload, &evt))
	assert.Equal(t, bookingID, evt.BookingID)
	assert.Equal(t, int64(5000000), evt.AmountMinor)

	require.NoError(t, publisher.PublishPaymentFailed(ctx, domain.PaymentFailedEvent{BookingID: bookingID, Reference: "booking_ref"}))

	var failure domain.PaymentFailedEvent
	require.NoError(t, json.Unmarshal(receive(t, failed).Payload, &failure))
	assert.Equal(t, bookingID, failure.BookingID)
	assert.Equal(t, "booking_ref", failure.Reference)

	o := outcome()
	require.NoError(t, publisher.Enqueue(ctx, o, errors.New("deadlock detected")))

	var retry domain.ReconciliationRetryRequested
	require.NoError(t, json.Unmarshal(receive(t, retries).Payload, &retry))
	assert.Equal(t, o, retry.Outcome)
	assert.Equal(t, "deadlock detected", retry.Reason)
	assert.False(t, retry.RequestedAt.IsZero())
}

func runRouter(t *testing.T, pubSub *gochannel.GoChannel, applier events.OutcomeApplier) {
	t.Helper()

	router, err := events.NewRouter(
		func(string) (message.Subscriber, error) { return pubSub, nil },
		pubSub,
		applier,
		events.RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		watermill.NopLogger{},
		zerolog.Nop(),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = router.Close()
	})

	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()
}

func enqueue(t *testing.T, pubSub *gochannel.GoChannel) {
	t.Helper()

	bus, err := events.NewEventBus(pubSub, watermill.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, events.NewPublisher(bus).Enqueue(context.Background(), outcome(), errors.New("timeout")))
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	applier := &fakeApplier{errs: []error{domain.ErrPersistence, domain.ErrPersistence}}
	runRouter(t, pubSub, applier)

	enqueue(t, pubSub)

	assert.Eventually(t, func() bool { return applier.Calls() == 3 }, 5*time.Second, 10*time.Millisecond)
}

func TestRouter_PoisonsPermanentFailuresWithoutRetry(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	poisoned, err := pubSub.Subscribe(context.Background(), events.PoisonTopic)
	require.NoError(t, err)

	applier := &fakeApplier{errs: []error{domain.ErrAmountMismatch}}
	runRouter(t, pubSub, applier)

	enqueue(t, pubSub)

	msg := receive(t, poisoned)
	assert.Contains(t, msg.Metadata.Get(middleware.ReasonForPoisonedKey), "paid amount does not match")
	assert.Equal(t, events.RetryTopic, msg.Metadata.Get(middleware.PoisonedTopicKey))
	assert.Equal(t, 1, applier.Calls())
}

func TestRouter_PoisonsExhaustedRetries(t *testing.T) {
	pubSub := newPubSub()
	defer pubSub.Close()

	poisoned, err := pubSub.Subscribe(context.Background(), events.PoisonTopic)
	require.NoError(t, err)

	applier := &fakeApplier{errs: []error{
		domain.ErrPersistence, domain.ErrPersistence, domain.ErrPersistence, domain.ErrPersistence,
	}}
	runRouter(t, pubSub, applier)

	enqueue(t, pubSub)

	msg := receive(t, poisoned)
	assert.Contains(t, msg.Metadata.Get(middleware.ReasonForPoisonedKey), "persistence error")
	assert.Equal(t, 4, applier.Calls())
}
