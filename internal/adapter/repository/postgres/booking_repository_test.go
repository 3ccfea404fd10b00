package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/livestock_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/core/ports"
	"github.com/srgjo27/livestock_booking/internal/platform/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *sqlx.DB
var getDbOnce sync.Once

func getDb(t *testing.T) *sqlx.DB {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}

	getDbOnce.Do(func() {
		var err error
		db, err = sqlx.Open("postgres", url)
		if err != nil {
			panic(err)
		}
		if err := database.InitializeSchema(context.Background(), db, domain.OverlapHalfOpen); err != nil {
			panic(err)
		}
	})
	return db
}

func createProperty(t *testing.T, db *sqlx.DB) uuid.UUID {
	id := uuid.New()
	_, err := db.Exec(`INSERT INTO properties (id, owner_id, title, city, price_per_month) VALUES ($1, $2, 'Kandang Sapi', 'Medan', 1500000)`, id, uuid.New())
	require.NoError(t, err)
	return id
}

func newBooking(t *testing.T, propertyID uuid.UUID, start, end string) *domain.Booking {
	s, err := domain.ParseDate(start)
	require.NoError(t, err)
	e, err := domain.ParseDate(end)
	require.NoError(t, err)

	b, err := domain.NewBooking(domain.BookingDraft{
		PropertyID:  propertyID,
		RequesterID: uuid.New(),
		StartDate:   s,
		EndDate:     e,
		TotalAmount: decimal.RequireFromString("50000"),
	}, time.Now().UTC())
	require.NoError(t, err)
	return b
}

func TestBookingRepository_CreateAndFind_Integration(t *testing.T) {
	db := getDb(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	propertyID := createProperty(t, db)
	booking := newBooking(t, propertyID, "2025-03-01", "2025-03-31")

	require.NoError(t, repo.Create(ctx, booking))

	got, found, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, booking.RequesterID, got.RequesterID)
	assert.Equal(t, "2025-03-01", got.StartDate.Format(domain.DateLayout))
	assert.True(t, got.TotalAmount.Equal(booking.TotalAmount))
	assert.Equal(t, domain.BookingPending, got.Status)

	_, found, err = repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)

	mine, err := repo.FindByRequester(ctx, booking.RequesterID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestBookingRepository_Overlap_Integration(t *testing.T) {
	db := getDb(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	propertyID := createProperty(t, db)
	require.NoError(t, repo.Create(ctx, newBooking(t, propertyID, "2025-03-01", "2025-03-31")))

	check := func(start, end string, mode domain.OverlapMode) bool {
		s, _ := domain.ParseDate(start)
		e, _ := domain.ParseDate(end)
		overlap, err := repo.HasOverlap(ctx, ports.OverlapQuery{
			PropertyID: propertyID,
			Range:      domain.DateRange{Start: s, End: e},
			Mode:       mode,
		})
		require.NoError(t, err)
		return overlap
	}

	assert.True(t, check("2025-03-15", "2025-04-15", domain.OverlapHalfOpen))
	assert.False(t, check("2025-03-31", "2025-04-30", domain.OverlapHalfOpen))
	assert.True(t, check("2025-03-31", "2025-04-30", domain.OverlapInclusive))
	assert.False(t, check("2025-04-01", "2025-04-30", domain.OverlapInclusive))

	// the exclusion constraint backs up the application check
	err := repo.Create(ctx, newBooking(t, propertyID, "2025-03-15", "2025-04-15"))
	assert.ErrorIs(t, err, domain.ErrDateConflict)

	require.NoError(t, repo.Create(ctx, newBooking(t, propertyID, "2025-03-31", "2025-04-30")))
}

func TestBookingRepository_CancelledBookingsFreeTheDates_Integration(t *testing.T) {
	db := getDb(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	propertyID := createProperty(t, db)
	first := newBooking(t, propertyID, "2025-06-01", "2025-06-30")
	require.NoError(t, repo.Create(ctx, first))

	require.NoError(t, repo.UpdateStatus(ctx, first.ID, domain.BookingCancelled))

	require.NoError(t, repo.Create(ctx, newBooking(t, propertyID, "2025-06-10", "2025-06-20")))
}

func TestBookingRepository_Mutate_Integration(t *testing.T) {
	db := getDb(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	propertyID := createProperty(t, db)
	booking := newBooking(t, propertyID, "2025-07-01", "2025-07-31")
	require.NoError(t, repo.Create(ctx, booking))

	ref := domain.NewPaymentReference(booking.ID, time.Now())
	confirm := func(b *domain.Booking) (bool, error) { return b.ApplyPaymentSuccess(ref) }

	// concurrent deliveries of the same outcome: exactly one applies it
	var wg sync.WaitGroup
	results := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, changed, err := repo.Mutate(ctx, booking.ID, confirm)
			assert.NoError(t, err)
			results <- changed
		}()
	}
	wg.Wait()
	close(results)

	applied := 0
	for changed := range results {
		if changed {
			applied++
		}
	}
	assert.Equal(t, 1, applied)

	got, _, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, ref, got.Reference())

	err = repo.UpdateStatus(ctx, booking.ID, domain.BookingCancelled)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, _, err = repo.Mutate(ctx, uuid.New(), confirm)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPropertyRepository_GetByID_Integration(t *testing.T) {
	db := getDb(t)
	repo := postgres.NewPropertyRepository(db)
	ctx := context.Background()

	id := createProperty(t, db)

	property, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kandang Sapi", property.Title)
	assert.True(t, property.IsActive)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_PaymentAttemptRestartsIdleClock_Integration(t *testing.T) {
	db := getDb(t)
	repo := postgres.NewBookingRepository(db)
	ctx := context.Background()

	propertyID := createProperty(t, db)
	booking := newBooking(t, propertyID, "2025-05-01", "2025-05-31")
	booking.CreatedAt = time.Now().UTC().Add(-72 * time.Hour)
	booking.UpdatedAt = booking.CreatedAt
	require.NoError(t, repo.Create(ctx, booking))

	cutoff := time.Now().UTC().Add(-48 * time.Hour)

	stale, err := repo.FindUnpaidPendingUpdatedBefore(ctx, cutoff, 10000)
	require.NoError(t, err)
	assert.Contains(t, stale, booking.ID)

	_, changed, err := repo.Mutate(ctx, booking.ID, func(b *domain.Booking) (bool, error) {
		return b.RecordPaymentAttempt(domain.NewPaymentReference(b.ID, time.Now()))
	})
	require.NoError(t, err)
	require.True(t, changed)

	stale, err = repo.FindUnpaidPendingUpdatedBefore(ctx, cutoff, 10000)
	require.NoError(t, err)
	assert.NotContains(t, stale, booking.ID)
}
