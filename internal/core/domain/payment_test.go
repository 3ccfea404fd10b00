package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentReference(t *testing.T) {
	id := uuid.New()
	ref := domain.NewPaymentReference(id, time.UnixMilli(1740787200123))

	assert.Equal(t, "booking_"+id.String()+"_1740787200123", ref)

	parsed, err := domain.ParsePaymentReference(ref)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	for _, bad := range []string{
		"",
		"order_" + id.String() + "_1",
		"booking_" + id.String(),
		"booking_" + id.String() + "_",
		"booking_" + id.String() + "_abc",
		"booking_not-a-uuid_1",
	} {
		_, err := domain.ParsePaymentReference(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		minor  int64
	}{
		{amount: "50000", minor: 5000000},
		{amount: "750.5", minor: 75050},
		{amount: "19.995", minor: 2000},
		{amount: "0.01", minor: 1},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)

			assert.Equal(t, tt.minor, domain.ToMinorUnits(amount))
			assert.True(t, domain.FromMinorUnits(tt.minor).Equal(amount.Round(2)))
		})
	}
}

func TestTransactionMetadata_UnmarshalJSON(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "object", raw: `{"booking_id":"` + id + `","farmer_id":"f"}`, want: id},
		{name: "encoded string", raw: `"{\"booking_id\":\"` + id + `\"}"`, want: id},
		{name: "empty string", raw: `""`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m domain.TransactionMetadata
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.want, m.BookingID)
		})
	}
}

func TestPaymentOutcome_BookingID(t *testing.T) {
	id := uuid.New()

	got, ok := domain.PaymentOutcome{Metadata: domain.TransactionMetadata{BookingID: id.String()}}.BookingID()
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = domain.PaymentOutcome{}.BookingID()
	assert.False(t, ok)
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, domain.IsPermanent(domain.ErrAmountMismatch))
	assert.True(t, domain.IsPermanent(domain.ErrIllegalTransition))
	assert.True(t, domain.IsPermanent(domain.ErrNotFound))
	assert.False(t, domain.IsPermanent(domain.ErrPersistence))
	assert.False(t, domain.IsPermanent(domain.ErrGateway))
}
