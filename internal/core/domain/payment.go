package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const referencePrefix = "booking_"

var minorUnitsPerBase = decimal.NewFromInt(100)

// TransactionStatus is the gateway-reported outcome of a transaction.
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// Webhook event names delivered by the gateway.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// TransactionMetadata is the correlation bag attached to a gateway transaction.
type TransactionMetadata struct {
	BookingID   string `json:"booking_id,omitempty"`
	RequesterID string `json:"farmer_id,omitempty"`
	PropertyID  string `json:"property_id,omitempty"`
}

// UnmarshalJSON tolerates the gateway sending metadata as an empty string,
// null, or a JSON-encoded string.
func (m *TransactionMetadata) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = TransactionMetadata{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s[0] != '{' {
			*m = TransactionMetadata{}
			return nil
		}
		data = []byte(s)
	}

	type plain TransactionMetadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = TransactionMetadata(p)
	return nil
}

// Transaction is the gateway's view of a payment, referenced but not owned.
type Transaction struct {
	Reference   string
	Status      TransactionStatus
	AmountMinor int64
	PaidAt      *time.Time
	Metadata    TransactionMetadata
}

func (t Transaction) Amount() decimal.Decimal {
	return FromMinorUnits(t.AmountMinor)
}

// InitializeRequest opens a hosted-payment-page transaction.
type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	CallbackURL string
	Metadata    TransactionMetadata
}

// Authorization is what the gateway returns for a successful initialization.
type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// PaymentOutcome is the input of reconciliation, whichever entry point produced it.
type PaymentOutcome struct {
	Reference   string              `json:"reference"`
	Status      TransactionStatus   `json:"status"`
	AmountMinor int64               `json:"amount"`
	Metadata    TransactionMetadata `json:"metadata"`
	Source      string              `json:"source"`
}

func (o PaymentOutcome) BookingID() (uuid.UUID, bool) {
	if o.Metadata.BookingID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(o.Metadata.BookingID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// OutcomeFromTransaction builds a reconciliation input from a verified transaction.
func OutcomeFromTransaction(t Transaction, source string) PaymentOutcome {
	return PaymentOutcome{
		Reference:   t.Reference,
		Status:      t.Status,
		AmountMinor: t.AmountMinor,
		Metadata:    t.Metadata,
		Source:      source,
	}
}

// NewPaymentReference builds booking_<bookingID>_<unix millis>.
func NewPaymentReference(bookingID uuid.UUID, now time.Time) string {
	return referencePrefix + bookingID.String() + "_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// ParsePaymentReference recovers the booking id embedded in a reference.
func ParsePaymentReference(ref string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(ref, referencePrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: reference %q has no booking prefix", ErrValidation, ref)
	}

	i := strings.LastIndexByte(rest, '_')
	if i <= 0 || i == len(rest)-1 {
		return uuid.Nil, fmt.Errorf("%w: malformed reference %q", ErrValidation, ref)
	}
	if _, err := strconv.ParseUint(rest[i+1:], 10, 64); err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed reference nonce %q", ErrValidation, ref)
	}

	id, err := uuid.Parse(rest[:i])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed booking id in reference %q", ErrValidation, ref)
	}
	return id, nil
}

// ToMinorUnits converts a base amount to the gateway's minor unit, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerBase).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
