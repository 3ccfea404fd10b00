package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Property is the bookable listing a booking points to. Only the fields the
// booking workflow reads are mapped.
type Property struct {
	ID            uuid.UUID       `db:"id"`
	OwnerID       uuid.UUID       `db:"owner_id"`
	Title         string          `db:"title"`
	City          string          `db:"city"`
	PricePerMonth decimal.Decimal `db:"price_per_month"`
	IsActive      bool            `db:"is_active"`
}
