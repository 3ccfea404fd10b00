package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

// InitializeSchema creates the tables the booking workflow needs. The
// exclusion constraint uses the same range bounds as the conflict checker so
// the database rejects what a concurrent request slipped past the check.
func InitializeSchema(ctx context.Context, db *sqlx.DB, mode domain.OverlapMode) error {
	statements := []struct {
		name  string
		query string
	}{
		{"btree_gist extension", `CREATE EXTENSION IF NOT EXISTS btree_gist`},
		{"properties table", `
CREATE TABLE IF NOT EXISTS properties (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	owner_id UUID NOT NULL,
	title VARCHAR(255) NOT NULL,
	city VARCHAR(255) NOT NULL DEFAULT '',
	price_per_month NUMERIC(14, 2) NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
		{"bookings table", `
CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	property_id UUID NOT NULL REFERENCES properties (id),
	requester_id UUID NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	total_amount NUMERIC(14, 2) NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
	payment_reference VARCHAR(255),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT bookings_dates_ordered CHECK (end_date > start_date),
	CONSTRAINT bookings_amount_positive CHECK (total_amount > 0),
	CONSTRAINT bookings_status_valid CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
	CONSTRAINT bookings_payment_status_valid CHECK (payment_status IN ('pending', 'paid', 'failed')),
	CONSTRAINT bookings_paid_implies_confirmed CHECK (payment_status <> 'paid' OR status IN ('confirmed', 'completed'))
)`},
		{"bookings requester index", `CREATE INDEX IF NOT EXISTS bookings_requester_idx ON bookings (requester_id)`},
		{"bookings property index", `CREATE INDEX IF NOT EXISTS bookings_property_idx ON bookings (property_id, start_date)`},
		{"bookings no overlap constraint", fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (property_id WITH =, daterange(start_date, end_date, '%s') WITH &&)
			WHERE (status <> 'cancelled');
	END IF;
END
$$`, mode.RangeBounds())},
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}

	return nil
}
