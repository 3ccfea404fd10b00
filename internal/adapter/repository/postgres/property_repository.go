package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/srgjo27/livestock_booking/internal/core/domain"
)

type PropertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `
	SELECT id, owner_id, title, city, price_per_month, is_active
	FROM properties
	WHERE id = $1
	`

	var property domain.Property
	if err := r.db.GetContext(ctx, &property, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: fetch property: %v", domain.ErrPersistence, err)
	}

	return &property, nil
}
