package destination

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartmobility/tripplanner/internal/routing"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL destination repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListByUser returns a user's destinations in creation order.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Destination, error) {
	query := `
		SELECT id, user_id, name, address, icon, lat, lng, search_count, last_used_at, created_at
		FROM destinations
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []*Destination
	for rows.Next() {
		var (
			d        Destination
			lat, lng *float64
		)
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Name,
			&d.Address,
			&d.Icon,
			&lat,
			&lng,
			&d.Count,
			&d.LastUsed,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			d.Location = &routing.Coordinate{Latitude: *lat, Longitude: *lng}
		}
		destinations = append(destinations, &d)
	}
	return destinations, rows.Err()
}

// Save upserts a destination by ID.
func (r *PostgresRepository) Save(ctx context.Context, d *Destination) error {
	query := `
		INSERT INTO destinations (id, user_id, name, address, icon, lat, lng, search_count, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			icon = EXCLUDED.icon,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			search_count = EXCLUDED.search_count,
			last_used_at = EXCLUDED.last_used_at
	`

	var lat, lng *float64
	if d.Location != nil {
		lat, lng = &d.Location.Latitude, &d.Location.Longitude
	}

	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.UserID,
		d.Name,
		d.Address,
		d.Icon,
		lat,
		lng,
		d.Count,
		d.LastUsed,
		d.CreatedAt,
	)
	return err
}
