package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL report repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `id, lat, lng, title, description, category, image_uri, user_id, user_name, status, created_at, updated_at`

// Create inserts a new report.
func (r *PostgresRepository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Location.Latitude,
		report.Location.Longitude,
		report.Title,
		report.Description,
		string(report.Category),
		report.ImageURI,
		report.UserID,
		report.UserName,
		string(report.Status),
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

// Get finds a report by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// List returns matching reports, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Report, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(string(filter.Category)))
	}
	if b := filter.Bounds; b != nil {
		where = append(where,
			"lat BETWEEN "+arg(b.South)+" AND "+arg(b.North),
			"lng BETWEEN "+arg(b.West)+" AND "+arg(b.East),
		)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// UpdateStatus sets the status of a report.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	query := `UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var (
		report   Report
		category string
		status   string
	)
	err := row.Scan(
		&report.ID,
		&report.Location.Latitude,
		&report.Location.Longitude,
		&report.Title,
		&report.Description,
		&category,
		&report.ImageURI,
		&report.UserID,
		&report.UserName,
		&status,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	report.Category = Category(category)
	report.Status = Status(status)
	return &report, nil
}
