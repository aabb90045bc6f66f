package alerts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alerts repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new alert.
func (r *PostgresRepository) Create(ctx context.Context, alert *Alert) error {
	query := `
		INSERT INTO alerts (id, user_id, location_id, threshold, pollutant, enabled, notification_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.UserID,
		alert.LocationID,
		alert.Threshold,
		alert.Pollutant,
		alert.Enabled,
		alert.Method,
		alert.CreatedAt,
	)
	return err
}

// Get retrieves one alert scoped to the user.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*Alert, error) {
	query := `
		SELECT id, user_id, location_id, threshold, pollutant, enabled, notification_method, created_at
		FROM alerts
		WHERE id = $1 AND user_id = $2
	`

	var a Alert
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&a.ID, &a.UserID, &a.LocationID,
		&a.Threshold, &a.Pollutant, &a.Enabled, &a.Method,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByUser returns the user's alerts, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Alert, error) {
	query := `
		SELECT id, user_id, location_id, threshold, pollutant, enabled, notification_method, created_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.LocationID,
			&a.Threshold, &a.Pollutant, &a.Enabled, &a.Method,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// ListEnabled returns every enabled alert across all users.
func (r *PostgresRepository) ListEnabled(ctx context.Context) ([]*Alert, error) {
	query := `
		SELECT id, user_id, location_id, threshold, pollutant, enabled, notification_method, created_at
		FROM alerts
		WHERE enabled
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.LocationID,
			&a.Threshold, &a.Pollutant, &a.Enabled, &a.Method,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Update rewrites an existing alert.
func (r *PostgresRepository) Update(ctx context.Context, alert *Alert) error {
	query := `
		UPDATE alerts SET
			threshold = $3,
			pollutant = $4,
			enabled = $5,
			notification_method = $6
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		alert.ID,
		alert.UserID,
		alert.Threshold,
		alert.Pollutant,
		alert.Enabled,
		alert.Method,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one alert scoped to the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM alerts WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
