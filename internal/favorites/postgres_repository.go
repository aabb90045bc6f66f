package favorites

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

// NewPostgresRepository creates a new PostgreSQL favorites repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new favorite.
func (r *PostgresRepository) Create(ctx context.Context, favorite *Favorite) error {
	query := `
		INSERT INTO favorite_locations (id, user_id, name, lat, lon, station_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		favorite.ID,
		favorite.UserID,
		favorite.Name,
		favorite.Coordinate.Lat,
		favorite.Coordinate.Lon,
		favorite.StationID,
		favorite.CreatedAt,
	)
	return err
}

// Get retrieves one favorite scoped to the user.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*Favorite, error) {
	query := `
		SELECT id, user_id, name, lat, lon, station_id, created_at
		FROM favorite_locations
		WHERE id = $1 AND user_id = $2
	`

	var f Favorite
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&f.ID, &f.UserID, &f.Name,
		&f.Coordinate.Lat, &f.Coordinate.Lon,
		&f.StationID, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByUser returns the user's favorites, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Favorite, error) {
	query := `
		SELECT id, user_id, name, lat, lon, station_id, created_at
		FROM favorite_locations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.Name,
			&f.Coordinate.Lat, &f.Coordinate.Lon,
			&f.StationID, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// Update rewrites an existing favorite.
func (r *PostgresRepository) Update(ctx context.Context, favorite *Favorite) error {
	query := `
		UPDATE favorite_locations SET
			name = $3,
			lat = $4,
			lon = $5,
			station_id = $6
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		favorite.ID,
		favorite.UserID,
		favorite.Name,
		favorite.Coordinate.Lat,
		favorite.Coordinate.Lon,
		favorite.StationID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one favorite scoped to the user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM favorite_locations WHERE id = $1 AND user_id = $2`

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
