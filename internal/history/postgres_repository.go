package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqhub/aqhub/internal/airquality"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores one reading.
func (r *PostgresRepository) Insert(ctx context.Context, reading *StoredReading) error {
	query := `
		INSERT INTO readings (
			id, station_id, observed_at, aqi,
			pm25, pm10, o3, no2, so2, co,
			temperature, humidity, pressure, wind_speed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		reading.ID,
		reading.StationID,
		reading.Timestamp,
		reading.AQI,
		reading.Pollutants[airquality.PollutantPM25],
		reading.Pollutants[airquality.PollutantPM10],
		reading.Pollutants[airquality.PollutantO3],
		reading.Pollutants[airquality.PollutantNO2],
		reading.Pollutants[airquality.PollutantSO2],
		reading.Pollutants[airquality.PollutantCO],
		reading.Weather.Temperature,
		reading.Weather.Humidity,
		reading.Weather.Pressure,
		reading.Weather.WindSpeed,
	)
	return err
}

const readingColumns = `
	id, station_id, observed_at, aqi,
	pm25, pm10, o3, no2, so2, co,
	temperature, humidity, pressure, wind_speed
`

// List returns readings matching the filter, newest first, capped at limit.
func (r *PostgresRepository) List(ctx context.Context, filter Filter, limit int) ([]*StoredReading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		WHERE station_id = $1
			AND ($2::timestamptz IS NULL OR observed_at >= $2)
			AND ($3::timestamptz IS NULL OR observed_at <= $3)
		ORDER BY observed_at DESC
		LIMIT $4
	`

	var start, end *time.Time
	if !filter.Start.IsZero() {
		start = &filter.Start
	}
	if !filter.End.IsZero() {
		end = &filter.End
	}

	rows, err := r.pool.Query(ctx, query, filter.StationID, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

// ListSince returns a station's readings at or after cutoff, oldest first.
func (r *PostgresRepository) ListSince(ctx context.Context, stationID string, cutoff time.Time) ([]*StoredReading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		WHERE station_id = $1 AND observed_at >= $2
		ORDER BY observed_at ASC
	`

	rows, err := r.pool.Query(ctx, query, stationID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

// DeleteBefore removes readings older than cutoff.
func (r *PostgresRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM readings WHERE observed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReadings(rows rowScanner) ([]*StoredReading, error) {
	var out []*StoredReading
	for rows.Next() {
		reading := &StoredReading{Pollutants: airquality.NewPollutants()}

		var pm25, pm10, o3, no2, so2, co *float64
		if err := rows.Scan(
			&reading.ID,
			&reading.StationID,
			&reading.Timestamp,
			&reading.AQI,
			&pm25, &pm10, &o3, &no2, &so2, &co,
			&reading.Weather.Temperature,
			&reading.Weather.Humidity,
			&reading.Weather.Pressure,
			&reading.Weather.WindSpeed,
		); err != nil {
			return nil, err
		}

		reading.Pollutants[airquality.PollutantPM25] = pm25
		reading.Pollutants[airquality.PollutantPM10] = pm10
		reading.Pollutants[airquality.PollutantO3] = o3
		reading.Pollutants[airquality.PollutantNO2] = no2
		reading.Pollutants[airquality.PollutantSO2] = so2
		reading.Pollutants[airquality.PollutantCO] = co

		out = append(out, reading)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
