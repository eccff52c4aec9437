package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// List returns every city ordered by name.
func (r *CityRepo) List(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, latitude, longitude, note, updated_at
		FROM cities ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.Name, &c.Location.Lat, &c.Location.Lon, &c.Note, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// GetByName returns a city by name.
func (r *CityRepo) GetByName(ctx context.Context, name string) (*domain.City, error) {
	var c domain.City
	err := r.db.Pool.QueryRow(ctx, `
		SELECT name, latitude, longitude, note, updated_at
		FROM cities WHERE name = $1
	`, name).Scan(&c.Name, &c.Location.Lat, &c.Location.Lon, &c.Note, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertBatch inserts or updates cities using pgx.Batch.
func (r *CityRepo) UpsertBatch(ctx context.Context, cities []domain.City) (domain.UpsertSummary, error) {
	batch := &pgx.Batch{}
	for _, c := range cities {
		// xmax is 0 only for freshly inserted rows.
		batch.Queue(`
			INSERT INTO cities (name, latitude, longitude, note, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (name) DO UPDATE
			SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			    note = EXCLUDED.note, updated_at = now()
			RETURNING (xmax = 0)
		`, c.Name, c.Location.Lat, c.Location.Lon, c.Note)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	summary := domain.UpsertSummary{Total: len(cities)}
	for range cities {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			return domain.UpsertSummary{}, fmt.Errorf("batch upsert: %w", err)
		}
		if inserted {
			summary.Added++
		} else {
			summary.Updated++
		}
	}
	return summary, nil
}

// Delete removes a city. Trips reference cities with ON DELETE RESTRICT.
func (r *CityRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM cities WHERE name = $1`, name)
	if isForeignKeyViolation(err) {
		return domain.ErrCityInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
