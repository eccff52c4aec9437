package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tripmap/internal/core/domain"
)

var tripColumns = []string{"id", "trip_date", "origin", "destination", "created_at"}

// TripRepo implements ports.TripRepository. Trips keep their insertion
// position so same-day order survives a round trip.
type TripRepo struct {
	db *DB
}

func NewTripRepo(db *DB) *TripRepo {
	return &TripRepo{db: db}
}

func (r *TripRepo) List(ctx context.Context, dr domain.DateRange) ([]domain.Trip, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, to_char(trip_date, 'YYYY-MM-DD'), origin, destination, created_at
		FROM trips
		WHERE ($1::date IS NULL OR trip_date >= $1::date)
		  AND ($2::date IS NULL OR trip_date <= $2::date)
		ORDER BY trip_date, position
	`, nullableDate(dr.Start), nullableDate(dr.End))
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		var t domain.Trip
		if err := rows.Scan(&t.ID, &t.Date, &t.Origin, &t.Destination, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *TripRepo) Create(ctx context.Context, trip *domain.Trip) error {
	row, err := tripRow(*trip)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO trips (id, trip_date, origin, destination, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, row...)
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownCity
	}
	return err
}

// ReplaceAll deletes every trip and copies the new list in, in order, inside
// one transaction.
func (r *TripRepo) ReplaceAll(ctx context.Context, trips []domain.Trip) error {
	rows := make([][]any, 0, len(trips))
	for _, t := range trips {
		row, err := tripRow(t)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM trips`); err != nil {
			return fmt.Errorf("clear trips: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"trips"}, tripColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy trips: %w", err)
		}
		return nil
	})
	if isForeignKeyViolation(err) {
		return domain.ErrUnknownCity
	}
	return err
}

func (r *TripRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func tripRow(t domain.Trip) ([]any, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return nil, fmt.Errorf("trip id %q: %w", t.ID, err)
	}
	date, err := time.Parse(domain.DateLayout, t.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDate, t.Date)
	}
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return []any{id, date, t.Origin, t.Destination, created}, nil
}

func nullableDate(d string) *time.Time {
	if d == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, d)
	if err != nil {
		return nil
	}
	return &t
}
