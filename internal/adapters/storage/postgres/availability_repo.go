package postgres

import (
	"context"
	"database/sql"
	"time"

	"rintintin/internal/domain/availability"
	"rintintin/internal/platform/dates"
)

type AvailabilityRepo struct {
	db *sql.DB
}

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

const availabilityColumns = `id, sitter_id, date, is_available, slots, created_at, updated_at`

func (r *AvailabilityRepo) Upsert(ctx context.Context, e availability.Entry) (availability.Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sitter_availability (`+availabilityColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (sitter_id, date) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			slots = EXCLUDED.slots,
			updated_at = EXCLUDED.updated_at
		RETURNING `+availabilityColumns,
		e.ID,
		e.SitterID,
		dates.Day(e.Date),
		e.IsAvailable,
		slotStrings(e.Slots),
		e.CreatedAt,
		e.UpdatedAt,
	)
	return scanEntry(row)
}

func (r *AvailabilityRepo) ListRange(ctx context.Context, sitterID string, from, to time.Time) ([]availability.Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if to.IsZero() {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+availabilityColumns+`
			FROM sitter_availability
			WHERE sitter_id = $1 AND date >= $2
			ORDER BY date ASC
		`, sitterID, dates.Day(from))
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+availabilityColumns+`
			FROM sitter_availability
			WHERE sitter_id = $1 AND date BETWEEN $2 AND $3
			ORDER BY date ASC
		`, sitterID, dates.Day(from), dates.Day(to))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]availability.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(s scanner) (availability.Entry, error) {
	var e availability.Entry
	var slots []string
	if err := s.Scan(
		&e.ID,
		&e.SitterID,
		&e.Date,
		&e.IsAvailable,
		textArray(&slots),
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return availability.Entry{}, err
	}
	// date llega como medianoche; se fuerza UTC
	e.Date = dates.Day(e.Date)
	e.Slots = make([]availability.DayPart, 0, len(slots))
	for _, s := range slots {
		e.Slots = append(e.Slots, availability.DayPart(s))
	}
	return e, nil
}

func slotStrings(in []availability.DayPart) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		out = append(out, string(p))
	}
	return out
}
