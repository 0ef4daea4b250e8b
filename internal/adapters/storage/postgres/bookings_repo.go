package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rintintin/internal/domain/bookings"
	"rintintin/internal/platform/dates"
)

type BookingsRepo struct {
	db *sql.DB
}

func NewBookingsRepo(db *sql.DB) *BookingsRepo {
	return &BookingsRepo{db: db}
}

const bookingColumns = `
	id, user_id, sitter_id, pet_id,
	start_date, end_date, status,
	service_name, notes,
	subtotal, service_fee, price,
	created_at, updated_at`

// CreateWithNoOverlap corre en una transacción: bloquea el perfil del cuidador con
// FOR UPDATE para serializar altas concurrentes, chequea solapes y recién ahí inserta.
// Una estadía ocupa [start_date, checkout); checkout es end_date o start_date+1 si coinciden.
func (r *BookingsRepo) CreateWithNoOverlap(ctx context.Context, b bookings.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM sitter_profiles WHERE id = $1 FOR UPDATE`, b.SitterID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sitter profile %s: %w", b.SitterID, err)
		}
		return err
	}

	start := dates.Day(b.StartDate)
	var busy bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE sitter_id = $1
			  AND status IN ('PENDING', 'CONFIRMED')
			  AND start_date < $3
			  AND GREATEST(end_date, start_date + 1) > $2
		)
	`, b.SitterID, start, bookings.Checkout(start, dates.Day(b.EndDate))).Scan(&busy); err != nil {
		return err
	}
	if busy {
		return bookings.ErrOverlap
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		b.ID,
		b.UserID,
		b.SitterID,
		toNullString(b.PetID),
		start,
		dates.Day(b.EndDate),
		string(b.Status),
		b.ServiceName,
		b.Notes,
		b.Subtotal,
		b.ServiceFee,
		b.Price,
		b.CreatedAt,
		b.UpdatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (bookings.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bookings.Booking{}, bookings.ErrNotFound
		}
		return bookings.Booking{}, err
	}
	return b, nil
}

// UpdateStatus es un compare-and-set sobre status. Sin filas afectadas se distingue
// reserva inexistente (ErrNotFound) de estado cambiado por otro request (ErrStale).
func (r *BookingsRepo) UpdateStatus(ctx context.Context, id string, from, to bookings.Status, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4
	`, id, string(to), updatedAt, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return bookings.ErrNotFound
	}
	return bookings.ErrStale
}

func (r *BookingsRepo) ListByUser(ctx context.Context, userID string) ([]bookings.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1
		ORDER BY start_date DESC, created_at DESC
	`, userID)
}

func (r *BookingsRepo) ListBySitter(ctx context.Context, sitterID string) ([]bookings.Booking, error) {
	return r.list(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE sitter_id = $1
		ORDER BY start_date DESC, created_at DESC
	`, sitterID)
}

func (r *BookingsRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *BookingsRepo) list(ctx context.Context, query string, args ...any) ([]bookings.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bookings.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(s scanner) (bookings.Booking, error) {
	var b bookings.Booking
	var petID sql.NullString
	var status string
	if err := s.Scan(
		&b.ID,
		&b.UserID,
		&b.SitterID,
		&petID,
		&b.StartDate,
		&b.EndDate,
		&status,
		&b.ServiceName,
		&b.Notes,
		&b.Subtotal,
		&b.ServiceFee,
		&b.Price,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return bookings.Booking{}, err
	}
	b.PetID = petID.String
	b.Status = bookings.Status(status)
	b.StartDate = dates.Day(b.StartDate)
	b.EndDate = dates.Day(b.EndDate)
	return b, nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
