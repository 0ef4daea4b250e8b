package bookings

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("booking not found")
	ErrOverlap  = errors.New("booking overlaps an active booking")
	ErrStale    = errors.New("booking status changed")
)

type Repository interface {
	// CreateWithNoOverlap inserta la reserva si ninguna PENDING/CONFIRMED del mismo
	// cuidador se cruza con ella (ver Overlaps); si no, ErrOverlap. Chequeo e insert son atómicos.
	CreateWithNoOverlap(ctx context.Context, b Booking) error
	GetByID(ctx context.Context, id string) (Booking, error)

	// UpdateStatus pasa de from a to solo si el estado actual sigue siendo from; si no, ErrStale.
	UpdateStatus(ctx context.Context, id string, from, to Status, updatedAt time.Time) error

	ListByUser(ctx context.Context, userID string) ([]Booking, error)     // startDate desc
	ListBySitter(ctx context.Context, sitterID string) ([]Booking, error) // startDate desc

	CountByUser(ctx context.Context, userID string) (int, error)
}
