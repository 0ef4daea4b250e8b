package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"rintintin/internal/domain/bookings"
)

type bookingRepo struct {
	mu   sync.RWMutex
	byID map[string]bookings.Booking
}

func NewBookingRepo() bookings.Repository {
	return &bookingRepo{
		byID: make(map[string]bookings.Booking),
	}
}

// CreateWithNoOverlap chequea solapes e inserta bajo el mismo lock.
func (r *bookingRepo) CreateWithNoOverlap(ctx context.Context, b bookings.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("booking id required")
	}
	if _, exists := r.byID[b.ID]; exists {
		return errors.New("booking already exists")
	}
	for _, cur := range r.byID {
		if cur.SitterID == b.SitterID && cur.Status.Active() &&
			bookings.Overlaps(cur.StartDate, cur.EndDate, b.StartDate, b.EndDate) {
			return bookings.ErrOverlap
		}
	}
	r.byID[b.ID] = b
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (bookings.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return bookings.Booking{}, bookings.ErrNotFound
	}
	return b, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id string, from, to bookings.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return bookings.ErrNotFound
	}
	if b.Status != from {
		return bookings.ErrStale
	}
	b.Status = to
	b.UpdatedAt = updatedAt
	r.byID[id] = b
	return nil
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string) ([]bookings.Booking, error) {
	return r.filter(func(b bookings.Booking) bool { return b.UserID == userID }), nil
}

func (r *bookingRepo) ListBySitter(ctx context.Context, sitterID string) ([]bookings.Booking, error) {
	return r.filter(func(b bookings.Booking) bool { return b.SitterID == sitterID }), nil
}

func (r *bookingRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, b := range r.byID {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

// filter devuelve las reservas que cumplen keep, startDate desc.
func (r *bookingRepo) filter(keep func(bookings.Booking) bool) []bookings.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bookings.Booking, 0)
	for _, b := range r.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out
}
