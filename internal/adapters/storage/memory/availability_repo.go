package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"rintintin/internal/domain/availability"
	"rintintin/internal/platform/dates"
)

type availabilityKey struct {
	sitterID string
	day      string // YYYY-MM-DD
}

type availabilityRepo struct {
	mu   sync.RWMutex
	rows map[availabilityKey]availability.Entry
}

func NewAvailabilityRepo() availability.Repository {
	return &availabilityRepo{
		rows: make(map[availabilityKey]availability.Entry),
	}
}

func (r *availabilityRepo) Upsert(ctx context.Context, e availability.Entry) (availability.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.Date = dates.Day(e.Date)
	k := availabilityKey{sitterID: e.SitterID, day: dates.Format(e.Date)}
	if cur, ok := r.rows[k]; ok {
		e.ID = cur.ID
		e.CreatedAt = cur.CreatedAt
	}
	e.Slots = append([]availability.DayPart(nil), e.Slots...)
	r.rows[k] = e
	return e, nil
}

func (r *availabilityRepo) ListRange(ctx context.Context, sitterID string, from, to time.Time) ([]availability.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]availability.Entry, 0)
	for k, e := range r.rows {
		if k.sitterID != sitterID || e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		e.Slots = append([]availability.DayPart(nil), e.Slots...)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
