package availability

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert inserta o actualiza la fila (SitterID, Date). Devuelve la fila guardada.
	Upsert(ctx context.Context, e Entry) (Entry, error)

	// ListRange devuelve filas con from <= date <= to, ordenadas por fecha asc.
	// to.IsZero() significa sin límite superior.
	ListRange(ctx context.Context, sitterID string, from, to time.Time) ([]Entry, error)
}
