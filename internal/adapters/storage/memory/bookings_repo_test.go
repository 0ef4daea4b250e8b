package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"rintintin/internal/domain/bookings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func civil(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingRepo_CreateWithNoOverlap_HalfOpenStays(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepo()

	require.NoError(t, repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b1", SitterID: "s1", Status: bookings.StatusPending, StartDate: civil(1, 10), EndDate: civil(1, 12),
	}))

	// el 12 es día de salida: se puede entrar ese día
	assert.NoError(t, repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b2", SitterID: "s1", Status: bookings.StatusPending, StartDate: civil(1, 12), EndDate: civil(1, 14),
	}))

	err := repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b3", SitterID: "s1", Status: bookings.StatusPending, StartDate: civil(1, 11), EndDate: civil(1, 11),
	})
	assert.ErrorIs(t, err, bookings.ErrOverlap)

	// otro cuidador
	assert.NoError(t, repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b4", SitterID: "s2", Status: bookings.StatusPending, StartDate: civil(1, 11), EndDate: civil(1, 11),
	}))
}

func TestBookingRepo_ConcurrentCreatesOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepo()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.CreateWithNoOverlap(ctx, bookings.Booking{
				ID:        fmt.Sprintf("b%d", i),
				SitterID:  "s1",
				Status:    bookings.StatusPending,
				StartDate: civil(2, 1+i%3),
				EndDate:   civil(2, 6),
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, bookings.ErrOverlap)
	}
	assert.Equal(t, 1, ok)

	list, err := repo.ListBySitter(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBookingRepo_UpdateStatus_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepo()
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b1", SitterID: "s1", Status: bookings.StatusPending, StartDate: civil(1, 10), EndDate: civil(1, 12),
	}))

	require.NoError(t, repo.UpdateStatus(ctx, "b1", bookings.StatusPending, bookings.StatusCancelled, now))

	// el que leyó PENDING antes de la cancelación pierde
	err := repo.UpdateStatus(ctx, "b1", bookings.StatusPending, bookings.StatusConfirmed, now)
	assert.ErrorIs(t, err, bookings.ErrStale)

	b, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, b.Status)
	assert.Equal(t, now, b.UpdatedAt)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "nope", bookings.StatusPending, bookings.StatusConfirmed, now), bookings.ErrNotFound)
}

func TestBookingRepo_CancelledDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepo()

	require.NoError(t, repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b1", SitterID: "s1", Status: bookings.StatusPending, StartDate: civil(1, 10), EndDate: civil(1, 12),
	}))
	require.NoError(t, repo.UpdateStatus(ctx, "b1", bookings.StatusPending, bookings.StatusCancelled, time.Now()))

	assert.NoError(t, repo.CreateWithNoOverlap(ctx, bookings.Booking{
		ID: "b2", SitterID: "s1", Status: bookings.StatusPending, StartDate: civil(1, 10), EndDate: civil(1, 12),
	}))
}
