package availability

import (
	"context"
	"sort"
	"testing"
	"time"

	"rintintin/internal/platform/apperr"
)

type testRepo struct {
	rows map[string]Entry // sitterID|date
}

func newTestRepo() *testRepo {
	return &testRepo{rows: map[string]Entry{}}
}

func key(sitterID string, d time.Time) string {
	return sitterID + "|" + d.Format("2006-01-02")
}

func (r *testRepo) Upsert(ctx context.Context, e Entry) (Entry, error) {
	k := key(e.SitterID, e.Date)
	if cur, ok := r.rows[k]; ok {
		e.ID = cur.ID
		e.CreatedAt = cur.CreatedAt
	}
	r.rows[k] = e
	return e, nil
}

func (r *testRepo) ListRange(ctx context.Context, sitterID string, from, to time.Time) ([]Entry, error) {
	out := make([]Entry, 0)
	for _, e := range r.rows {
		if e.SitterID != sitterID || e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type testProfiles map[string]string // userID -> sitterID

func (p testProfiles) ProfileIDForUser(ctx context.Context, userID string) (string, error) {
	id, ok := p[userID]
	if !ok {
		return "", apperr.NotFound("Perfil de cuidador no encontrado")
	}
	return id, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, testProfiles{"user-1": "sitter-1"})
	svc.now = func() time.Time { return time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestService_Set_IsIdempotentPerDay(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	day := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)

	first, err := svc.Set(ctx, "user-1", SetInput{Date: day, IsAvailable: true, Slots: []string{"morning"}})
	if err != nil {
		t.Fatalf("Set #1 error: %v", err)
	}
	second, err := svc.Set(ctx, "user-1", SetInput{Date: day, IsAvailable: false, Slots: []string{"evening", "Evening", "overnight"}})
	if err != nil {
		t.Fatalf("Set #2 error: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.rows))
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row id, got %s vs %s", first.ID, second.ID)
	}
	got := repo.rows[key("sitter-1", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))]
	if got.IsAvailable || len(got.Slots) != 2 || got.Slots[0] != DayPartEvening || got.Slots[1] != DayPartOvernight {
		t.Fatalf("expected latest values, got %#v", got)
	}
}

func TestService_Set_RejectsUnknownSlot(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Set(context.Background(), "user-1", SetInput{Date: time.Now(), IsAvailable: true, Slots: []string{"night"}})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_Set_RequiresProfile(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Set(context.Background(), "user-2", SetInput{Date: time.Now(), IsAvailable: true})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Get_DefaultsToTodayForward(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, d := range []int{10, 15, 16} {
		if _, err := svc.Set(ctx, "user-1", SetInput{Date: time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC), IsAvailable: true}); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	items, err := svc.Get(ctx, "sitter-1", nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(items) != 2 || items[0].Date.Day() != 15 || items[1].Date.Day() != 16 {
		t.Fatalf("expected 15 and 16 ascending, got %#v", items)
	}

	items, err = svc.Get(ctx, "sitter-1", &Range{
		From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Get range error: %v", err)
	}
	if len(items) != 2 || items[0].Date.Day() != 10 {
		t.Fatalf("expected inclusive range 10..15, got %#v", items)
	}

	_, err = svc.Get(ctx, "sitter-1", &Range{From: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), To: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation for reversed range, got %v", err)
	}
}

func TestService_BlockedDays(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.Set(ctx, "user-1", SetInput{Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), IsAvailable: true})
	_, _ = svc.Set(ctx, "user-1", SetInput{Date: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), IsAvailable: false})

	blocked, err := svc.BlockedDays(ctx, "sitter-1", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("BlockedDays error: %v", err)
	}
	if len(blocked) != 1 || blocked[0].Day() != 2 {
		t.Fatalf("expected only April 2 blocked, got %v", blocked)
	}
}
