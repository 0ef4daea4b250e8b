package sitters

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"rintintin/internal/domain/availability"
	"rintintin/internal/domain/users"
	"rintintin/internal/platform/apperr"
)

// -------------------------
// Test doubles (in-memory)
// -------------------------

type testRepo struct {
	byID    map[string]Profile
	reviews map[string][]Review
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Profile{}, reviews: map[string][]Review{}}
}

func (r *testRepo) Upsert(ctx context.Context, p Profile) (Profile, error) {
	for id, cur := range r.byID {
		if cur.UserID == p.UserID {
			p.ID = id
			p.CreatedAt = cur.CreatedAt
			p.Rating = cur.Rating
			p.ReviewCount = cur.ReviewCount
			break
		}
	}
	r.byID[p.ID] = p
	return p, nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	for _, p := range r.byID {
		if p.UserID == userID {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Profile, error) {
	out := make([]Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *testRepo) AddReview(ctx context.Context, rv Review) (Profile, error) {
	p, ok := r.byID[rv.SitterID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	r.reviews[rv.SitterID] = append(r.reviews[rv.SitterID], rv)
	p.Rating = MeanRating(r.reviews[rv.SitterID])
	p.ReviewCount = len(r.reviews[rv.SitterID])
	r.byID[p.ID] = p
	return p, nil
}

func (r *testRepo) ListReviews(ctx context.Context, sitterID string) ([]Review, error) {
	return append([]Review(nil), r.reviews[sitterID]...), nil
}

type testUsers struct {
	contacts map[string]users.Contact
	promoted map[string]int
}

func newTestUsers(cs ...users.Contact) *testUsers {
	u := &testUsers{contacts: map[string]users.Contact{}, promoted: map[string]int{}}
	for _, c := range cs {
		u.contacts[c.ID] = c
	}
	return u
}

func (u *testUsers) Contact(ctx context.Context, userID string) (users.Contact, error) {
	c, ok := u.contacts[userID]
	if !ok {
		return users.Contact{}, apperr.NotFound("Usuario no encontrado")
	}
	return c, nil
}

func (u *testUsers) PromoteToSitter(ctx context.Context, userID string) error {
	u.promoted[userID]++
	return nil
}

type testAvailability struct {
	entries []availability.Entry
}

func (a testAvailability) Upcoming(ctx context.Context, sitterID string) ([]availability.Entry, error) {
	return a.entries, nil
}

func price(v float64) *float64 { return &v }

// seed crea tres cuidadores con precios 200, 400 y 600.
func seed(t *testing.T) (*Service, *testRepo) {
	t.Helper()

	us := newTestUsers(
		users.Contact{ID: "u1", Name: "Ana Ruiz", Email: "ana@x.com", City: "Bogotá"},
		users.Contact{ID: "u2", Name: "Luis Peña", Email: "luis@x.com", City: "Medellín"},
		users.Contact{ID: "u3", Name: "Sara Gil", Email: "sara@x.com", City: "Bogotá D.C."},
	)
	repo := newTestRepo()
	svc := NewService(repo, us)

	inputs := []struct {
		user string
		in   ProfileInput
	}{
		{"u1", ProfileInput{Price: 200, Services: []string{"Paseo", "Hospedaje"}, PetTypes: []string{"Perro"}}},
		{"u2", ProfileInput{Price: 400, Services: []string{"Guardería"}, PetTypes: []string{"Gato", "Perro"}}},
		{"u3", ProfileInput{Price: 600, Services: []string{"Hospedaje"}, PetTypes: []string{"Gato"}}},
	}
	for _, it := range inputs {
		if _, err := svc.UpsertProfile(context.Background(), it.user, it.in); err != nil {
			t.Fatalf("UpsertProfile(%s) error: %v", it.user, err)
		}
	}
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestService_List_PriceRangeExcludesOutside(t *testing.T) {
	svc, _ := seed(t)

	items, err := svc.List(context.Background(), Filters{MinPrice: price(300), MaxPrice: price(500)})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 1 || items[0].Profile.Price != 400 {
		t.Fatalf("expected only the 400 sitter, got %#v", items)
	}
}

func TestService_List_InvertedPriceRangeIsEmpty(t *testing.T) {
	svc, _ := seed(t)

	items, err := svc.List(context.Background(), Filters{MinPrice: price(500), MaxPrice: price(100)})
	if err != nil {
		t.Fatalf("expected no error for min > max, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", items)
	}
}

func TestService_List_FiltersAreSubsetOfUnfiltered(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	all, err := svc.List(ctx, Filters{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sitters, got %d", len(all))
	}
	inAll := map[string]bool{}
	for _, it := range all {
		inAll[it.Profile.ID] = true
	}

	cases := []Filters{
		{City: "bogotá"},
		{Service: "hosped"},
		{PetType: "GATO"},
		{City: "bogotá", PetType: "gato"},
		{Service: "hospedaje", MaxPrice: price(300)},
		{MinPrice: price(250)},
		{MinPrice: price(500), MaxPrice: price(100)},
		{City: "cali"},
	}
	for _, f := range cases {
		got, err := svc.List(ctx, f)
		if err != nil {
			t.Fatalf("List(%+v) error: %v", f, err)
		}
		for _, it := range got {
			if !inAll[it.Profile.ID] {
				t.Fatalf("List(%+v) returned %s not in unfiltered listing", f, it.Profile.ID)
			}
			if !f.match(it.Profile, it.User) {
				t.Fatalf("List(%+v) returned %s that does not satisfy filters", f, it.Profile.ID)
			}
		}
	}

	got, _ := svc.List(ctx, Filters{City: "bogotá", PetType: "gato"})
	if len(got) != 1 || got[0].User.ID != "u3" {
		t.Fatalf("expected only u3 for bogotá+gato, got %#v", got)
	}
}

func TestService_UpsertProfile_UpdatesInPlaceAndPromotes(t *testing.T) {
	us := newTestUsers(users.Contact{ID: "u1", Name: "Ana Ruiz"})
	repo := newTestRepo()
	svc := NewService(repo, us)

	now1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now1 }
	p1, err := svc.UpsertProfile(context.Background(), "u1", ProfileInput{
		Price:    100,
		Services: []string{" Paseo ", "", "Paseo", "Baño"},
	})
	if err != nil {
		t.Fatalf("UpsertProfile #1 error: %v", err)
	}
	if got := p1.Services; len(got) != 2 || got[0] != "Paseo" || got[1] != "Baño" {
		t.Fatalf("expected normalized services [Paseo Baño], got %#v", got)
	}

	svc.now = func() time.Time { return now1.Add(time.Hour) }
	p2, err := svc.UpsertProfile(context.Background(), "u1", ProfileInput{Price: 150})
	if err != nil {
		t.Fatalf("UpsertProfile #2 error: %v", err)
	}
	if p2.ID != p1.ID {
		t.Fatalf("expected same profile id, got %s vs %s", p1.ID, p2.ID)
	}
	if p2.Price != 150 || !p2.CreatedAt.Equal(now1) {
		t.Fatalf("expected updated price and original CreatedAt, got %#v", p2)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one profile, got %d", len(repo.byID))
	}
	if us.promoted["u1"] != 2 {
		t.Fatalf("expected promote on every upsert, got %d", us.promoted["u1"])
	}
}

func TestService_UpsertProfile_RejectsNegativePrice(t *testing.T) {
	svc := NewService(newTestRepo(), newTestUsers(users.Contact{ID: "u1"}))

	_, err := svc.UpsertProfile(context.Background(), "u1", ProfileInput{Price: -1})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_AddReview_RatingIsMean(t *testing.T) {
	svc, repo := seed(t)
	ctx := context.Background()

	p, err := svc.ProfileForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ProfileForUser error: %v", err)
	}

	ratings := []int{5, 4, 2, 5}
	sum := 0
	for _, r := range ratings {
		if _, err := svc.AddReview(ctx, p.ID, "u2", r, "ok"); err != nil {
			t.Fatalf("AddReview(%d) error: %v", r, err)
		}
		sum += r
	}

	got := repo.byID[p.ID]
	want := float64(sum) / float64(len(ratings))
	if math.Abs(got.Rating-want) > 1e-9 {
		t.Fatalf("expected rating %v, got %v", want, got.Rating)
	}
	if got.ReviewCount != len(ratings) {
		t.Fatalf("expected %d reviews, got %d", len(ratings), got.ReviewCount)
	}
}

func TestService_AddReview_Validation(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	for _, r := range []int{0, 6, -1} {
		if _, err := svc.AddReview(ctx, "whatever", "u2", r, ""); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("rating %d: expected validation error, got %v", r, err)
		}
	}
	if _, err := svc.AddReview(ctx, "missing", "u2", 3, ""); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown sitter, got %v", err)
	}
}

func TestService_Get_IncludesAvailability(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.SetAvailability(testAvailability{entries: []availability.Entry{{ID: "a1", Date: day, IsAvailable: true}}})

	p, _ := svc.ProfileForUser(ctx, "u2")
	d, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if d.User.ID != "u2" || len(d.Availability) != 1 {
		t.Fatalf("unexpected detail: %#v", d)
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, apperr.NotFound("Cuidador no encontrado")) {
		t.Fatalf("expected Cuidador no encontrado, got %v", err)
	}
}

func TestService_ProfileIDForUser_NoProfile(t *testing.T) {
	svc := NewService(newTestRepo(), newTestUsers())

	_, err := svc.ProfileIDForUser(context.Background(), "nobody")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
