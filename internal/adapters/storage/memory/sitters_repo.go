package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"rintintin/internal/domain/sitters"
)

// sitterRepo guarda perfiles y reseñas bajo el mismo mutex: AddReview
// inserta y recalcula el rating en una sola sección crítica.
type sitterRepo struct {
	mu       sync.RWMutex
	byID     map[string]sitters.Profile
	byUserID map[string]string // userID -> profileID
	reviews  map[string][]sitters.Review
}

func NewSitterRepo() sitters.Repository {
	return &sitterRepo{
		byID:     make(map[string]sitters.Profile),
		byUserID: make(map[string]string),
		reviews:  make(map[string][]sitters.Review),
	}
}

func (r *sitterRepo) Upsert(ctx context.Context, p sitters.Profile) (sitters.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.UserID) == "" {
		return sitters.Profile{}, errors.New("sitter user id required")
	}

	if id, ok := r.byUserID[p.UserID]; ok {
		cur := r.byID[id]
		p.ID = cur.ID
		p.CreatedAt = cur.CreatedAt
		p.Rating = cur.Rating
		p.ReviewCount = cur.ReviewCount
	} else if strings.TrimSpace(p.ID) == "" {
		return sitters.Profile{}, errors.New("sitter id required")
	}

	p = cloneProfile(p)
	r.byID[p.ID] = p
	r.byUserID[p.UserID] = p.ID
	return cloneProfile(p), nil
}

func (r *sitterRepo) GetByID(ctx context.Context, id string) (sitters.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return sitters.Profile{}, sitters.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *sitterRepo) GetByUserID(ctx context.Context, userID string) (sitters.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUserID[userID]
	if !ok {
		return sitters.Profile{}, sitters.ErrNotFound
	}
	return cloneProfile(r.byID[id]), nil
}

func (r *sitterRepo) List(ctx context.Context) ([]sitters.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sitters.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *sitterRepo) AddReview(ctx context.Context, rv sitters.Review) (sitters.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[rv.SitterID]
	if !ok {
		return sitters.Profile{}, sitters.ErrNotFound
	}

	r.reviews[p.ID] = append(r.reviews[p.ID], rv)
	p.Rating = sitters.MeanRating(r.reviews[p.ID])
	p.ReviewCount = len(r.reviews[p.ID])
	r.byID[p.ID] = p
	return cloneProfile(p), nil
}

func (r *sitterRepo) ListReviews(ctx context.Context, sitterID string) ([]sitters.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.reviews[sitterID]
	out := make([]sitters.Review, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	return out, nil
}

func cloneProfile(p sitters.Profile) sitters.Profile {
	p.Services = append([]string(nil), p.Services...)
	p.PetTypes = append([]string(nil), p.PetTypes...)
	return p
}
