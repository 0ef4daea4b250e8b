package sitters

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("sitter profile not found")

type Repository interface {
	// Upsert crea o actualiza el perfil de p.UserID. Conserva ID, CreatedAt y rating si ya existía.
	Upsert(ctx context.Context, p Profile) (Profile, error)

	GetByID(ctx context.Context, id string) (Profile, error)
	GetByUserID(ctx context.Context, userID string) (Profile, error)
	List(ctx context.Context) ([]Profile, error) // createdAt desc

	// AddReview inserta la reseña y recalcula Rating/ReviewCount del perfil de forma atómica.
	// Devuelve el perfil actualizado; ErrNotFound si el perfil no existe.
	AddReview(ctx context.Context, r Review) (Profile, error)
	ListReviews(ctx context.Context, sitterID string) ([]Review, error) // createdAt desc
}
