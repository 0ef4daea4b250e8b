package sitters

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"rintintin/internal/domain/availability"
	"rintintin/internal/domain/users"
	"rintintin/internal/platform/apperr"

	"github.com/google/uuid"
)

const (
	msgSitterNotFound  = "Cuidador no encontrado"
	msgProfileNotFound = "Perfil de cuidador no encontrado"
)

// UserDirectory es lo que sitters necesita de users.
type UserDirectory interface {
	Contact(ctx context.Context, userID string) (users.Contact, error)
	PromoteToSitter(ctx context.Context, userID string) error
}

// AvailabilityReader entrega el ledger desde hoy en adelante para el detalle.
type AvailabilityReader interface {
	Upcoming(ctx context.Context, sitterID string) ([]availability.Entry, error)
}

type Service struct {
	repo         Repository
	users        UserDirectory
	availability AvailabilityReader
	now          func() time.Time
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{
		repo:  repo,
		users: users,
		now:   time.Now,
	}
}

// SetAvailability cierra el ciclo sitters <-> availability en el router:
// availability necesita el servicio de sitters para resolver perfiles.
func (s *Service) SetAvailability(a AvailabilityReader) {
	s.availability = a
}

// Listing es un perfil con el resumen del usuario y sus reseñas.
type Listing struct {
	Profile Profile
	User    users.Contact
	Reviews []Review
}

// Detail agrega la disponibilidad futura al listing.
type Detail struct {
	Listing
	Availability []availability.Entry
}

func (s *Service) List(ctx context.Context, f Filters) ([]Listing, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Listing, 0, len(profiles))
	for _, p := range profiles {
		contact, err := s.users.Contact(ctx, p.UserID)
		if err != nil {
			// perfil huérfano (usuario borrado): no se lista
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return nil, err
		}
		if !f.match(p, contact) {
			continue
		}
		reviews, err := s.repo.ListReviews(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Listing{Profile: p, User: contact, Reviews: reviews})
	}
	return out, nil
}

func (f Filters) match(p Profile, u users.Contact) bool {
	if f.City != "" && !containsFold(u.City, f.City) {
		return false
	}
	if f.Service != "" && !anyContainsFold(p.Services, f.Service) {
		return false
	}
	if f.PetType != "" && !anyContainsFold(p.PetTypes, f.PetType) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	contact, err := s.users.Contact(ctx, p.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return Detail{}, apperr.NotFound(msgSitterNotFound)
		}
		return Detail{}, err
	}
	reviews, err := s.repo.ListReviews(ctx, p.ID)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Listing: Listing{Profile: p, User: contact, Reviews: reviews}}
	if s.availability != nil {
		if d.Availability, err = s.availability.Upcoming(ctx, p.ID); err != nil {
			return Detail{}, err
		}
	}
	return d, nil
}

// GetByID devuelve el perfil sin relaciones; NotFound "Cuidador no encontrado".
func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, apperr.NotFound(msgSitterNotFound)
		}
		return Profile{}, err
	}
	return p, nil
}

// ProfileForUser resuelve el perfil del usuario; NotFound "Perfil de cuidador no encontrado".
func (s *Service) ProfileForUser(ctx context.Context, userID string) (Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Profile{}, apperr.NotFound(msgProfileNotFound)
		}
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) ProfileIDForUser(ctx context.Context, userID string) (string, error) {
	p, err := s.ProfileForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

type ProfileInput struct {
	Bio          string
	Price        float64
	Location     string
	Neighborhood string
	Experience   string

	Services []string
	PetTypes []string

	PropertyType    string
	HasOutdoorSpace bool
	AllowsPets      bool
	MaxPets         int

	Skills         string
	Certifications string
}

func (in ProfileInput) validate() error {
	var fields []apperr.FieldError
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		fields = append(fields, apperr.FieldError{Field: "price", Message: "El precio debe ser un número mayor o igual a 0"})
	}
	if in.MaxPets < 0 {
		fields = append(fields, apperr.FieldError{Field: "maxPets", Message: "maxPets no puede ser negativo"})
	}
	if len(fields) > 0 {
		return apperr.Validation(fields[0].Message, fields...)
	}
	return nil
}

// UpsertProfile crea el perfil del usuario o lo actualiza en sitio, y sube su rol a SITTER.
func (s *Service) UpsertProfile(ctx context.Context, userID string, in ProfileInput) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, apperr.Validation("Usuario requerido")
	}
	if err := in.validate(); err != nil {
		return Profile{}, err
	}
	// el usuario debe existir
	if _, err := s.users.Contact(ctx, userID); err != nil {
		return Profile{}, err
	}

	now := s.now()
	p, err := s.repo.Upsert(ctx, Profile{
		ID:              uuid.NewString(),
		UserID:          userID,
		Bio:             strings.TrimSpace(in.Bio),
		Price:           in.Price,
		Location:        strings.TrimSpace(in.Location),
		Neighborhood:    strings.TrimSpace(in.Neighborhood),
		Experience:      strings.TrimSpace(in.Experience),
		Services:        NormalizeSet(in.Services),
		PetTypes:        NormalizeSet(in.PetTypes),
		PropertyType:    strings.TrimSpace(in.PropertyType),
		HasOutdoorSpace: in.HasOutdoorSpace,
		AllowsPets:      in.AllowsPets,
		MaxPets:         in.MaxPets,
		Skills:          strings.TrimSpace(in.Skills),
		Certifications:  strings.TrimSpace(in.Certifications),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return Profile{}, err
	}

	if err := s.users.PromoteToSitter(ctx, userID); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// AddReview registra la reseña y deja el rating del perfil igual al promedio.
func (s *Service) AddReview(ctx context.Context, sitterID, userID string, rating int, comment string) (Review, error) {
	if rating < minRating || rating > maxRating {
		return Review{}, apperr.Validation("La calificación debe estar entre 1 y 5",
			apperr.FieldError{Field: "rating", Message: "La calificación debe estar entre 1 y 5"})
	}

	r := Review{
		ID:        uuid.NewString(),
		SitterID:  strings.TrimSpace(sitterID),
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	}
	if _, err := s.repo.AddReview(ctx, r); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Review{}, apperr.NotFound(msgSitterNotFound)
		}
		return Review{}, err
	}
	return r, nil
}

// NormalizeSet recorta, descarta vacíos y deduplica conservando el primer orden.
func NormalizeSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContainsFold(values []string, sub string) bool {
	for _, v := range values {
		if containsFold(v, sub) {
			return true
		}
	}
	return false
}
