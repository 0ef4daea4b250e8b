package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"rintintin/internal/platform/apperr"

	"github.com/google/uuid"
)

const msgPetNotFound = "Mascota no encontrada"

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type Input struct {
	Name         string
	Breed        string
	Age          int
	Weight       *float64
	SpecialNeeds string
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("El nombre de la mascota es requerido",
			apperr.FieldError{Field: "name", Message: "El nombre de la mascota es requerido"})
	}
	if in.Age < 0 {
		return apperr.Validation("La edad no puede ser negativa",
			apperr.FieldError{Field: "age", Message: "La edad no puede ser negativa"})
	}
	if in.Weight != nil && *in.Weight < 0 {
		return apperr.Validation("El peso no puede ser negativo",
			apperr.FieldError{Field: "weight", Message: "El peso no puede ser negativo"})
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (Pet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Pet{}, apperr.Validation("Dueño requerido")
	}
	if err := in.validate(); err != nil {
		return Pet{}, err
	}

	now := s.now()
	p := Pet{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(in.Name),
		Breed:        strings.TrimSpace(in.Breed),
		Age:          in.Age,
		Weight:       in.Weight,
		SpecialNeeds: strings.TrimSpace(in.SpecialNeeds),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Update reemplaza los datos de la mascota. Si no es del caller responde 404
// (no se revela que la mascota existe).
func (s *Service) Update(ctx context.Context, ownerID, petID string, in Input) (Pet, error) {
	p, err := s.ownedBy(ctx, ownerID, petID)
	if err != nil {
		return Pet{}, err
	}
	if err := in.validate(); err != nil {
		return Pet{}, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Breed = strings.TrimSpace(in.Breed)
	p.Age = in.Age
	p.Weight = in.Weight
	p.SpecialNeeds = strings.TrimSpace(in.SpecialNeeds)
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Pet{}, apperr.NotFound(msgPetNotFound)
		}
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, petID string) error {
	if _, err := s.ownedBy(ctx, ownerID, petID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, petID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound(msgPetNotFound)
		}
		return err
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Pet{}, apperr.NotFound(msgPetNotFound)
		}
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ownedBy(ctx context.Context, ownerID, petID string) (Pet, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != ownerID {
		return Pet{}, apperr.NotFound(msgPetNotFound)
	}
	return p, nil
}
