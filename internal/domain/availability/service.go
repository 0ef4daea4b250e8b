package availability

import (
	"context"
	"strings"
	"time"

	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/dates"

	"github.com/google/uuid"
)

// ProfileResolver traduce el usuario autenticado a su perfil de cuidador.
// Debe devolver un apperr.NotFound si el usuario no tiene perfil.
type ProfileResolver interface {
	ProfileIDForUser(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo     Repository
	profiles ProfileResolver
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileResolver) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		now:      time.Now,
	}
}

// Range es un rango de días inclusive.
type Range struct {
	From time.Time
	To   time.Time
}

// Get devuelve el ledger de un cuidador. Sin rango, todo desde hoy en adelante.
func (s *Service) Get(ctx context.Context, sitterID string, rng *Range) ([]Entry, error) {
	sitterID = strings.TrimSpace(sitterID)
	if sitterID == "" {
		return nil, apperr.Validation("Cuidador requerido")
	}

	if rng == nil {
		return s.repo.ListRange(ctx, sitterID, dates.Day(s.now()), time.Time{})
	}
	from, to := dates.Day(rng.From), dates.Day(rng.To)
	if to.Before(from) {
		return nil, apperr.Validation("La fecha de inicio debe ser anterior a la fecha de fin")
	}
	return s.repo.ListRange(ctx, sitterID, from, to)
}

// Upcoming es Get sin rango; lo usa el detalle del cuidador.
func (s *Service) Upcoming(ctx context.Context, sitterID string) ([]Entry, error) {
	return s.Get(ctx, sitterID, nil)
}

type SetInput struct {
	Date        time.Time
	IsAvailable bool
	Slots       []string
}

// Set hace upsert del día para el perfil del caller. Es idempotente por (perfil, día).
func (s *Service) Set(ctx context.Context, userID string, in SetInput) (Entry, error) {
	if in.Date.IsZero() {
		return Entry{}, apperr.Validation("La fecha es requerida")
	}
	slots, err := normalizeSlots(in.Slots)
	if err != nil {
		return Entry{}, err
	}

	sitterID, err := s.profiles.ProfileIDForUser(ctx, userID)
	if err != nil {
		return Entry{}, err
	}

	now := s.now()
	return s.repo.Upsert(ctx, Entry{
		ID:          uuid.NewString(),
		SitterID:    sitterID,
		Date:        dates.Day(in.Date),
		IsAvailable: in.IsAvailable,
		Slots:       slots,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// BlockedDays devuelve los días de [from, to] marcados explícitamente como no disponibles.
// Los días sin fila no se consideran bloqueados.
func (s *Service) BlockedDays(ctx context.Context, sitterID string, from, to time.Time) ([]time.Time, error) {
	items, err := s.repo.ListRange(ctx, sitterID, dates.Day(from), dates.Day(to))
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0)
	for _, e := range items {
		if !e.IsAvailable {
			out = append(out, e.Date)
		}
	}
	return out, nil
}

// normalizeSlots valida contra el vocabulario y deduplica manteniendo el orden.
func normalizeSlots(in []string) ([]DayPart, error) {
	seen := map[DayPart]struct{}{}
	out := make([]DayPart, 0, len(in))
	for _, raw := range in {
		p := DayPart(strings.ToLower(strings.TrimSpace(raw)))
		if p == "" {
			continue
		}
		if _, ok := dayParts[p]; !ok {
			return nil, apperr.Validation("Franja horaria inválida: "+raw,
				apperr.FieldError{Field: "slots", Message: "Valores permitidos: morning, afternoon, evening, overnight"})
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
