package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"rintintin/internal/domain/pets"
	"rintintin/internal/domain/sitters"
	"rintintin/internal/domain/users"
	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/dates"

	"github.com/google/uuid"
)

const (
	msgMissingData       = "Faltan datos requeridos"
	msgBookingNotFound   = "Reserva no encontrada"
	msgPetNotFound       = "Mascota no encontrada"
	msgNotAuthorized     = "No autorizado"
	msgInvalidStatus     = "Estado inválido"
	msgInvalidTransition = "Transición de estado inválida"
	msgSitterUnavailable = "El cuidador no está disponible en las fechas seleccionadas"
	msgSitterBusy        = "El cuidador ya tiene una reserva en esas fechas"
)

// SitterLookup resuelve perfiles de cuidador. Ambos métodos devuelven apperr.NotFound.
type SitterLookup interface {
	GetByID(ctx context.Context, id string) (sitters.Profile, error)
	ProfileForUser(ctx context.Context, userID string) (sitters.Profile, error)
}

type PetLookup interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
	ListByOwners(ctx context.Context, ownerIDs []string) ([]pets.Pet, error)
}

type ContactLookup interface {
	Contact(ctx context.Context, userID string) (users.Contact, error)
}

// AvailabilityChecker devuelve los días bloqueados explícitamente en el ledger.
type AvailabilityChecker interface {
	BlockedDays(ctx context.Context, sitterID string, from, to time.Time) ([]time.Time, error)
}

type Service struct {
	repo         Repository
	sitters      SitterLookup
	pets         PetLookup
	contacts     ContactLookup
	availability AvailabilityChecker
	now          func() time.Time
}

type Deps struct {
	Sitters      SitterLookup
	Pets         PetLookup
	Contacts     ContactLookup
	Availability AvailabilityChecker
}

func NewService(repo Repository, deps Deps) *Service {
	return &Service{
		repo:         repo,
		sitters:      deps.Sitters,
		pets:         deps.Pets,
		contacts:     deps.Contacts,
		availability: deps.Availability,
		now:          time.Now,
	}
}

type CreateInput struct {
	SitterID    string
	PetID       string
	StartDate   time.Time
	EndDate     time.Time
	ServiceName string
	Notes       string
}

// Create registra la reserva en PENDING. El precio se calcula con la tarifa del cuidador.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Booking, error) {
	in.SitterID = strings.TrimSpace(in.SitterID)
	in.PetID = strings.TrimSpace(in.PetID)
	if in.SitterID == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Booking{}, apperr.Validation(msgMissingData)
	}
	start, end := dates.Day(in.StartDate), dates.Day(in.EndDate)
	if end.Before(start) {
		return Booking{}, apperr.Validation("La fecha de fin no puede ser anterior a la de inicio",
			apperr.FieldError{Field: "endDate", Message: "La fecha de fin no puede ser anterior a la de inicio"})
	}

	sitter, err := s.sitters.GetByID(ctx, in.SitterID)
	if err != nil {
		return Booking{}, err
	}

	if in.PetID != "" {
		owner, err := s.pets.OwnerOf(ctx, in.PetID)
		if err != nil {
			return Booking{}, err
		}
		if owner != userID {
			return Booking{}, apperr.NotFound(msgPetNotFound)
		}
	}

	if err := s.checkAvailability(ctx, sitter.ID, start, end); err != nil {
		return Booking{}, err
	}

	q := NewQuote(sitter.Price, start, end)
	now := s.now()
	b := Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		SitterID:    sitter.ID,
		PetID:       in.PetID,
		StartDate:   start,
		EndDate:     end,
		Status:      StatusPending,
		ServiceName: strings.TrimSpace(in.ServiceName),
		Notes:       strings.TrimSpace(in.Notes),
		Subtotal:    q.Subtotal,
		ServiceFee:  q.ServiceFee,
		Price:       q.Total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateWithNoOverlap(ctx, b); err != nil {
		if errors.Is(err, ErrOverlap) {
			return Booking{}, apperr.State(msgSitterBusy)
		}
		return Booking{}, err
	}
	return b, nil
}

// checkAvailability rechaza si alguna noche de la estadía está bloqueada en el ledger.
// El solape con otras reservas lo resuelve el repo al insertar.
func (s *Service) checkAvailability(ctx context.Context, sitterID string, start, end time.Time) error {
	if s.availability == nil {
		return nil
	}
	lastNight := Checkout(start, end).AddDate(0, 0, -1)
	blocked, err := s.availability.BlockedDays(ctx, sitterID, start, lastNight)
	if err != nil {
		return err
	}
	if len(blocked) > 0 {
		return apperr.State(msgSitterUnavailable)
	}
	return nil
}

// Quote calcula el desglose sin crear la reserva.
func (s *Service) Quote(ctx context.Context, sitterID string, start, end time.Time) (Quote, error) {
	if strings.TrimSpace(sitterID) == "" || start.IsZero() || end.IsZero() {
		return Quote{}, apperr.Validation(msgMissingData)
	}
	start, end = dates.Day(start), dates.Day(end)
	if end.Before(start) {
		return Quote{}, apperr.Validation("La fecha de fin no puede ser anterior a la de inicio")
	}
	sitter, err := s.sitters.GetByID(ctx, sitterID)
	if err != nil {
		return Quote{}, err
	}
	return NewQuote(sitter.Price, start, end), nil
}

// Get devuelve la reserva si el caller es quien reservó o el cuidador.
func (s *Service) Get(ctx context.Context, callerID, id string) (Booking, error) {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if err := s.authorize(ctx, callerID, b); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// UpdateStatus aplica la transición si existe en la tabla. Mismo estado es no-op.
func (s *Service) UpdateStatus(ctx context.Context, callerID, id string, next Status) (Booking, error) {
	b, err := s.getByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if err := s.authorize(ctx, callerID, b); err != nil {
		return Booking{}, err
	}

	next = Status(strings.ToUpper(strings.TrimSpace(string(next))))
	if !next.Valid() {
		return Booking{}, apperr.Validation(msgInvalidStatus,
			apperr.FieldError{Field: "status", Message: "Valores permitidos: PENDING, CONFIRMED, COMPLETED, CANCELLED"})
	}
	if next == b.Status {
		return b, nil
	}
	if !CanTransition(b.Status, next) {
		return Booking{}, apperr.State(msgInvalidTransition)
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, b.ID, b.Status, next, now); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return Booking{}, apperr.NotFound(msgBookingNotFound)
		case errors.Is(err, ErrStale):
			return s.afterConcurrentChange(ctx, b.ID, next)
		}
		return Booking{}, err
	}
	b.Status = next
	b.UpdatedAt = now
	return b, nil
}

// afterConcurrentChange relee la reserva que otro request cambió entre la lectura y el update.
// Si ya quedó en next es un no-op; si no, la transición pedida ya no aplica.
func (s *Service) afterConcurrentChange(ctx context.Context, id string, next Status) (Booking, error) {
	cur, err := s.getByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if cur.Status == next {
		return cur, nil
	}
	return Booking{}, apperr.State(msgInvalidTransition)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SitterBooking es una reserva vista por el cuidador, con los datos del dueño.
type SitterBooking struct {
	Booking
	Requester     users.Contact
	RequesterPets []pets.Pet
}

func (s *Service) ListForSitter(ctx context.Context, userID string) ([]SitterBooking, error) {
	profile, err := s.sitters.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListBySitter(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	contacts := map[string]users.Contact{}
	petsByOwner := map[string][]pets.Pet{}
	out := make([]SitterBooking, 0, len(items))
	for _, b := range items {
		c, ok := contacts[b.UserID]
		if !ok {
			if c, err = s.contacts.Contact(ctx, b.UserID); err != nil {
				return nil, err
			}
			contacts[b.UserID] = c
			if petsByOwner[b.UserID], err = s.pets.ListByOwner(ctx, b.UserID); err != nil {
				return nil, err
			}
		}
		out = append(out, SitterBooking{Booking: b, Requester: c, RequesterPets: petsByOwner[b.UserID]})
	}
	return out, nil
}

// Client es un dueño distinto que reservó con el cuidador.
type Client struct {
	Contact      users.Contact
	Pets         []pets.Pet
	BookingCount int // reservas con este cuidador
}

func (s *Service) ListSitterClients(ctx context.Context, userID string) ([]Client, error) {
	profile, err := s.sitters.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListBySitter(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	ids, counts := distinctRequesters(items)
	out := make([]Client, 0, len(ids))
	for _, id := range ids {
		c, err := s.contacts.Contact(ctx, id)
		if err != nil {
			return nil, err
		}
		ps, err := s.pets.ListByOwner(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Client{Contact: c, Pets: ps, BookingCount: counts[id]})
	}
	return out, nil
}

// ClientPet es una mascota de un cliente con nombre y teléfono del dueño.
type ClientPet struct {
	Pet        pets.Pet
	OwnerName  string
	OwnerPhone string
}

func (s *Service) ListSitterPets(ctx context.Context, userID string) ([]ClientPet, error) {
	profile, err := s.sitters.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListBySitter(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	ids, _ := distinctRequesters(items)
	ps, err := s.pets.ListByOwners(ctx, ids)
	if err != nil {
		return nil, err
	}

	owners := map[string]users.Contact{}
	out := make([]ClientPet, 0, len(ps))
	for _, p := range ps {
		c, ok := owners[p.OwnerID]
		if !ok {
			if c, err = s.contacts.Contact(ctx, p.OwnerID); err != nil {
				return nil, err
			}
			owners[p.OwnerID] = c
		}
		out = append(out, ClientPet{Pet: p, OwnerName: c.Name, OwnerPhone: c.Phone})
	}
	return out, nil
}

// CountByUser alimenta el conteo del listado admin de usuarios.
func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

func (s *Service) getByID(ctx context.Context, id string) (Booking, error) {
	b, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Booking{}, apperr.NotFound(msgBookingNotFound)
		}
		return Booking{}, err
	}
	return b, nil
}

// authorize: solo quien reservó o el usuario dueño del perfil de cuidador.
func (s *Service) authorize(ctx context.Context, callerID string, b Booking) error {
	if b.UserID == callerID {
		return nil
	}
	profile, err := s.sitters.ProfileForUser(ctx, callerID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Forbidden(msgNotAuthorized)
		}
		return err
	}
	if profile.ID != b.SitterID {
		return apperr.Forbidden(msgNotAuthorized)
	}
	return nil
}

// distinctRequesters devuelve los userID en orden de primera aparición y cuántas reservas tiene cada uno.
func distinctRequesters(items []Booking) ([]string, map[string]int) {
	counts := map[string]int{}
	ids := make([]string, 0)
	for _, b := range items {
		if _, ok := counts[b.UserID]; !ok {
			ids = append(ids, b.UserID)
		}
		counts[b.UserID]++
	}
	return ids, counts
}
