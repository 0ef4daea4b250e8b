package bookings

import (
	"net/http"
	"strings"
	"time"

	"rintintin/internal/domain/pets"
	"rintintin/internal/domain/users"
	"rintintin/internal/middleware"
	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/dates"
	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/bookings", func(br chi.Router) {
		br.Get("/quote", quoteHandler(svc, log))

		br.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAuth)

			ar.Get("/", listMyBookingsHandler(svc, log))
			ar.Post("/", createBookingHandler(svc, log))
			ar.Get("/sitter", listSitterBookingsHandler(svc, log))
			ar.Get("/clients", listSitterClientsHandler(svc, log))
			ar.Get("/pets", listSitterPetsHandler(svc, log))
			ar.Get("/{bookingID}", getBookingHandler(svc, log))
			ar.Patch("/{bookingID}/status", updateStatusHandler(svc, log))
		})
	})
}

type createBookingRequest struct {
	SitterID    string   `json:"sitterId"`
	PetID       string   `json:"petId"`
	StartDate   string   `json:"startDate"` // YYYY-MM-DD o RFC3339
	EndDate     string   `json:"endDate"`
	ServiceName string   `json:"serviceName"`
	Price       *float64 `json:"price"` // se ignora: el servidor recalcula
	Notes       string   `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type BookingResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	SitterID    string    `json:"sitterId"`
	PetID       *string   `json:"petId"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Status      Status    `json:"status"`
	ServiceName *string   `json:"serviceName"`
	Notes       *string   `json:"notes"`
	Subtotal    float64   `json:"subtotal"`
	ServiceFee  float64   `json:"serviceFee"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type requesterResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Phone *string         `json:"phone"`
	City  *string         `json:"city"`
	Pets  []pets.Response `json:"pets"`
}

type sitterBookingResponse struct {
	BookingResponse
	User requesterResponse `json:"user"`
}

type clientCountResponse struct {
	Bookings int `json:"bookings"`
}

type clientResponse struct {
	requesterResponse
	Count clientCountResponse `json:"_count"`
}

type petOwnerResponse struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}

type clientPetResponse struct {
	pets.Response
	Owner petOwnerResponse `json:"owner"`
}

type QuoteResponse struct {
	Days       int     `json:"days"`
	DailyRate  float64 `json:"dailyRate"`
	Subtotal   float64 `json:"subtotal"`
	ServiceFee float64 `json:"serviceFee"`
	Total      float64 `json:"total"`
}

// createBookingHandler godoc
// @Summary Crear reserva
// @Description Queda en PENDING. El precio se calcula con la tarifa del cuidador (15% de comisión).
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createBookingRequest true "Reserva"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} httpx.MessageResponse "Faltan datos requeridos"
// @Failure 404 {object} httpx.MessageResponse
// @Failure 409 {object} httpx.MessageResponse "fechas ocupadas o bloqueadas"
// @Router /bookings [post]
func createBookingHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createBookingRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		start, end, err := parseRange(req.StartDate, req.EndDate)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		b, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			SitterID:    req.SitterID,
			PetID:       req.PetID,
			StartDate:   start,
			EndDate:     end,
			ServiceName: req.ServiceName,
			Notes:       req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(b))
	}
}

// listMyBookingsHandler godoc
// @Summary Mis reservas
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BookingResponse
// @Router /bookings [get]
func listMyBookingsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListForUser(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		out := make([]BookingResponse, 0, len(items))
		for _, b := range items {
			out = append(out, ToResponse(b))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// quoteHandler godoc
// @Summary Cotizar reserva
// @Tags bookings
// @Produce json
// @Param sitterId query string true "ID del perfil"
// @Param startDate query string true "YYYY-MM-DD"
// @Param endDate query string true "YYYY-MM-DD"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} httpx.MessageResponse
// @Router /bookings/quote [get]
func quoteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, end, err := parseRange(q.Get("startDate"), q.Get("endDate"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		quote, err := svc.Quote(r.Context(), q.Get("sitterId"), start, end)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, QuoteResponse{
			Days:       quote.Days,
			DailyRate:  quote.DailyRate,
			Subtotal:   quote.Subtotal,
			ServiceFee: quote.ServiceFee,
			Total:      quote.Total,
		})
	}
}

// listSitterBookingsHandler godoc
// @Summary Reservas recibidas por el cuidador
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} sitterBookingResponse
// @Failure 404 {object} httpx.MessageResponse "Perfil de cuidador no encontrado"
// @Router /bookings/sitter [get]
func listSitterBookingsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListForSitter(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		out := make([]sitterBookingResponse, 0, len(items))
		for _, it := range items {
			out = append(out, sitterBookingResponse{
				BookingResponse: ToResponse(it.Booking),
				User:            toRequesterResponse(it.Requester, it.RequesterPets),
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// listSitterClientsHandler godoc
// @Summary Clientes del cuidador
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} clientResponse
// @Router /bookings/clients [get]
func listSitterClientsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListSitterClients(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		out := make([]clientResponse, 0, len(items))
		for _, c := range items {
			out = append(out, clientResponse{
				requesterResponse: toRequesterResponse(c.Contact, c.Pets),
				Count:             clientCountResponse{Bookings: c.BookingCount},
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// listSitterPetsHandler godoc
// @Summary Mascotas de los clientes del cuidador
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} clientPetResponse
// @Router /bookings/pets [get]
func listSitterPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListSitterPets(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		out := make([]clientPetResponse, 0, len(items))
		for _, it := range items {
			out = append(out, clientPetResponse{
				Response: pets.ToResponse(it.Pet),
				Owner:    petOwnerResponse{Name: it.OwnerName, Phone: nullable(it.OwnerPhone)},
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getBookingHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		b, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "bookingID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(b))
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado de reserva
// @Description PENDING -> CONFIRMED|CANCELLED; CONFIRMED -> COMPLETED|CANCELLED.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "ID de la reserva"
// @Param payload body updateStatusRequest true "Nuevo estado"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} httpx.MessageResponse "No autorizado"
// @Failure 404 {object} httpx.MessageResponse "Reserva no encontrada"
// @Failure 409 {object} httpx.MessageResponse "Transición de estado inválida"
// @Router /bookings/{bookingID}/status [patch]
func updateStatusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updateStatusRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		b, err := svc.UpdateStatus(r.Context(), claims.UserID, chi.URLParam(r, "bookingID"), Status(req.Status))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(b))
	}
}

// parseRange deja fechas vacías como cero para que el service reporte "Faltan datos requeridos".
func parseRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if s := strings.TrimSpace(startRaw); s != "" {
		if start, err = dates.ParseDay(s); err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("startDate debe tener formato YYYY-MM-DD")
		}
	}
	if s := strings.TrimSpace(endRaw); s != "" {
		if end, err = dates.ParseDay(s); err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("endDate debe tener formato YYYY-MM-DD")
		}
	}
	return start, end, nil
}

func ToResponse(b Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		SitterID:    b.SitterID,
		PetID:       nullable(b.PetID),
		StartDate:   dates.Format(b.StartDate),
		EndDate:     dates.Format(b.EndDate),
		Status:      b.Status,
		ServiceName: nullable(b.ServiceName),
		Notes:       nullable(b.Notes),
		Subtotal:    b.Subtotal,
		ServiceFee:  b.ServiceFee,
		Price:       b.Price,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toRequesterResponse(c users.Contact, ps []pets.Pet) requesterResponse {
	out := requesterResponse{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: nullable(c.Phone),
		City:  nullable(c.City),
		Pets:  make([]pets.Response, 0, len(ps)),
	}
	for _, p := range ps {
		out.Pets = append(out.Pets, pets.ToResponse(p))
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
