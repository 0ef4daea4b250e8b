package availability

import (
	"net/http"
	"strings"
	"time"

	"rintintin/internal/middleware"
	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/dates"
	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas del ledger bajo /sitters. Se registran planas
// porque comparten prefijo con las rutas del directorio.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/sitters/{sitterID}/availability", getAvailabilityHandler(svc, log))
	r.With(middleware.RequireAuth).Post("/sitters/availability", setAvailabilityHandler(svc, log))
}

type setAvailabilityRequest struct {
	Date        string   `json:"date" validate:"required"` // YYYY-MM-DD
	IsAvailable *bool    `json:"isAvailable" validate:"required"`
	Slots       []string `json:"slots"`
}

// EntryResponse es una fila del ledger en JSON; sitters la reutiliza en el detalle.
type EntryResponse struct {
	ID          string    `json:"id"`
	SitterID    string    `json:"sitterId"`
	Date        string    `json:"date"`
	IsAvailable bool      `json:"isAvailable"`
	Slots       []DayPart `json:"slots"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// getAvailabilityHandler godoc
// @Summary Disponibilidad de un cuidador
// @Description Sin startDate y endDate devuelve desde hoy en adelante.
// @Tags availability
// @Produce json
// @Param sitterID path string true "ID del perfil de cuidador"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {array} EntryResponse
// @Failure 400 {object} httpx.MessageResponse
// @Router /sitters/{sitterID}/availability [get]
func getAvailabilityHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sitterID := chi.URLParam(r, "sitterID")

		var rng *Range
		q := r.URL.Query()
		startRaw, endRaw := strings.TrimSpace(q.Get("startDate")), strings.TrimSpace(q.Get("endDate"))
		if startRaw != "" && endRaw != "" {
			from, err1 := dates.ParseDay(startRaw)
			to, err2 := dates.ParseDay(endRaw)
			if err1 != nil || err2 != nil {
				httpx.WriteError(w, log, apperr.Validation("Las fechas deben tener formato YYYY-MM-DD"))
				return
			}
			rng = &Range{From: from, To: to}
		}

		items, err := svc.Get(r.Context(), sitterID, rng)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponses(items))
	}
}

// setAvailabilityHandler godoc
// @Summary Marcar disponibilidad de un día
// @Description Upsert por (cuidador, fecha) para el perfil del usuario autenticado.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body setAvailabilityRequest true "Día y franjas"
// @Success 200 {object} EntryResponse
// @Failure 404 {object} httpx.MessageResponse "Perfil de cuidador no encontrado"
// @Router /sitters/availability [post]
func setAvailabilityHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req setAvailabilityRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		day, err := dates.ParseDay(req.Date)
		if err != nil {
			httpx.WriteError(w, log, apperr.Validation("La fecha debe tener formato YYYY-MM-DD"))
			return
		}

		e, err := svc.Set(r.Context(), claims.UserID, SetInput{
			Date:        day,
			IsAvailable: *req.IsAvailable,
			Slots:       req.Slots,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(e))
	}
}

func ToResponse(e Entry) EntryResponse {
	slots := e.Slots
	if slots == nil {
		slots = []DayPart{}
	}
	return EntryResponse{
		ID:          e.ID,
		SitterID:    e.SitterID,
		Date:        dates.Format(e.Date),
		IsAvailable: e.IsAvailable,
		Slots:       slots,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToResponses(items []Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, ToResponse(e))
	}
	return out
}
