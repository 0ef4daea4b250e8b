package pets

import (
	"net/http"
	"time"

	"rintintin/internal/middleware"
	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	// Pets (owner-scoped)
	r.Route("/pets", func(pr chi.Router) {
		pr.Use(middleware.RequireAuth)

		pr.Get("/", listPetsHandler(svc, log))
		pr.Post("/", createPetHandler(svc, log))
		pr.Put("/{petID}", updatePetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))
	})
}

type petRequest struct {
	Name         string   `json:"name" validate:"required"`
	Breed        string   `json:"breed"`
	Age          int      `json:"age" validate:"gte=0"`
	Weight       *float64 `json:"weight"`
	SpecialNeeds string   `json:"specialNeeds"`
}

func (req petRequest) input() Input {
	return Input{
		Name:         req.Name,
		Breed:        req.Breed,
		Age:          req.Age,
		Weight:       req.Weight,
		SpecialNeeds: req.SpecialNeeds,
	}
}

// Response es la vista JSON de una mascota; la reutilizan users y bookings.
type Response struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	Breed        string    `json:"breed"`
	Age          int       `json:"age"`
	Weight       *float64  `json:"weight"`
	SpecialNeeds *string   `json:"specialNeeds"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// listPetsHandler godoc
// @Summary Mascotas del usuario
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Response
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]Response, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body petRequest true "Datos de la mascota"
// @Success 201 {object} Response
// @Failure 400 {object} httpx.MessageResponse
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req petRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, req.input())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(p))
	}
}

func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req petRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		p, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "petID"), req.input())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(p))
	}
}

func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "petID")); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Mascota eliminada")
	}
}

func ToResponse(p Pet) Response {
	var special *string
	if p.SpecialNeeds != "" {
		s := p.SpecialNeeds
		special = &s
	}
	return Response{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Name:         p.Name,
		Breed:        p.Breed,
		Age:          p.Age,
		Weight:       p.Weight,
		SpecialNeeds: special,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
