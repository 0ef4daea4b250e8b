package sitters

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rintintin/internal/domain/availability"
	"rintintin/internal/middleware"
	"rintintin/internal/platform/apperr"
	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el directorio de cuidadores. Las rutas van planas sobre /api
// para convivir con las de availability bajo el mismo prefijo.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/sitters", listSittersHandler(svc, log))
	r.With(middleware.RequireAuth).Post("/sitters/profile", upsertProfileHandler(svc, log))
	r.Get("/sitters/{sitterID}", getSitterHandler(svc, log))
	r.With(middleware.RequireAuth).Post("/sitters/{sitterID}/reviews", addReviewHandler(svc, log))
}

type profileRequest struct {
	Bio          string   `json:"bio"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Location     string   `json:"location"`
	Neighborhood string   `json:"neighborhood"`
	Experience   string   `json:"experience"`

	Services []string `json:"services"`
	PetTypes []string `json:"petTypes"`

	PropertyType    string `json:"propertyType"`
	HasOutdoorSpace bool   `json:"hasOutdoorSpace"`
	AllowsPets      bool   `json:"allowsPets"`
	MaxPets         int    `json:"maxPets" validate:"gte=0"`

	Skills         string `json:"skills"`
	Certifications string `json:"certifications"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ProfileResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId"`
	Bio          string  `json:"bio"`
	Price        float64 `json:"price"`
	Location     string  `json:"location"`
	Neighborhood *string `json:"neighborhood"`
	Experience   string  `json:"experience"`

	Services []string `json:"services"`
	PetTypes []string `json:"petTypes"`

	PropertyType    string `json:"propertyType"`
	HasOutdoorSpace bool   `json:"hasOutdoorSpace"`
	AllowsPets      bool   `json:"allowsPets"`
	MaxPets         int    `json:"maxPets"`

	Skills         *string `json:"skills"`
	Certifications *string `json:"certifications"`

	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type userSummaryResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	City  *string `json:"city"`
	Phone *string `json:"phone,omitempty"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	SitterID  string    `json:"sitterId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type listingResponse struct {
	ProfileResponse
	User    userSummaryResponse `json:"user"`
	Reviews []ReviewResponse    `json:"reviews"`
}

type detailResponse struct {
	listingResponse
	Availability []availability.EntryResponse `json:"availability"`
}

// listSittersHandler godoc
// @Summary Listar cuidadores
// @Description Filtros combinables; city/service/petType son substrings sin distinguir mayúsculas.
// @Tags sitters
// @Produce json
// @Param city query string false "Ciudad del usuario"
// @Param service query string false "Servicio ofrecido"
// @Param petType query string false "Tipo de mascota"
// @Param minPrice query number false "Tarifa mínima"
// @Param maxPrice query number false "Tarifa máxima"
// @Success 200 {array} listingResponse
// @Failure 400 {object} httpx.MessageResponse
// @Router /sitters [get]
func listSittersHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilters(r)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]listingResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toListingResponse(it, false))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getSitterHandler godoc
// @Summary Detalle de cuidador
// @Tags sitters
// @Produce json
// @Param sitterID path string true "ID del perfil"
// @Success 200 {object} detailResponse
// @Failure 404 {object} httpx.MessageResponse "Cuidador no encontrado"
// @Router /sitters/{sitterID} [get]
func getSitterHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Get(r.Context(), chi.URLParam(r, "sitterID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, detailResponse{
			listingResponse: toListingResponse(d.Listing, true),
			Availability:    availability.ToResponses(d.Availability),
		})
	}
}

// upsertProfileHandler godoc
// @Summary Crear o actualizar perfil de cuidador
// @Description Crea el perfil del usuario o lo actualiza; el rol pasa a SITTER.
// @Tags sitters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body profileRequest true "Perfil"
// @Success 201 {object} ProfileResponse
// @Failure 400 {object} httpx.MessageResponse
// @Router /sitters/profile [post]
func upsertProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req profileRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		p, err := svc.UpsertProfile(r.Context(), claims.UserID, ProfileInput{
			Bio:             req.Bio,
			Price:           *req.Price,
			Location:        req.Location,
			Neighborhood:    req.Neighborhood,
			Experience:      req.Experience,
			Services:        req.Services,
			PetTypes:        req.PetTypes,
			PropertyType:    req.PropertyType,
			HasOutdoorSpace: req.HasOutdoorSpace,
			AllowsPets:      req.AllowsPets,
			MaxPets:         req.MaxPets,
			Skills:          req.Skills,
			Certifications:  req.Certifications,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, ToResponse(p))
	}
}

// addReviewHandler godoc
// @Summary Dejar reseña
// @Tags sitters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sitterID path string true "ID del perfil"
// @Param payload body reviewRequest true "Calificación 1-5 y comentario"
// @Success 201 {object} ReviewResponse
// @Failure 400 {object} httpx.MessageResponse
// @Failure 404 {object} httpx.MessageResponse
// @Router /sitters/{sitterID}/reviews [post]
func addReviewHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req reviewRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		rv, err := svc.AddReview(r.Context(), chi.URLParam(r, "sitterID"), claims.UserID, req.Rating, req.Comment)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toReviewResponse(rv))
	}
}

func parseFilters(r *http.Request) (Filters, error) {
	q := r.URL.Query()
	f := Filters{
		City:    strings.TrimSpace(q.Get("city")),
		Service: strings.TrimSpace(q.Get("service")),
		PetType: strings.TrimSpace(q.Get("petType")),
	}

	var err error
	if f.MinPrice, err = parsePrice(q.Get("minPrice"), "minPrice"); err != nil {
		return Filters{}, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice"), "maxPrice"); err != nil {
		return Filters{}, err
	}
	return f, nil
}

func parsePrice(raw, field string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		msg := field + " debe ser un número"
		return nil, apperr.Validation(msg, apperr.FieldError{Field: field, Message: msg})
	}
	return &v, nil
}

func ToResponse(p Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		Bio:             p.Bio,
		Price:           p.Price,
		Location:        p.Location,
		Neighborhood:    nullable(p.Neighborhood),
		Experience:      p.Experience,
		Services:        nonNil(p.Services),
		PetTypes:        nonNil(p.PetTypes),
		PropertyType:    p.PropertyType,
		HasOutdoorSpace: p.HasOutdoorSpace,
		AllowsPets:      p.AllowsPets,
		MaxPets:         p.MaxPets,
		Skills:          nullable(p.Skills),
		Certifications:  nullable(p.Certifications),
		Rating:          p.Rating,
		ReviewCount:     p.ReviewCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toListingResponse(l Listing, withPhone bool) listingResponse {
	u := userSummaryResponse{
		ID:    l.User.ID,
		Name:  l.User.Name,
		Email: l.User.Email,
		City:  nullable(l.User.City),
	}
	if withPhone {
		u.Phone = nullable(l.User.Phone)
	}

	reviews := make([]ReviewResponse, 0, len(l.Reviews))
	for _, rv := range l.Reviews {
		reviews = append(reviews, toReviewResponse(rv))
	}
	return listingResponse{ProfileResponse: ToResponse(l.Profile), User: u, Reviews: reviews}
}

func toReviewResponse(r Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		SitterID:  r.SitterID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
