package users

import (
	"context"
	"net/http"
	"time"

	"rintintin/internal/domain/pets"
	"rintintin/internal/middleware"
	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// PetLister evita que users dependa del servicio concreto de pets.
type PetLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
}

// BookingCounter cuenta reservas hechas por un usuario (para el listado admin).
type BookingCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// RegisterAuthRoutes monta /auth. limiter se aplica a signup/login.
func RegisterAuthRoutes(r chi.Router, svc *Service, limiter func(http.Handler) http.Handler, log logger.Logger) {
	r.Route("/auth", func(ar chi.Router) {
		ar.With(limiter).Post("/signup", signupHandler(svc, log))
		ar.With(limiter).Post("/login", loginHandler(svc, log))
		ar.With(middleware.RequireAuth).Get("/me", meHandler(svc, log))
	})
}

func RegisterUserRoutes(r chi.Router, svc *Service, petLister PetLister, bookings BookingCounter, log logger.Logger) {
	admin := middleware.RequireRole(string(RoleAdmin))

	r.Route("/users", func(ur chi.Router) {
		ur.Use(middleware.RequireAuth)

		ur.Get("/me", meWithPetsHandler(svc, petLister, log))
		ur.With(admin).Get("/", listUsersHandler(svc, petLister, bookings, log))
		ur.Get("/{userID}", getUserHandler(svc, petLister, log))
		ur.Put("/{userID}", updateUserHandler(svc, log))
		ur.With(admin).Delete("/{userID}", deleteUserHandler(svc, log))
	})
}

type signupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	UserType  string `json:"userType"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
}

// UserResponse es la vista pública del usuario (nunca incluye el hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	City      *string   `json:"city"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type authResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type userWithPetsResponse struct {
	UserResponse
	Pets []pets.Response `json:"pets"`
}

type userCountsResponse struct {
	Pets     int `json:"pets"`
	Bookings int `json:"bookings"`
}

type adminUserResponse struct {
	UserResponse
	Count userCountsResponse `json:"_count"`
}

// signupHandler godoc
// @Summary Registrar usuario
// @Description Crea la cuenta y devuelve el usuario con un token de 7 días. userType "sitter" crea un cuidador.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signupRequest true "Datos de registro"
// @Success 201 {object} authResponse
// @Failure 400 {object} httpx.MessageResponse "validación / email ya registrado"
// @Router /auth/signup [post]
func signupHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		res, err := svc.Signup(r.Context(), SignupInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			City:      req.City,
			UserType:  req.UserType,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, authResponse{User: ToResponse(res.User), Token: res.Token})
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} authResponse
// @Failure 401 {object} httpx.MessageResponse "Email o contraseña incorrectos"
// @Router /auth/login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authResponse{User: ToResponse(res.User), Token: res.Token})
	}
}

// meHandler godoc
// @Summary Usuario actual
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} httpx.MessageResponse
// @Router /auth/me [get]
func meHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(u))
	}
}

func meWithPetsHandler(svc *Service, petLister PetLister, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		out, err := withPets(r.Context(), u, petLister)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func listUsersHandler(svc *Service, petLister PetLister, bookings BookingCounter, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]adminUserResponse, 0, len(items))
		for _, u := range items {
			ps, err := petLister.ListByOwner(r.Context(), u.ID)
			if err != nil {
				httpx.WriteError(w, log, err)
				return
			}
			n, err := bookings.CountByUser(r.Context(), u.ID)
			if err != nil {
				httpx.WriteError(w, log, err)
				return
			}
			out = append(out, adminUserResponse{
				UserResponse: ToResponse(u),
				Count:        userCountsResponse{Pets: len(ps), Bookings: n},
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getUserHandler(svc *Service, petLister PetLister, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.GetFor(r.Context(), claims, chi.URLParam(r, "userID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		out, err := withPets(r.Context(), u, petLister)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func updateUserHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req updateUserRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		u, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "userID"), UpdateInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			City:      req.City,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(u))
	}
}

func deleteUserHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Usuario eliminado")
	}
}

func withPets(ctx context.Context, u User, petLister PetLister) (userWithPetsResponse, error) {
	ps, err := petLister.ListByOwner(ctx, u.ID)
	if err != nil {
		return userWithPetsResponse{}, err
	}
	out := userWithPetsResponse{UserResponse: ToResponse(u), Pets: make([]pets.Response, 0, len(ps))}
	for _, p := range ps {
		out.Pets = append(out.Pets, pets.ToResponse(p))
	}
	return out, nil
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      u.Name(),
		Phone:     nullable(u.Phone),
		City:      nullable(u.City),
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
