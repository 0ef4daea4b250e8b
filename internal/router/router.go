package router

import (
	"database/sql"
	"net/http"

	"rintintin/internal/adapters/auth/jwt"
	mem "rintintin/internal/adapters/storage/memory"
	pg "rintintin/internal/adapters/storage/postgres"
	"rintintin/internal/config"
	"rintintin/internal/domain/availability"
	"rintintin/internal/domain/bookings"
	"rintintin/internal/domain/pets"
	"rintintin/internal/domain/sitters"
	"rintintin/internal/domain/users"
	"rintintin/internal/middleware"
	"rintintin/internal/platform/httpx"
	"rintintin/internal/platform/logger"
	"rintintin/internal/ports/auth"

	_ "rintintin/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Tokens firma y verifica; jwt.Signer cumple ambos.
type Tokens interface {
	auth.TokenIssuer
	auth.AuthVerifier
}

type Options struct {
	Config config.App
	Logger logger.Logger // nil => sin logs

	// Opcional: si es nil se crea un jwt.Signer con Config.JWTSecret.
	Tokens Tokens

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

type repos struct {
	users        users.Repository
	pets         pets.Repository
	sitters      sitters.Repository
	availability availability.Repository
	bookings     bookings.Repository
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			users:        pg.NewUsersRepo(db),
			pets:         pg.NewPetsRepo(db),
			sitters:      pg.NewSittersRepo(db),
			availability: pg.NewAvailabilityRepo(db),
			bookings:     pg.NewBookingsRepo(db),
		}
	}
	return repos{
		users:        mem.NewUserRepo(),
		pets:         mem.NewPetRepo(),
		sitters:      mem.NewSitterRepo(),
		availability: mem.NewAvailabilityRepo(),
		bookings:     mem.NewBookingRepo(),
	}
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	tokens := opts.Tokens
	if tokens == nil {
		signer, err := jwt.NewSigner(jwt.Config{
			Secret: opts.Config.JWTSecret,
			TTL:    opts.Config.JWTTTL,
			Issuer: opts.Config.AppName,
		})
		if err != nil {
			return nil, err
		}
		tokens = signer
	}

	metrics := middleware.NewMetrics()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if opts.Config.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.Config.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.AuthContext(tokens))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "Ruta no encontrada")
	})

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	rp := newRepos(opts.DB)

	// Services por módulo. sitters y availability se conocen mutuamente:
	// la disponibilidad se inyecta después de crear ambos.
	usersSvc := users.NewService(rp.users, tokens, opts.Config.BcryptCost)
	petsSvc := pets.NewService(rp.pets)
	sittersSvc := sitters.NewService(rp.sitters, usersSvc)
	availSvc := availability.NewService(rp.availability, sittersSvc)
	sittersSvc.SetAvailability(availSvc)
	bookingsSvc := bookings.NewService(rp.bookings, bookings.Deps{
		Sitters:      sittersSvc,
		Pets:         petsSvc,
		Contacts:     usersSvc,
		Availability: availSvc,
	})

	limiter := middleware.NewRateLimiter(opts.Config.AuthRatePerMin, opts.Config.AuthRatePerMin, log)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", healthHandler)

		users.RegisterAuthRoutes(api, usersSvc, limiter.Handler, log)
		users.RegisterUserRoutes(api, usersSvc, petsSvc, bookingsSvc, log)
		pets.RegisterRoutes(api, petsSvc, log)
		sitters.RegisterRoutes(api, sittersSvc, log)
		availability.RegisterRoutes(api, availSvc, log)
		bookings.RegisterRoutes(api, bookingsSvc, log)
	})

	return r, nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// healthHandler godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "Server is running"})
}
