// Package config carga la configuración del proceso desde el entorno (.env opcional).
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DevJWTSecret es el secreto por defecto. Sirve solo en desarrollo.
const DevJWTSecret = "rintintin-dev-secret-change-me"

type App struct {
	// HTTP
	Port    string `envconfig:"PORT" default:"3000"`
	AppName string `envconfig:"APP_NAME" default:"rintintin-api"`

	// Proxy: true => la IP del cliente sale de X-Forwarded-For/X-Real-IP.
	// Solo activar detrás de un proxy propio que pise esos headers.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`

	// JWT
	JWTSecret string        `envconfig:"JWT_SECRET" default:"rintintin-dev-secret-change-me"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"168h"`

	// DB: vacío => repos en memoria
	DBDSN         string `envconfig:"DB_DSN"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	// CORS
	ClientURLs     []string `envconfig:"CLIENT_URL"`
	ViteClientURLs []string `envconfig:"VITE_CLIENT_URL"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Auth
	AuthRatePerMin int `envconfig:"AUTH_RATE_PER_MIN" default:"20"`
	BcryptCost     int `envconfig:"BCRYPT_COST" default:"10"`
}

// Load lee .env si existe y luego el entorno.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return App{}, err
	}
	return FromEnv()
}

// FromEnv procesa solo variables de entorno, sin .env.
func FromEnv() (App, error) {
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, err
	}
	if c.JWTTTL <= 0 {
		return App{}, errors.New("config: JWT_TTL must be positive")
	}
	return c, nil
}

// Addr es la dirección de escucha (":3000").
func (c App) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// AllowedOrigins une CLIENT_URL y VITE_CLIENT_URL, sin vacíos ni repetidos.
// Sin ninguno configurado se permite el dev server de Vite.
func (c App) AllowedOrigins() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, list := range [][]string{c.ClientURLs, c.ViteClientURLs} {
		for _, o := range list {
			o = strings.TrimRight(strings.TrimSpace(o), "/")
			if o == "" {
				continue
			}
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = append(out, "http://localhost:5173")
	}
	return out
}

func (c App) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}
