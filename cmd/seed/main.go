// Command seed carga datos de demo a través de la API HTTP.
package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"rintintin/internal/apiclient"
	"rintintin/internal/platform/httpclient"
	"rintintin/internal/platform/logger"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL = "http://localhost:3000/api"
	demoPassword  = "demo1234"
)

type demoSitter struct {
	account apiclient.SignupRequest
	profile apiclient.ProfileRequest
}

var demoSitters = []demoSitter{
	{
		account: apiclient.SignupRequest{Email: "laura@rintintin.dev", FirstName: "Laura", LastName: "Gómez", City: "Buenos Aires", Phone: "+54 11 5555 0101", UserType: "sitter"},
		profile: apiclient.ProfileRequest{
			Bio: "Amo los perros grandes y los paseos largos.", Price: 350, Location: "Buenos Aires", Neighborhood: "Palermo",
			Experience: "5 años", Services: []string{"Paseos", "Hospedaje"}, PetTypes: []string{"Perros"},
			PropertyType: "Casa", HasOutdoorSpace: true, AllowsPets: true, MaxPets: 3,
		},
	},
	{
		account: apiclient.SignupRequest{Email: "martin@rintintin.dev", FirstName: "Martín", LastName: "Pérez", City: "Córdoba", Phone: "+54 351 555 0202", UserType: "sitter"},
		profile: apiclient.ProfileRequest{
			Bio: "Cuido gatos en mi departamento.", Price: 500, Location: "Córdoba", Neighborhood: "Nueva Córdoba",
			Experience: "2 años", Services: []string{"Guardería", "Visitas a domicilio"}, PetTypes: []string{"Gatos"},
			PropertyType: "Departamento", MaxPets: 2, Certifications: "Primeros auxilios veterinarios",
		},
	},
}

var demoOwner = apiclient.SignupRequest{
	Email: "owner@rintintin.dev", FirstName: "Sofía", LastName: "Ruiz", City: "Buenos Aires",
}

func main() {
	_ = godotenv.Load()
	log := logger.NewFromEnv()

	if err := run(context.Background(), apiURL(), log); err != nil {
		log.Error("seed failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	log.Info("seed done", nil)
}

// apiURL: API_URL, si no VITE_API_URL, si no localhost.
func apiURL() string {
	for _, k := range []string{"API_URL", "VITE_API_URL"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return defaultAPIURL
}

func run(ctx context.Context, baseURL string, log logger.Logger) error {
	var sitterIDs []string
	for _, s := range demoSitters {
		c, err := apiclient.New(baseURL, nil)
		if err != nil {
			return err
		}
		if err := signupOrLogin(ctx, c, s.account); err != nil {
			return err
		}
		profile, err := c.UpsertProfile(ctx, s.profile)
		if err != nil {
			return err
		}
		sitterIDs = append(sitterIDs, profile.ID)

		// La semana que viene disponible, salvo el domingo.
		day := time.Now().UTC().Truncate(24 * time.Hour)
		for i := 1; i <= 7; i++ {
			d := day.AddDate(0, 0, i)
			_, err := c.SetAvailability(ctx, apiclient.AvailabilityRequest{
				Date:        d.Format("2006-01-02"),
				IsAvailable: d.Weekday() != time.Sunday,
				Slots:       []string{"morning", "afternoon"},
			})
			if err != nil {
				return err
			}
		}
		log.Info("sitter seeded", map[string]any{"email": s.account.Email, "sitterId": profile.ID})
	}

	owner, err := apiclient.New(baseURL, nil)
	if err != nil {
		return err
	}
	if err := signupOrLogin(ctx, owner, demoOwner); err != nil {
		return err
	}

	pets, err := owner.ListPets(ctx)
	if err != nil {
		return err
	}
	if len(pets) == 0 {
		weight := 28.5
		if _, err := owner.CreatePet(ctx, apiclient.PetRequest{Name: "Rintintin", Breed: "Pastor alemán", Age: 4, Weight: &weight}); err != nil {
			return err
		}
	}

	for i, id := range sitterIDs {
		if _, err := owner.AddReview(ctx, id, 5-i, "Excelente cuidado"); err != nil {
			return err
		}
	}
	log.Info("owner seeded", map[string]any{"email": demoOwner.Email})
	return nil
}

// signupOrLogin permite correr el seed más de una vez.
func signupOrLogin(ctx context.Context, c *apiclient.Client, req apiclient.SignupRequest) error {
	req.Password = demoPassword
	_, err := c.Signup(ctx, req)
	if err == nil {
		return nil
	}
	if httpclient.StatusOf(err) != http.StatusBadRequest {
		return err
	}
	_, err = c.Login(ctx, req.Email, req.Password)
	return err
}
