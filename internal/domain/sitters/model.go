package sitters

import "time"

// Profile es el perfil de cuidador. Hay a lo sumo uno por usuario.
type Profile struct {
	ID     string
	UserID string

	Bio          string
	Price        float64 // tarifa diaria
	Location     string
	Neighborhood string
	Experience   string // banda, p.ej. "1-3 años"

	Services []string
	PetTypes []string

	PropertyType    string
	HasOutdoorSpace bool
	AllowsPets      bool
	MaxPets         int

	Skills         string
	Certifications string

	// Derivados de las reseñas.
	Rating      float64
	ReviewCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Review struct {
	ID       string
	SitterID string
	UserID   string

	Rating  int
	Comment string

	CreatedAt time.Time
}

// Filters son predicados independientes; el valor cero no filtra.
type Filters struct {
	City     string
	Service  string
	PetType  string
	MinPrice *float64
	MaxPrice *float64
}

const (
	minRating = 1
	maxRating = 5
)

// MeanRating es el promedio de las reseñas, 0 si no hay.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
