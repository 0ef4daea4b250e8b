package pets

import "time"

// Pet es una mascota registrada por su dueño.
type Pet struct {
	ID      string
	OwnerID string

	Name   string
	Breed  string
	Age    int      // años
	Weight *float64 // kg, opcional

	SpecialNeeds string

	CreatedAt time.Time
	UpdatedAt time.Time
}
