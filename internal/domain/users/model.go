package users

import (
	"strings"
	"time"
)

// Role define los roles de la plataforma.
// @Enum USER, SITTER, ADMIN
type Role string

const (
	RoleUser   Role = "USER"
	RoleSitter Role = "SITTER"
	RoleAdmin  Role = "ADMIN"
)

// User es el registro de credenciales + datos de contacto.
type User struct {
	ID    string
	Email string // único, guardado en minúsculas

	PasswordHash string

	FirstName string
	LastName  string
	Phone     string
	City      string

	Role Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Name es el nombre visible ("Nombre Apellido").
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Contact es el subconjunto de datos que ve la contraparte de una reserva.
type Contact struct {
	ID    string
	Name  string
	Email string
	Phone string
	City  string
}

func (u User) Contact() Contact {
	return Contact{
		ID:    u.ID,
		Name:  u.Name(),
		Email: u.Email,
		Phone: u.Phone,
		City:  u.City,
	}
}

func RoleForUserType(userType string) Role {
	if strings.EqualFold(strings.TrimSpace(userType), "sitter") {
		return RoleSitter
	}
	return RoleUser
}
