package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"rintintin/internal/platform/apperr"
	"rintintin/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgBadCredentials = "Email o contraseña incorrectos"
	msgEmailTaken     = "El email ya está registrado"
	msgUserNotFound   = "Usuario no encontrado"
	msgAccessDenied   = "Acceso denegado"
)

const minPasswordLen = 6

type Service struct {
	repo       Repository
	tokens     auth.TokenIssuer
	bcryptCost int
	now        func() time.Time
}

// NewService crea el servicio de cuentas. bcryptCost <= 0 usa bcrypt.DefaultCost.
func NewService(repo Repository, tokens auth.TokenIssuer, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	City      string
	UserType  string // "sitter" => SITTER, cualquier otro => USER
}

// AuthResult es lo que devuelven signup/login: el usuario (sin hash) y su token.
type AuthResult struct {
	User  User
	Token string
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	if err := validateSignup(email, in); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, apperr.Conflict(msgEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return AuthResult{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		City:         strings.TrimSpace(in.City),
		Role:         RoleForUserType(in.UserType),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// carrera entre el GetByEmail y el insert
		if errors.Is(err, ErrEmailTaken) {
			return AuthResult{}, apperr.Conflict(msgEmailTaken)
		}
		return AuthResult{}, err
	}

	token, err := s.issue(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Token: token}, nil
}

// Login responde el mismo error si el email no existe o la contraseña no coincide.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, apperr.Auth(msgBadCredentials)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, apperr.Auth(msgBadCredentials)
		}
		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, apperr.Auth(msgBadCredentials)
	}

	token, err := s.issue(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Token: token}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound(msgUserNotFound)
		}
		return User{}, err
	}
	return u, nil
}

// GetFor devuelve el usuario id si el caller es el mismo usuario o ADMIN.
func (s *Service) GetFor(ctx context.Context, caller auth.Claims, id string) (User, error) {
	if caller.UserID != id && Role(caller.Role) != RoleAdmin {
		return User{}, apperr.Forbidden(msgAccessDenied)
	}
	return s.GetByID(ctx, id)
}

type UpdateInput struct {
	FirstName string
	LastName  string
	Phone     string
	City      string
}

// Update solo permite editar el propio perfil.
func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateInput) (User, error) {
	if callerID != id {
		return User{}, apperr.Forbidden(msgAccessDenied)
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	u.FirstName = strings.TrimSpace(in.FirstName)
	u.LastName = strings.TrimSpace(in.LastName)
	u.Phone = strings.TrimSpace(in.Phone)
	u.City = strings.TrimSpace(in.City)
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.NotFound(msgUserNotFound)
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return err
	}
	return nil
}

// PromoteToSitter sube el rol a SITTER al crear perfil de cuidador. ADMIN se mantiene.
func (s *Service) PromoteToSitter(ctx context.Context, userID string) error {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role == RoleSitter || u.Role == RoleAdmin {
		return nil
	}
	u.Role = RoleSitter
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// Contact implementa los lookups de contacto que usan sitters y bookings.
func (s *Service) Contact(ctx context.Context, userID string) (Contact, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return Contact{}, err
	}
	return u.Contact(), nil
}

func (s *Service) issue(ctx context.Context, u User) (string, error) {
	return s.tokens.Issue(ctx, auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(email string, in SignupInput) error {
	var fields []apperr.FieldError

	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Email inválido"})
	}
	if len(in.Password) < minPasswordLen {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "La contraseña debe tener al menos 6 caracteres"})
	}
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, apperr.FieldError{Field: "firstName", Message: "El nombre es requerido"})
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields = append(fields, apperr.FieldError{Field: "lastName", Message: "El apellido es requerido"})
	}

	if len(fields) > 0 {
		return apperr.Validation(fields[0].Message, fields...)
	}
	return nil
}
