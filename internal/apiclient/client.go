// Package apiclient es el cliente tipado de la API de Rintintin.
package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"rintintin/internal/domain/availability"
	"rintintin/internal/domain/bookings"
	"rintintin/internal/domain/pets"
	"rintintin/internal/domain/sitters"
	"rintintin/internal/domain/users"
	"rintintin/internal/platform/httpclient"
)

type Client struct {
	http    *httpclient.Client
	session *Session
}

// New crea un cliente contra baseURL (p.ej. "http://localhost:3000/api").
// session nil crea una sesión nueva.
func New(baseURL string, session *Session) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, 10*time.Second)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = NewSession()
	}
	return &Client{http: hc, session: session}, nil
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.http.DoJSON(ctx, method, path, httpclient.Bearer(c.session.Token()), in, out)
}

// ---- auth ----

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
	UserType  string `json:"userType,omitempty"`
}

type AuthResponse struct {
	User  users.UserResponse `json:"user"`
	Token string             `json:"token"`
}

// Signup registra y deja la sesión autenticada.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return AuthResponse{}, err
	}
	c.session.Set(out.Token, out.User)
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return AuthResponse{}, err
	}
	c.session.Set(out.Token, out.User)
	return out, nil
}

func (c *Client) Logout() { c.session.Clear() }

func (c *Client) Me(ctx context.Context) (users.UserResponse, error) {
	var out users.UserResponse
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

// ---- pets ----

type PetRequest struct {
	Name         string   `json:"name"`
	Breed        string   `json:"breed,omitempty"`
	Age          int      `json:"age"`
	Weight       *float64 `json:"weight,omitempty"`
	SpecialNeeds string   `json:"specialNeeds,omitempty"`
}

func (c *Client) CreatePet(ctx context.Context, req PetRequest) (pets.Response, error) {
	var out pets.Response
	err := c.do(ctx, http.MethodPost, "/pets", req, &out)
	return out, err
}

func (c *Client) ListPets(ctx context.Context) ([]pets.Response, error) {
	var out []pets.Response
	err := c.do(ctx, http.MethodGet, "/pets", nil, &out)
	return out, err
}

// ---- sitters ----

type ProfileRequest struct {
	Bio             string   `json:"bio"`
	Price           float64  `json:"price"`
	Location        string   `json:"location"`
	Neighborhood    string   `json:"neighborhood,omitempty"`
	Experience      string   `json:"experience"`
	Services        []string `json:"services"`
	PetTypes        []string `json:"petTypes"`
	PropertyType    string   `json:"propertyType"`
	HasOutdoorSpace bool     `json:"hasOutdoorSpace"`
	AllowsPets      bool     `json:"allowsPets"`
	MaxPets         int      `json:"maxPets"`
	Skills          string   `json:"skills,omitempty"`
	Certifications  string   `json:"certifications,omitempty"`
}

type SitterUser struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	City  *string `json:"city"`
	Phone *string `json:"phone"`
}

// Sitter es un elemento del listado o el detalle (con Availability).
type Sitter struct {
	sitters.ProfileResponse
	User         SitterUser                   `json:"user"`
	Reviews      []sitters.ReviewResponse     `json:"reviews"`
	Availability []availability.EntryResponse `json:"availability,omitempty"`
}

// SitterFilters se traduce a query params; los vacíos se omiten.
type SitterFilters struct {
	City     string
	Service  string
	PetType  string
	MinPrice string
	MaxPrice string
}

func (f SitterFilters) query() string {
	q := url.Values{}
	for k, v := range map[string]string{
		"city": f.City, "service": f.Service, "petType": f.PetType,
		"minPrice": f.MinPrice, "maxPrice": f.MaxPrice,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) ListSitters(ctx context.Context, f SitterFilters) ([]Sitter, error) {
	var out []Sitter
	err := c.do(ctx, http.MethodGet, "/sitters"+f.query(), nil, &out)
	return out, err
}

func (c *Client) GetSitter(ctx context.Context, id string) (Sitter, error) {
	var out Sitter
	err := c.do(ctx, http.MethodGet, "/sitters/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) UpsertProfile(ctx context.Context, req ProfileRequest) (sitters.ProfileResponse, error) {
	var out sitters.ProfileResponse
	err := c.do(ctx, http.MethodPost, "/sitters/profile", req, &out)
	return out, err
}

func (c *Client) AddReview(ctx context.Context, sitterID string, rating int, comment string) (sitters.ReviewResponse, error) {
	var out sitters.ReviewResponse
	in := map[string]any{"rating": rating, "comment": comment}
	err := c.do(ctx, http.MethodPost, "/sitters/"+url.PathEscape(sitterID)+"/reviews", in, &out)
	return out, err
}

// ---- availability ----

type AvailabilityRequest struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	IsAvailable bool     `json:"isAvailable"`
	Slots       []string `json:"slots"`
}

func (c *Client) SetAvailability(ctx context.Context, req AvailabilityRequest) (availability.EntryResponse, error) {
	var out availability.EntryResponse
	err := c.do(ctx, http.MethodPost, "/sitters/availability", req, &out)
	return out, err
}

// GetAvailability con startDate/endDate vacíos devuelve desde hoy.
func (c *Client) GetAvailability(ctx context.Context, sitterID, startDate, endDate string) ([]availability.EntryResponse, error) {
	path := "/sitters/" + url.PathEscape(sitterID) + "/availability"
	if startDate != "" && endDate != "" {
		path += "?" + url.Values{"startDate": {startDate}, "endDate": {endDate}}.Encode()
	}
	var out []availability.EntryResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// ---- bookings ----

type BookingRequest struct {
	SitterID    string `json:"sitterId"`
	PetID       string `json:"petId,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	ServiceName string `json:"serviceName,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (bookings.BookingResponse, error) {
	var out bookings.BookingResponse
	err := c.do(ctx, http.MethodPost, "/bookings", req, &out)
	return out, err
}

func (c *Client) ListBookings(ctx context.Context) ([]bookings.BookingResponse, error) {
	var out []bookings.BookingResponse
	err := c.do(ctx, http.MethodGet, "/bookings", nil, &out)
	return out, err
}

func (c *Client) GetBooking(ctx context.Context, id string) (bookings.BookingResponse, error) {
	var out bookings.BookingResponse
	err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status bookings.Status) (bookings.BookingResponse, error) {
	var out bookings.BookingResponse
	in := map[string]string{"status": string(status)}
	err := c.do(ctx, http.MethodPatch, "/bookings/"+url.PathEscape(id)+"/status", in, &out)
	return out, err
}

// SitterBooking es una reserva recibida, con el dueño y sus mascotas.
type SitterBooking struct {
	bookings.BookingResponse
	User struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Email string          `json:"email"`
		Phone *string         `json:"phone"`
		City  *string         `json:"city"`
		Pets  []pets.Response `json:"pets"`
	} `json:"user"`
}

func (c *Client) ListSitterBookings(ctx context.Context) ([]SitterBooking, error) {
	var out []SitterBooking
	err := c.do(ctx, http.MethodGet, "/bookings/sitter", nil, &out)
	return out, err
}

func (c *Client) Quote(ctx context.Context, sitterID, startDate, endDate string) (bookings.QuoteResponse, error) {
	q := url.Values{"sitterId": {sitterID}, "startDate": {startDate}, "endDate": {endDate}}
	var out bookings.QuoteResponse
	err := c.do(ctx, http.MethodGet, "/bookings/quote?"+q.Encode(), nil, &out)
	return out, err
}
