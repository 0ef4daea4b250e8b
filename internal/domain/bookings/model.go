package bookings

import (
	"math"
	"time"
)

// Status es el estado de una reserva.
// @Enum PENDING, CONFIRMED, COMPLETED, CANCELLED
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions es la máquina de estados. COMPLETED y CANCELLED son terminales.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition indica si from -> to está en la tabla.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Active son los estados que ocupan el calendario del cuidador.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking es una solicitud de un dueño a un cuidador por un rango de fechas.
// El rango no cambia después de creada.
type Booking struct {
	ID       string
	UserID   string // quien reserva
	SitterID string // perfil de cuidador
	PetID    string // opcional

	StartDate time.Time
	EndDate   time.Time

	Status      Status
	ServiceName string
	Notes       string

	Subtotal   float64
	ServiceFee float64
	Price      float64 // total

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceFeeRate es la comisión de la plataforma sobre el subtotal.
const ServiceFeeRate = 0.15

// Quote es el desglose de precio calculado en el servidor.
type Quote struct {
	Days       int
	DailyRate  float64
	Subtotal   float64
	ServiceFee float64
	Total      float64
}

// Days cuenta días cobrables: ceil(|end-start| / 24h), mínimo 1.
func Days(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	n := int(math.Ceil(d.Hours() / 24))
	if n < 1 {
		n = 1
	}
	return n
}

func NewQuote(rate float64, start, end time.Time) Quote {
	days := Days(start, end)
	subtotal := rate * float64(days)
	fee := math.Round(subtotal * ServiceFeeRate)
	return Quote{
		Days:       days,
		DailyRate:  rate,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      subtotal + fee,
	}
}

// Checkout es el día de salida: end, o el día siguiente si la estadía empieza y termina el mismo día.
// La estadía ocupa [start, Checkout); el día de salida queda libre para otra reserva.
func Checkout(start, end time.Time) time.Time {
	if end.After(start) {
		return end
	}
	return start.AddDate(0, 0, 1)
}

// Overlaps indica si dos estadías se cruzan en alguna noche cobrada.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(Checkout(bStart, bEnd)) && bStart.Before(Checkout(aStart, aEnd))
}
