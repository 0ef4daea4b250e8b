package availability

import "time"

// DayPart es una franja del día que ofrece el cuidador.
// @Enum morning, afternoon, evening, overnight
type DayPart string

const (
	DayPartMorning   DayPart = "morning"
	DayPartAfternoon DayPart = "afternoon"
	DayPartEvening   DayPart = "evening"
	DayPartOvernight DayPart = "overnight"
)

var dayParts = map[DayPart]struct{}{
	DayPartMorning:   {},
	DayPartAfternoon: {},
	DayPartEvening:   {},
	DayPartOvernight: {},
}

// Entry es una fila del ledger: un día de un cuidador.
// IsAvailable es la compuerta del día y es independiente de Slots.
type Entry struct {
	ID       string
	SitterID string
	Date     time.Time // medianoche UTC

	IsAvailable bool
	Slots       []DayPart

	CreatedAt time.Time
	UpdatedAt time.Time
}
