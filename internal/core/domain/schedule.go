package domain

import "time"

// Recurrence periods accepted on an appointment template. An empty value means
// the template never expires.
const (
	EveryMonth = "month"
	EveryYear  = "year"
)

// AppointmentTemplate is a doctor's recurring weekly availability window at one
// hospital. Hours are fractional (14.5 == 14:30); SessionDuration is minutes.
type AppointmentTemplate struct {
	ID              string    `json:"id"`
	DoctorUID       string    `json:"doctor_uid"`
	HospitalUID     string    `json:"hospital_uid"`
	Day             string    `json:"day"`
	StartHour       float64   `json:"start_hour"`
	EndHour         float64   `json:"end_hour"`
	SessionDuration int       `json:"session_duration"`
	StartDate       time.Time `json:"start_date"`
	Every           string    `json:"every,omitempty"`
	IsOnline        bool      `json:"is_online"`
	Price           float64   `json:"price,omitempty"`
	Currency        string    `json:"currency,omitempty"`
}

// BookedSlot is an already-reserved instance of a template-derived slot.
// Slot is the 24-hour "HH:MM" start time.
type BookedSlot struct {
	DoctorUID   string    `json:"doctor_uid"`
	HospitalUID string    `json:"hospital_uid"`
	Date        time.Time `json:"date"`
	Slot        string    `json:"slot"`
}

// SlotWindow is one concrete day of bookable slots produced by the availability
// engine. Slots are formatted in 12-hour "HH:MM AM/PM" form.
type SlotWindow struct {
	Date     time.Time `json:"date"`
	DayName  string    `json:"day_name"`
	IsOnline bool      `json:"is_online"`
	Price    float64   `json:"price,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Slots    []string  `json:"slots"`
}
