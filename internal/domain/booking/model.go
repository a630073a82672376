package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/homecare/homecare/internal/domain/availability"
	"github.com/homecare/homecare/pkg/timeofday"
)

// Status is the appointment lifecycle state. Pending transitions to Approved,
// Rejected or Cancelled; the latter two are terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Appointment books one availability slot for one patient. The unique index on
// availability_id keeps a slot bound to at most one appointment row.
type Appointment struct {
	ID             uuid.UUID            `json:"id"`
	AvailabilityID uuid.UUID            `json:"availability_id"`
	PatientID      uuid.UUID            `json:"patient_id"`
	Status         Status               `json:"status"`
	ServiceType    string               `json:"service_type"`
	RequestedTime  string               `json:"requested_local_time"`
	SelectedStart  *timeofday.TimeOfDay `json:"selected_start_time,omitempty"`
	SelectedEnd    *timeofday.TimeOfDay `json:"selected_end_time,omitempty"`
	VisitNote      *string              `json:"visit_note,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Tasks          []Task               `json:"tasks"`
}

// Task belongs to exactly one appointment. Task lists are replaced wholesale
// on update, never merged.
type Task struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Done          bool      `json:"done"`
}

// View is an appointment joined with its slot and display names for list
// endpoints.
type View struct {
	Appointment
	Day            availability.DateOnly `json:"day"`
	SlotStart      *timeofday.TimeOfDay  `json:"slot_start_time,omitempty"`
	SlotEnd        *timeofday.TimeOfDay  `json:"slot_end_time,omitempty"`
	WorkerID       uuid.UUID             `json:"worker_id"`
	WorkerName     string                `json:"worker_name"`
	WorkerPosition string                `json:"worker_position"`
	PatientName    string                `json:"patient_name"`
}
