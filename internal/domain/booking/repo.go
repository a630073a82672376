package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists appointments and their tasks. GetByID and the list
// methods return appointments with tasks attached.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTasks(ctx context.Context, appointmentID uuid.UUID, tasks []Task) error

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*View, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*View, error)
	ListAll(ctx context.Context, limit, offset int) ([]*View, int, error)

	// AvailabilityExists reports ErrAvailabilityNotFound when the slot id is
	// unknown.
	AvailabilityExists(ctx context.Context, availabilityID uuid.UUID) error
	// AppointmentForSlot returns the id of the appointment holding the slot,
	// or ErrNotFound when the slot is free.
	AppointmentForSlot(ctx context.Context, availabilityID uuid.UUID) (uuid.UUID, error)
}
