package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecare/homecare/internal/platform/db"
	"github.com/homecare/homecare/pkg/timeofday"
)

// Service enforces the booking rules: slot exclusivity, the Pending-first
// state machine, and the role-dependent end-of-life actions.
type Service struct {
	repo  Repository
	runTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(repo Repository, pool *pgxpool.Pool) *Service {
	return &Service{
		repo: repo,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

// CreateInput carries the booking request. Time fields arrive as "HH:mm[:ss]"
// strings; unparsable values are treated as absent.
type CreateInput struct {
	AvailabilityID uuid.UUID `json:"availability_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	ServiceType    string    `json:"service_type"`
	RequestedTime  string    `json:"requested_local_time"`
	SelectedStart  string    `json:"selected_start_time"`
	SelectedEnd    string    `json:"selected_end_time"`
	VisitNote      string    `json:"visit_note"`
	Tasks          []string  `json:"tasks"`
}

// Create books a slot. The existence and free-slot pre-checks run inside a
// transaction; the unique index on availability_id is the authoritative guard
// when two bookings race, so a unique violation from the insert reports the
// same already-booked error.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Appointment, error) {
	if in.AvailabilityID == uuid.Nil {
		return nil, ErrAvailabilityRequired
	}
	if in.PatientID == uuid.Nil {
		return nil, ErrPatientRequired
	}

	a := &Appointment{
		AvailabilityID: in.AvailabilityID,
		PatientID:      in.PatientID,
		Status:         StatusPending,
		ServiceType:    in.ServiceType,
		RequestedTime:  in.RequestedTime,
		SelectedStart:  timeofday.ParseOptional(in.SelectedStart),
		SelectedEnd:    timeofday.ParseOptional(in.SelectedEnd),
		CreatedAt:      time.Now().UTC(),
		Tasks:          []Task{},
	}
	if in.VisitNote != "" {
		a.VisitNote = &in.VisitNote
	}

	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.AvailabilityExists(ctx, in.AvailabilityID); err != nil {
			return err
		}
		if _, err := s.repo.AppointmentForSlot(ctx, in.AvailabilityID); err == nil {
			return ErrSlotBooked
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		if len(in.Tasks) > 0 {
			a.Tasks = newTasks(in.Tasks)
			return s.repo.ReplaceTasks(ctx, a.ID, a.Tasks)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newTasks(descriptions []string) []Task {
	tasks := make([]Task, len(descriptions))
	for i, d := range descriptions {
		tasks[i] = Task{Description: d, Status: "Pending", Done: false}
	}
	return tasks
}

// UpdateInput applies only the fields present in the payload. Nil pointers and
// empty task lists leave the stored value untouched.
type UpdateInput struct {
	AvailabilityID *uuid.UUID `json:"availability_id"`
	Status         *Status    `json:"status"`
	ServiceType    *string    `json:"service_type"`
	RequestedTime  *string    `json:"requested_local_time"`
	SelectedStart  *string    `json:"selected_start_time"`
	SelectedEnd    *string    `json:"selected_end_time"`
	VisitNote      *string    `json:"visit_note"`
	Tasks          []string   `json:"tasks"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *UpdateInput) (*Appointment, error) {
	var updated *Appointment
	err := s.runTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.AvailabilityID != nil && *in.AvailabilityID != a.AvailabilityID {
			if err := s.repo.AvailabilityExists(ctx, *in.AvailabilityID); err != nil {
				return err
			}
			holder, err := s.repo.AppointmentForSlot(ctx, *in.AvailabilityID)
			if err == nil && holder != a.ID {
				return ErrSlotBooked
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			a.AvailabilityID = *in.AvailabilityID
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return ErrInvalidStatus
			}
			a.Status = *in.Status
		}
		if in.ServiceType != nil {
			a.ServiceType = *in.ServiceType
		}
		if in.RequestedTime != nil {
			a.RequestedTime = *in.RequestedTime
		}
		// Unparsable time strings leave the stored value alone.
		if in.SelectedStart != nil {
			if t := timeofday.ParseOptional(*in.SelectedStart); t != nil {
				a.SelectedStart = t
			}
		}
		if in.SelectedEnd != nil {
			if t := timeofday.ParseOptional(*in.SelectedEnd); t != nil {
				a.SelectedEnd = t
			}
		}
		if in.VisitNote != nil {
			a.VisitNote = in.VisitNote
		}

		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		if len(in.Tasks) > 0 {
			a.Tasks = newTasks(in.Tasks)
			if err := s.repo.ReplaceTasks(ctx, a.ID, a.Tasks); err != nil {
				return err
			}
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve marks the appointment Approved without touching its slot.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, id, StatusApproved)
}

// Reject removes the appointment and its tasks entirely, which frees the slot
// for rebooking. No Rejected row remains.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

// AdminCancel keeps the row with status Rejected. The slot stays occupied.
func (s *Service) AdminCancel(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, id, StatusRejected)
}

// PatientCancel keeps the row with status Cancelled. The slot stays occupied.
func (s *Service) PatientCancel(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// HardDelete removes the appointment and its tasks, freeing the slot.
func (s *Service) HardDelete(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*View, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*View, error) {
	return s.repo.ListByWorker(ctx, workerID)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*View, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}
