package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/homecare/pkg/timeofday"
)

// BookingWindowDays bounds how far ahead a worker may publish availability.
const BookingWindowDays = 30

type Service struct {
	repo Repository

	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// validateDay enforces the booking window: day must fall within
// [today, today+BookingWindowDays], compared as local calendar days.
func (s *Service) validateDay(day DateOnly) error {
	if day.IsZero() {
		return ErrDayRequired
	}
	today := s.today()
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, today.Location())
	if d.Before(today) {
		return ErrOutsideWindow
	}
	if d.After(today.AddDate(0, 0, BookingWindowDays)) {
		return ErrOutsideWindow
	}
	return nil
}

// Add publishes one slot. Rejects out-of-window days and same-day duplicates;
// the unique index on (worker_id, day) backstops the duplicate check.
func (s *Service) Add(ctx context.Context, a *Availability) error {
	if a.WorkerID == uuid.Nil {
		return fmt.Errorf("worker_id is required")
	}
	if err := s.validateDay(a.Day); err != nil {
		return err
	}

	_, err := s.repo.GetByWorkerAndDay(ctx, a.WorkerID, a.Day.Time)
	if err == nil {
		return ErrDuplicateDay
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	a.IsBooked = false
	return nil
}

// BatchError reports a single failed item in a batch add.
type BatchError struct {
	Index   int    `json:"index"`
	Message string `json:"error"`
}

// AddBatch processes each slot independently, collecting per-item errors. The
// caller decides how to report a batch with zero successes.
func (s *Service) AddBatch(ctx context.Context, items []*Availability) ([]*Availability, []BatchError) {
	var created []*Availability
	var itemErrs []BatchError
	for i, item := range items {
		if err := s.Add(ctx, item); err != nil {
			itemErrs = append(itemErrs, BatchError{Index: i, Message: err.Error()})
			continue
		}
		created = append(created, item)
	}
	return created, itemErrs
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Day       *DateOnly            `json:"day,omitempty"`
	StartTime *timeofday.TimeOfDay `json:"start_time,omitempty"`
	EndTime   *timeofday.TimeOfDay `json:"end_time,omitempty"`
}

// Update re-validates the booking window against the (possibly new) day and
// applies any provided times. The same-day duplicate constraint is not
// re-checked here; only Add enforces it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *UpdateInput) (*Availability, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Day != nil {
		existing.Day = *in.Day
	}
	if err := s.validateDay(existing.Day); err != nil {
		return nil, err
	}
	if in.StartTime != nil {
		existing.StartTime = in.StartTime
	}
	if in.EndTime != nil {
		existing.EndTime = in.EndTime
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Availability, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Availability, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Availability, int, error) {
	return s.repo.ListByWorker(ctx, workerID, limit, offset)
}

// ListUnbooked returns future slots with no appointment, enriched with worker
// name and position; ordering (day, then start time) is done in the query.
func (s *Service) ListUnbooked(ctx context.Context, limit, offset int) ([]*UnbookedSlot, int, error) {
	return s.repo.ListUnbooked(ctx, s.today(), limit, offset)
}

// Delete is an unconditional hard delete by id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
