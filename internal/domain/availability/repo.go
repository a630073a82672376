package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Availability) error
	GetByID(ctx context.Context, id uuid.UUID) (*Availability, error)
	GetByWorkerAndDay(ctx context.Context, workerID uuid.UUID, day time.Time) (*Availability, error)
	Update(ctx context.Context, a *Availability) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Availability, int, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Availability, int, error)
	// ListUnbooked returns slots with no linked appointment and day >= from,
	// enriched with worker name/position, ordered by day then start time.
	ListUnbooked(ctx context.Context, from time.Time, limit, offset int) ([]*UnbookedSlot, int, error)
}
