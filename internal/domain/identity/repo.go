package identity

import (
	"context"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type WorkerRepository interface {
	Create(ctx context.Context, w *CareWorker) error
	GetByID(ctx context.Context, id uuid.UUID) (*CareWorker, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*CareWorker, error)
	// FindDuplicate reports an existing worker matching any of the given
	// email, phone, or full name. Returns ErrNotFound when none match.
	FindDuplicate(ctx context.Context, email, phone, firstName, lastName string) (*CareWorker, error)
	Update(ctx context.Context, w *CareWorker) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*CareWorker, int, error)
}
