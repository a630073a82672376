package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/homecare/homecare/internal/platform/auth"
	"github.com/homecare/homecare/internal/platform/db"
)

type Service struct {
	accounts AccountRepository
	patients PatientRepository
	workers  WorkerRepository
	issuer   *auth.TokenIssuer

	runTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(accounts AccountRepository, patients PatientRepository, workers WorkerRepository, pool *pgxpool.Pool, issuer *auth.TokenIssuer) *Service {
	return &Service{
		accounts: accounts,
		patients: patients,
		workers:  workers,
		issuer:   issuer,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

// -- Registration & login --

type RegisterInput struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Address   *string    `json:"address,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	BirthDate *birthDate `json:"birth_date,omitempty"`
}

// RegisterPatient provisions an account with the patient role and its profile
// row in one transaction.
func (s *Service) RegisterPatient(ctx context.Context, in *RegisterInput) (*Patient, error) {
	if in.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var patient *Patient
	err = s.runTx(ctx, func(ctx context.Context) error {
		account := &Account{
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         auth.RolePatient,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}

		patient = &Patient{
			AccountID: account.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Address:   in.Address,
			Phone:     in.Phone,
			Email:     &in.Email,
		}
		if in.BirthDate != nil {
			patient.BirthDate = in.BirthDate.timePtr()
		}
		return s.patients.Create(ctx, patient)
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}

	token, err := s.issuer.Issue(account.ID.String(), account.Email, []string{account.Role})
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, account, nil
}

// -- Patient --

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	return s.patients.Update(ctx, p)
}

// DeletePatient removes the patient's account; the profile row, its
// appointments and their tasks go with it through the cascading foreign keys.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.accounts.Delete(ctx, patient.AccountID)
	})
}

// -- Care worker --

type CreateWorkerInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
	Position  string  `json:"position"`
}

// CreateWorker provisions an account with the worker role plus the profile row.
// Duplicate detection rejects a worker sharing an email, phone, or full name
// with an existing one.
func (s *Service) CreateWorker(ctx context.Context, in *CreateWorkerInput) (*CareWorker, error) {
	if in.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}
	if in.Position == "" {
		return nil, fmt.Errorf("position is required")
	}

	phone := ""
	if in.Phone != nil {
		phone = *in.Phone
	}
	if _, err := s.workers.FindDuplicate(ctx, in.Email, phone, in.FirstName, in.LastName); err == nil {
		return nil, ErrDuplicateWorker
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var worker *CareWorker
	err = s.runTx(ctx, func(ctx context.Context) error {
		account := &Account{
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         auth.RoleWorker,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}

		worker = &CareWorker{
			AccountID: account.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			Email:     &in.Email,
			Position:  in.Position,
		}
		return s.workers.Create(ctx, worker)
	})
	if err != nil {
		return nil, err
	}
	return worker, nil
}

func (s *Service) GetWorker(ctx context.Context, id uuid.UUID) (*CareWorker, error) {
	return s.workers.GetByID(ctx, id)
}

func (s *Service) ListWorkers(ctx context.Context, limit, offset int) ([]*CareWorker, int, error) {
	return s.workers.List(ctx, limit, offset)
}

func (s *Service) UpdateWorker(ctx context.Context, w *CareWorker) error {
	if w.FirstName == "" || w.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if w.Position == "" {
		return fmt.Errorf("position is required")
	}
	return s.workers.Update(ctx, w)
}

// DeleteWorker removes the worker's account; the profile, its availabilities
// and any appointments booked against them cascade away with it.
func (s *Service) DeleteWorker(ctx context.Context, id uuid.UUID) error {
	worker, err := s.workers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		return s.accounts.Delete(ctx, worker.AccountID)
	})
}
