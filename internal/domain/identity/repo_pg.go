package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homecare/homecare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// =========== Account Repository ===========

type accountRepoPG struct{ pool *pgxpool.Pool }

func NewAccountRepoPG(pool *pgxpool.Pool) AccountRepository { return &accountRepoPG{pool: pool} }

func (r *accountRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const accountCols = `id, email, password_hash, role, created_at`

func (r *accountRepoPG) scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, role)
		VALUES ($1,$2,$3,$4)`,
		a.ID, a.Email, a.PasswordHash, a.Role)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *accountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = $1`, id)
	return r.scanAccount(row)
}

func (r *accountRepoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE email = $1`, email)
	return r.scanAccount(row)
}

func (r *accountRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, account_id, first_name, last_name, address, phone, email,
	birth_date, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.AccountID, &p.FirstName, &p.LastName, &p.Address,
		&p.Phone, &p.Email, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, account_id, first_name, last_name, address, phone, email, birth_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.AccountID, p.FirstName, p.LastName, p.Address, p.Phone, p.Email, p.BirthDate)
	if isUniqueViolation(err) {
		return ErrDuplicateAccount
	}
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id)
	return r.scanPatient(row)
}

func (r *patientRepoPG) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE account_id = $1`, accountID)
	return r.scanPatient(row)
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET first_name=$2, last_name=$3, address=$4, phone=$5,
			email=$6, birth_date=$7, updated_at=now()
		WHERE id=$1`,
		p.ID, p.FirstName, p.LastName, p.Address, p.Phone, p.Email, p.BirthDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patients
		ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

// =========== Worker Repository ===========

type workerRepoPG struct{ pool *pgxpool.Pool }

func NewWorkerRepoPG(pool *pgxpool.Pool) WorkerRepository { return &workerRepoPG{pool: pool} }

func (r *workerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const workerCols = `id, account_id, first_name, last_name, phone, email, position,
	created_at, updated_at`

func (r *workerRepoPG) scanWorker(row pgx.Row) (*CareWorker, error) {
	var w CareWorker
	err := row.Scan(&w.ID, &w.AccountID, &w.FirstName, &w.LastName, &w.Phone,
		&w.Email, &w.Position, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &w, err
}

func (r *workerRepoPG) Create(ctx context.Context, w *CareWorker) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO care_workers (id, account_id, first_name, last_name, phone, email, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.AccountID, w.FirstName, w.LastName, w.Phone, w.Email, w.Position)
	if isUniqueViolation(err) {
		return ErrDuplicateAccount
	}
	return err
}

func (r *workerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CareWorker, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+workerCols+` FROM care_workers WHERE id = $1`, id)
	return r.scanWorker(row)
}

func (r *workerRepoPG) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*CareWorker, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+workerCols+` FROM care_workers WHERE account_id = $1`, accountID)
	return r.scanWorker(row)
}

func (r *workerRepoPG) FindDuplicate(ctx context.Context, email, phone, firstName, lastName string) (*CareWorker, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		SELECT `+workerCols+` FROM care_workers
		WHERE (email = $1 AND $1 <> '')
		   OR (phone = $2 AND $2 <> '')
		   OR (first_name = $3 AND last_name = $4)
		LIMIT 1`,
		email, phone, firstName, lastName)
	return r.scanWorker(row)
}

func (r *workerRepoPG) Update(ctx context.Context, w *CareWorker) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE care_workers SET first_name=$2, last_name=$3, phone=$4, email=$5,
			position=$6, updated_at=now()
		WHERE id=$1`,
		w.ID, w.FirstName, w.LastName, w.Phone, w.Email, w.Position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM care_workers WHERE id = $1`, id)
	return err
}

func (r *workerRepoPG) List(ctx context.Context, limit, offset int) ([]*CareWorker, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM care_workers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+workerCols+` FROM care_workers
		ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workers []*CareWorker
	for rows.Next() {
		w, err := r.scanWorker(rows)
		if err != nil {
			return nil, 0, err
		}
		workers = append(workers, w)
	}
	return workers, total, rows.Err()
}
