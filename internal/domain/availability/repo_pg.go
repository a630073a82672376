package availability

import (
	"context"
	"errors"
	"time"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// availCols selects from availabilities aliased "a"; is_booked is computed
// from the linked appointment, if any.
const availCols = `a.id, a.worker_id, a.day, a.start_time, a.end_time,
	EXISTS (SELECT 1 FROM appointments ap WHERE ap.availability_id = a.id) AS is_booked,
	a.created_at, a.updated_at`

func (r *repoPG) scanAvailability(row pgx.Row) (*Availability, error) {
	var a Availability
	err := row.Scan(&a.ID, &a.WorkerID, &a.Day, &a.StartTime, &a.EndTime,
		&a.IsBooked, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Availability) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO availabilities (id, worker_id, day, start_time, end_time)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.WorkerID, a.Day, a.StartTime, a.EndTime)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateDay
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Availability, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+availCols+` FROM availabilities a WHERE a.id = $1`, id)
	return r.scanAvailability(row)
}

func (r *repoPG) GetByWorkerAndDay(ctx context.Context, workerID uuid.UUID, day time.Time) (*Availability, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+availCols+` FROM availabilities a WHERE a.worker_id = $1 AND a.day = $2`,
		workerID, day)
	return r.scanAvailability(row)
}

func (r *repoPG) Update(ctx context.Context, a *Availability) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE availabilities SET day=$2, start_time=$3, end_time=$4, updated_at=now()
		WHERE id=$1`,
		a.ID, a.Day, a.StartTime, a.EndTime)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Availability, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM availabilities`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+availCols+` FROM availabilities a
		ORDER BY a.day, a.start_time NULLS FIRST LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) ListByWorker(ctx context.Context, workerID uuid.UUID, limit, offset int) ([]*Availability, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM availabilities WHERE worker_id = $1`, workerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+availCols+` FROM availabilities a
		WHERE a.worker_id = $1
		ORDER BY a.day, a.start_time NULLS FIRST LIMIT $2 OFFSET $3`,
		workerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Availability, int, error) {
	var items []*Availability
	for rows.Next() {
		a, err := r.scanAvailability(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListUnbooked(ctx context.Context, from time.Time, limit, offset int) ([]*UnbookedSlot, int, error) {
	const unbookedWhere = `
		FROM availabilities a
		JOIN care_workers w ON w.id = a.worker_id
		WHERE a.day >= $1
		  AND NOT EXISTS (SELECT 1 FROM appointments ap WHERE ap.availability_id = a.id)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*)`+unbookedWhere, from).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.worker_id, a.day, a.start_time, a.end_time,
			false AS is_booked, a.created_at, a.updated_at,
			w.first_name || ' ' || w.last_name AS worker_name, w.position`+unbookedWhere+`
		ORDER BY a.day, a.start_time NULLS FIRST LIMIT $2 OFFSET $3`,
		from, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var slots []*UnbookedSlot
	for rows.Next() {
		var s UnbookedSlot
		err := rows.Scan(&s.ID, &s.WorkerID, &s.Day, &s.StartTime, &s.EndTime,
			&s.IsBooked, &s.CreatedAt, &s.UpdatedAt, &s.WorkerName, &s.WorkerPosition)
		if err != nil {
			return nil, 0, err
		}
		slots = append(slots, &s)
	}
	return slots, total, rows.Err()
}
