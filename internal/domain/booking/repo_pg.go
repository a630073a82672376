package booking

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, availability_id, patient_id, status, service_type, requested_time,
	selected_start, selected_end, visit_note, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.AvailabilityID, &a.PatientID, &a.Status, &a.ServiceType,
		&a.RequestedTime, &a.SelectedStart, &a.SelectedEnd, &a.VisitNote,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, availability_id, patient_id, status, service_type,
			requested_time, selected_start, selected_end, visit_note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.AvailabilityID, a.PatientID, a.Status, a.ServiceType,
		a.RequestedTime, a.SelectedStart, a.SelectedEnd, a.VisitNote, a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrSlotBooked
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}
	tasks, err := r.tasksFor(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Tasks = tasks[id]
	if a.Tasks == nil {
		a.Tasks = []Task{}
	}
	return a, nil
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET availability_id=$2, status=$3, service_type=$4,
			requested_time=$5, selected_start=$6, selected_end=$7, visit_note=$8,
			updated_at=now()
		WHERE id=$1`,
		a.ID, a.AvailabilityID, a.Status, a.ServiceType, a.RequestedTime,
		a.SelectedStart, a.SelectedEnd, a.VisitNote)
	if isUniqueViolation(err) {
		return ErrSlotBooked
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointment_tasks WHERE appointment_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ReplaceTasks(ctx context.Context, appointmentID uuid.UUID, tasks []Task) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointment_tasks WHERE appointment_id = $1`, appointmentID); err != nil {
		return err
	}
	for i := range tasks {
		tasks[i].ID = uuid.New()
		tasks[i].AppointmentID = appointmentID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO appointment_tasks (id, appointment_id, description, status, done)
			VALUES ($1,$2,$3,$4,$5)`,
			tasks[i].ID, appointmentID, tasks[i].Description, tasks[i].Status, tasks[i].Done); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) tasksFor(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID][]Task, error) {
	out := make(map[uuid.UUID][]Task)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, description, status, done
		FROM appointment_tasks WHERE appointment_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.AppointmentID, &t.Description, &t.Status, &t.Done); err != nil {
			return nil, err
		}
		out[t.AppointmentID] = append(out[t.AppointmentID], t)
	}
	return out, rows.Err()
}

const viewCols = `ap.id, ap.availability_id, ap.patient_id, ap.status, ap.service_type,
	ap.requested_time, ap.selected_start, ap.selected_end, ap.visit_note,
	ap.created_at, ap.updated_at,
	av.day, av.start_time, av.end_time, av.worker_id,
	w.first_name || ' ' || w.last_name AS worker_name, w.position,
	p.first_name || ' ' || p.last_name AS patient_name`

const viewFrom = `
	FROM appointments ap
	JOIN availabilities av ON av.id = ap.availability_id
	JOIN care_workers w ON w.id = av.worker_id
	JOIN patients p ON p.id = ap.patient_id`

func scanView(rows pgx.Rows) (*View, error) {
	var v View
	err := rows.Scan(&v.ID, &v.AvailabilityID, &v.PatientID, &v.Status, &v.ServiceType,
		&v.RequestedTime, &v.SelectedStart, &v.SelectedEnd, &v.VisitNote,
		&v.CreatedAt, &v.UpdatedAt,
		&v.Day, &v.SlotStart, &v.SlotEnd, &v.WorkerID,
		&v.WorkerName, &v.WorkerPosition, &v.PatientName)
	return &v, err
}

func (r *repoPG) collectViews(ctx context.Context, rows pgx.Rows) ([]*View, error) {
	defer rows.Close()
	var views []*View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	tasks, err := r.tasksFor(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		v.Tasks = tasks[v.ID]
		if v.Tasks == nil {
			v.Tasks = []Task{}
		}
	}
	return views, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*View, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+viewCols+viewFrom+` WHERE ap.patient_id = $1 ORDER BY ap.created_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	return r.collectViews(ctx, rows)
}

func (r *repoPG) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*View, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+viewCols+viewFrom+` WHERE av.worker_id = $1 ORDER BY ap.created_at DESC`,
		workerID)
	if err != nil {
		return nil, err
	}
	return r.collectViews(ctx, rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*View, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+viewCols+viewFrom+` ORDER BY ap.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views, err := r.collectViews(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *repoPG) AvailabilityExists(ctx context.Context, availabilityID uuid.UUID) error {
	var one int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT 1 FROM availabilities WHERE id = $1`, availabilityID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAvailabilityNotFound
	}
	return err
}

func (r *repoPG) AppointmentForSlot(ctx context.Context, availabilityID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id FROM appointments WHERE availability_id = $1`, availabilityID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	return id, err
}
