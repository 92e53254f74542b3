package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxIface is the subset of pgxpool.Pool the repository uses. pgxmock
// implements it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in Postgres.
type PostgresRepository struct {
	db PgxIface
}

func NewPostgresRepository(db PgxIface) *PostgresRepository {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const apptColumns = `id, pet_id, pet_name, owner_name, requester_email, date,
		start_time, duration_minutes, reason, status, crm_appointment_id, created_at`

func (r *PostgresRepository) Insert(ctx context.Context, appt *Appointment) error {
	query := `
		INSERT INTO appointments (id, pet_id, pet_name, owner_name, requester_email,
			date, start_time, duration_minutes, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := r.db.Exec(ctx, query,
		appt.ID, appt.PetID, appt.PetName, appt.OwnerName, appt.RequesterEmail,
		appt.Date, appt.StartTime, appt.DurationMinutes, appt.Reason, appt.Status,
	); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE id = $1`
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) ListByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE date = $1 ORDER BY start_time`
	rows, err := r.db.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by date: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *PostgresRepository) ListByRequester(ctx context.Context, email string) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE requester_email = $1 ORDER BY date, start_time`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by requester: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("appointments: list recent: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *PostgresRepository) CountByDate(ctx context.Context, day time.Time) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE date = $1::date`, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("appointments: count by date: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) SetCRMAppointmentID(ctx context.Context, id, crmID string) error {
	query := `UPDATE appointments SET crm_appointment_id = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, crmID)
	if err != nil {
		return fmt.Errorf("appointments: set crm id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var crmID *string
	if err := row.Scan(
		&appt.ID, &appt.PetID, &appt.PetName, &appt.OwnerName, &appt.RequesterEmail,
		&appt.Date, &appt.StartTime, &appt.DurationMinutes, &appt.Reason,
		&appt.Status, &crmID, &appt.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	if crmID != nil {
		appt.CRMAppointmentID = *crmID
	}
	return &appt, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var out []*Appointment
	for rows.Next() {
		var appt Appointment
		var crmID *string
		if err := rows.Scan(
			&appt.ID, &appt.PetID, &appt.PetName, &appt.OwnerName, &appt.RequesterEmail,
			&appt.Date, &appt.StartTime, &appt.DurationMinutes, &appt.Reason,
			&appt.Status, &crmID, &appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		if crmID != nil {
			appt.CRMAppointmentID = *crmID
		}
		out = append(out, &appt)
	}
	return out, rows.Err()
}
