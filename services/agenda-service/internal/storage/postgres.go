package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

// Schema is the appointments table the agenda expects.
const Schema = `
CREATE TABLE IF NOT EXISTS appointments (
	id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	starts_at            TIMESTAMPTZ NOT NULL,
	customer_name        TEXT NOT NULL,
	customer_phone       TEXT,
	customer_email       TEXT,
	service_presentation TEXT,
	instructor_name      TEXT,
	status               TEXT NOT NULL DEFAULT 'scheduled',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_appointments_starts_at ON appointments (starts_at);
`

// Querier is the slice of pgxpool.Pool the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db    Querier
	clock bizclock.Clock
}

func NewPostgresRepository(db Querier, clock bizclock.Clock) *PostgresRepository {
	return &PostgresRepository{db: db, clock: clock}
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, Schema)
	return err
}

const appointmentColumns = `id::text, starts_at, customer_name, COALESCE(customer_phone, ''), COALESCE(customer_email, ''),
	COALESCE(service_presentation, ''), COALESCE(instructor_name, ''), status`

func (r *PostgresRepository) ListToday(ctx context.Context, day time.Time) ([]model.Appointment, error) {
	start, end := r.clock.DayBounds(day)
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at, id
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, appt)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) UpdateStartTime(ctx context.Context, id string, startsAt time.Time) (model.Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET starts_at = $2,
			updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, startsAt)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appointment{}, notFound(id)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return model.Appointment{}, &model.RemoteError{Message: pgErr.Message, Err: err}
		}
		return model.Appointment{}, remote(err)
	}
	return appt, nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var status string
	err := row.Scan(
		&appt.ID,
		&appt.StartsAt,
		&appt.CustomerName,
		&appt.CustomerPhone,
		&appt.CustomerEmail,
		&appt.ServicePresentation,
		&appt.InstructorName,
		&status,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.Status(status)
	return appt, nil
}
