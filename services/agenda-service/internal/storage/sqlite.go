package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

// SQLiteRepository stores appointments in a local file. Instants are kept as unix
// milliseconds so ordering and range scans stay numeric.
type SQLiteRepository struct {
	db    *sql.DB
	clock bizclock.Clock
}

func OpenSQLite(ctx context.Context, path string, clock bizclock.Clock) (*SQLiteRepository, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	r := &SQLiteRepository{db: db, clock: clock}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			starts_at_unixms INTEGER NOT NULL,
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL DEFAULT '',
			customer_email TEXT NOT NULL DEFAULT '',
			service_presentation TEXT NOT NULL DEFAULT '',
			instructor_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'scheduled',
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_starts_at ON appointments(starts_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := r.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("storage: sqlite migrate: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert adds an appointment, assigning an id when empty. Used to seed local databases.
func (r *SQLiteRepository) Insert(ctx context.Context, appt model.Appointment) (string, error) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = model.StatusScheduled
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments
			(id, starts_at_unixms, customer_name, customer_phone, customer_email, service_presentation, instructor_name, status, updated_at_unixms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, appt.ID, appt.StartsAt.UnixMilli(), appt.CustomerName, appt.CustomerPhone, appt.CustomerEmail,
		appt.ServicePresentation, appt.InstructorName, string(appt.Status), time.Now().UnixMilli())
	if err != nil {
		return "", err
	}
	return appt.ID, nil
}

const sqliteColumns = `id, starts_at_unixms, customer_name, customer_phone, customer_email, service_presentation, instructor_name, status`

func (r *SQLiteRepository) ListToday(ctx context.Context, day time.Time) ([]model.Appointment, error) {
	start, end := r.clock.DayBounds(day)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM appointments
		WHERE starts_at_unixms >= ? AND starts_at_unixms < ?
		ORDER BY starts_at_unixms, id
	`, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Appointment{}
	for rows.Next() {
		appt, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, appt)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) UpdateStartTime(ctx context.Context, id string, startsAt time.Time) (model.Appointment, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments SET starts_at_unixms = ?, updated_at_unixms = ? WHERE id = ?
	`, startsAt.UnixMilli(), time.Now().UnixMilli(), id)
	if err != nil {
		return model.Appointment{}, remote(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Appointment{}, notFound(id)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM appointments WHERE id = ?`, id)
	appt, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Appointment{}, notFound(id)
	}
	if err != nil {
		return model.Appointment{}, remote(err)
	}
	return appt, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (model.Appointment, error) {
	var appt model.Appointment
	var startsAt int64
	var status string
	if err := row.Scan(&appt.ID, &startsAt, &appt.CustomerName, &appt.CustomerPhone, &appt.CustomerEmail,
		&appt.ServicePresentation, &appt.InstructorName, &status); err != nil {
		return model.Appointment{}, err
	}
	appt.StartsAt = time.UnixMilli(startsAt).UTC()
	appt.Status = model.Status(status)
	return appt, nil
}
