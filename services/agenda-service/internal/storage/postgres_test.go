package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

var utcMinus3 = time.FixedZone("UTC-3", -3*3600)

var columns = []string{"id", "starts_at", "customer_name", "customer_phone", "customer_email", "service_presentation", "instructor_name", "status"}

func TestPostgresRepository_ListToday(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	at := time.Date(2026, 3, 10, 9, 0, 0, 0, utcMinus3)
	mock.ExpectQuery("FROM appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("a1", at, "Ana", "+5511", "", "Pilates", "Rita", "confirmed").
			AddRow("a2", at.Add(time.Hour), "Bruno", "", "b@example.com", "", "", "deposit_paid"))

	repo := NewPostgresRepository(mock, bizclock.New(utcMinus3))
	items, err := repo.ListToday(context.Background(), at)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Status != model.StatusConfirmed || items[1].CustomerEmail != "b@example.com" {
		t.Fatalf("unexpected items %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_UpdateStartTime(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	newAt := time.Date(2026, 3, 10, 9, 30, 0, 0, utcMinus3)
	mock.ExpectQuery("UPDATE appointments").
		WithArgs("a1", newAt).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("a1", newAt, "Ana", "", "", "", "", "scheduled"))
	mock.ExpectQuery("UPDATE appointments").
		WithArgs("missing", newAt).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("UPDATE appointments").
		WithArgs("a2", newAt).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "outside business hours"})

	repo := NewPostgresRepository(mock, bizclock.New(utcMinus3))
	appt, err := repo.UpdateStartTime(context.Background(), "a1", newAt)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !appt.StartsAt.Equal(newAt) {
		t.Fatalf("unexpected starts_at %s", appt.StartsAt)
	}

	_, err = repo.UpdateStartTime(context.Background(), "missing", newAt)
	var re *model.RemoteError
	if !errors.As(err, &re) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found RemoteError, got %v", err)
	}

	_, err = repo.UpdateStartTime(context.Background(), "a2", newAt)
	if !errors.As(err, &re) || re.Message != "outside business hours" {
		t.Fatalf("expected RemoteError carrying the database message, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS appointments").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := NewPostgresRepository(mock, bizclock.New(utcMinus3)).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
