package storage

import (
	"time"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

// DemoAppointments is a small day used by the memory store and SQLITE_SEED_DEMO.
// One item sits at 18:30 so the expansion controls have something to reveal.
func DemoAppointments(clock bizclock.Clock, day time.Time) []model.Appointment {
	at := func(h, m int) time.Time { return clock.BuildInstant(day, h, m) }
	return []model.Appointment{
		{ID: "demo-1", StartsAt: at(8, 30), CustomerName: "Ana Souza", CustomerPhone: "+5511990000001", ServicePresentation: "Pilates", InstructorName: "Carla", Status: model.StatusConfirmed},
		{ID: "demo-2", StartsAt: at(9, 0), CustomerName: "Bruno Lima", CustomerEmail: "bruno@example.com", ServicePresentation: "Physio", InstructorName: "Davi", Status: model.StatusScheduled},
		{ID: "demo-3", StartsAt: at(10, 10), CustomerName: "Clara Reis", ServicePresentation: "Pilates", InstructorName: "Carla", Status: model.StatusPendingDeposit},
		{ID: "demo-4", StartsAt: at(13, 0), CustomerName: "Diego Alves", CustomerPhone: "+5511990000004", ServicePresentation: "Massage", InstructorName: "Eva", Status: model.StatusDepositPaid},
		{ID: "demo-5", StartsAt: at(18, 30), CustomerName: "Elisa Prado", CustomerEmail: "elisa@example.com", ServicePresentation: "Physio", InstructorName: "Davi", Status: model.StatusConfirmed},
	}
}
