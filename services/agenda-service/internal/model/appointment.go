package model

import "time"

type Status string

const (
	StatusScheduled      Status = "scheduled"
	StatusPendingDeposit Status = "pending_deposit"
	StatusDepositPaid    Status = "deposit_paid"
	StatusConfirmed      Status = "confirmed"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPendingDeposit, StatusDepositPaid, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is the agenda's projection of a booked appointment. StartsAt is the only
// field the agenda ever writes back.
type Appointment struct {
	ID                  string    `json:"id"`
	StartsAt            time.Time `json:"starts_at"`
	CustomerName        string    `json:"customer_name"`
	CustomerPhone       string    `json:"customer_phone,omitempty"`
	CustomerEmail       string    `json:"customer_email,omitempty"`
	ServicePresentation string    `json:"service_presentation,omitempty"`
	InstructorName      string    `json:"instructor_name,omitempty"`
	Status              Status    `json:"status"`
}

// FindAppointment returns the first appointment with the given id.
func FindAppointment(items []Appointment, id string) (Appointment, bool) {
	for _, a := range items {
		if a.ID == id {
			return a, true
		}
	}
	return Appointment{}, false
}
