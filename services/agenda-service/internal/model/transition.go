package model

import "time"

// Leg is one appointment's time change inside a transition.
type Leg struct {
	AppointmentID string    `json:"appointment_id"`
	OldLabel      string    `json:"old_label"`
	NewLabel      string    `json:"new_label"`
	OldStartsAt   time.Time `json:"old_starts_at"`
	NewStartsAt   time.Time `json:"new_starts_at"`
}

// Transition is a staged, not yet committed time change. Secondary is set only for swaps.
type Transition struct {
	ID            string    `json:"id"`
	Primary       Leg       `json:"primary"`
	Secondary     *Leg      `json:"secondary,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Service       string    `json:"service,omitempty"`
	ProposedAt    time.Time `json:"proposed_at"`
}

const (
	KindMove = "move"
	KindSwap = "swap"
)

func (t Transition) IsSwap() bool {
	return t.Secondary != nil
}

func (t Transition) Kind() string {
	if t.IsSwap() {
		return KindSwap
	}
	return KindMove
}

// Legs returns the legs in commit order.
func (t Transition) Legs() []Leg {
	if t.Secondary == nil {
		return []Leg{t.Primary}
	}
	return []Leg{t.Primary, *t.Secondary}
}
