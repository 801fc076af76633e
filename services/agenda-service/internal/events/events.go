// Package events announces committed agenda changes to other services.
package events

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

const TopicRescheduled = "agenda.appointment.rescheduled.v1"

// Rescheduled is published once per confirmed transition that moved at least one
// appointment.
type Rescheduled struct {
	TransitionID string      `json:"transition_id"`
	Kind         string      `json:"kind"`
	SessionID    string      `json:"session_id"`
	Legs         []model.Leg `json:"legs"`
	Updated      []string    `json:"updated"`
	Failed       []string    `json:"failed,omitempty"`
	Notified     bool        `json:"notified"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

type Publisher interface {
	PublishRescheduled(ctx context.Context, ev Rescheduled) error
	Close() error
}

type Noop struct{}

func (Noop) PublishRescheduled(context.Context, Rescheduled) error { return nil }
func (Noop) Close() error                                          { return nil }
