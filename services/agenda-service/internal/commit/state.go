package commit

import (
	"errors"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProposed   Phase = "proposed"
	PhaseCommitting Phase = "committing"
)

var (
	ErrNoPending  = errors.New("commit: no pending transition")
	ErrCommitting = errors.New("commit: commit in progress")
)

// State is the serializable part of the controller: at most one pending transition.
type State struct {
	Phase   Phase             `json:"phase"`
	Pending *model.Transition `json:"pending,omitempty"`
	// Trace of the request that staged Pending; the commit span links back to it.
	Traceparent string `json:"traceparent,omitempty"`
	Tracestate  string `json:"tracestate,omitempty"`
}

// Normalize repairs a state restored from storage. A commit never survives a restart, so a
// persisted Committing phase falls back to Idle.
func (s *State) Normalize() {
	if s.Phase == PhaseProposed && s.Pending != nil {
		return
	}
	s.reset()
}

func (s *State) reset() {
	s.Phase = PhaseIdle
	s.Pending = nil
	s.Traceparent = ""
	s.Tracestate = ""
}
