// Package agenda owns operator sessions and drives the grid, drag and commit components
// on their behalf.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/drag"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/events"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
)

var ErrUnknownAppointment = errors.New("agenda: unknown appointment")

type Config struct {
	Clock           bizclock.Clock
	Layout          slots.Layout
	DragThresholdPx float64
	Now             func() time.Time
	NewSessionID    func() string
}

type Service struct {
	clock     bizclock.Clock
	builder   slots.Builder
	interp    drag.Interpreter
	layout    slots.Layout
	threshold float64
	now       func() time.Time
	newID     func() string

	ctrl     *commit.Controller
	sessions SessionStore
	events   events.Publisher
	logger   *slog.Logger
	locks    *keyedMutex
}

func NewService(cfg Config, ctrl *commit.Controller, sessions SessionStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewSessionID == nil {
		cfg.NewSessionID = uuid.NewString
	}
	if cfg.DragThresholdPx <= 0 {
		cfg.DragThresholdPx = drag.DefaultThresholdPx
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		clock:     cfg.Clock,
		builder:   slots.NewBuilder(cfg.Clock, cfg.Layout),
		interp:    drag.NewInterpreter(cfg.Clock, cfg.Layout),
		layout:    cfg.Layout,
		threshold: cfg.DragThresholdPx,
		now:       cfg.Now,
		newID:     cfg.NewSessionID,
		ctrl:      ctrl,
		sessions:  sessions,
		events:    publisher,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// Snapshot is what a caller renders after any operation.
type Snapshot struct {
	SessionID    string            `json:"session_id"`
	Day          string            `json:"day"`
	Phase        commit.Phase      `json:"phase"`
	Pending      *model.Transition `json:"pending,omitempty"`
	ActiveDragID string            `json:"active_drag_id,omitempty"`
	Grid         slots.Grid        `json:"grid"`
	Hidden       int               `json:"hidden"`
}

type DragEnd struct {
	AppointmentID string
	Target        string
	DistancePx    float64
}

type DragResult struct {
	Proposed *model.Transition `json:"proposed,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Snapshot Snapshot          `json:"agenda"`
}

type ConfirmResult struct {
	Outcome  commit.Outcome `json:"outcome"`
	Snapshot Snapshot       `json:"agenda"`
}

func (s *Service) Layout() slots.Layout {
	return s.layout
}

func (s *Service) Clock() bizclock.Clock {
	return s.clock
}

// Open returns the session's agenda, creating the session (and loading today's items)
// when it does not exist yet. An empty id mints a new one.
func (s *Service) Open(ctx context.Context, id string) (Snapshot, error) {
	return s.with(ctx, id, func(*Session) error { return nil })
}

func (s *Service) Reload(ctx context.Context, id string) (Snapshot, error) {
	return s.with(ctx, id, func(sess *Session) error {
		return s.reload(ctx, sess)
	})
}

func (s *Service) Expand(ctx context.Context, id string) (Snapshot, error) {
	return s.with(ctx, id, func(sess *Session) error {
		sess.View.Expand(s.layout)
		return nil
	})
}

func (s *Service) Collapse(ctx context.Context, id string) (Snapshot, error) {
	return s.with(ctx, id, func(sess *Session) error {
		sess.View.Collapse()
		return nil
	})
}

func (s *Service) StartDrag(ctx context.Context, id, appointmentID string) (Snapshot, error) {
	return s.with(ctx, id, func(sess *Session) error {
		if _, ok := model.FindAppointment(sess.View.Items, appointmentID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAppointment, appointmentID)
		}
		sess.View.StartDrag(appointmentID)
		return nil
	})
}

// EndDrag finishes a gesture. Short gestures are clicks. A drop that resolves to a real
// time change becomes the pending transition, replacing any earlier one.
func (s *Service) EndDrag(ctx context.Context, id string, in DragEnd) (DragResult, error) {
	var res DragResult
	snap, err := s.with(ctx, id, func(sess *Session) error {
		active := sess.View.EndDrag()
		dragged := in.AppointmentID
		if dragged == "" {
			dragged = active
		}
		if !drag.Activated(in.DistancePx, s.threshold) {
			res.Reason = drag.ReasonBelowThreshold
			return nil
		}
		out := s.interp.Interpret(drag.Drop{
			DraggedID: dragged,
			Target:    drag.ParseDropTarget(in.Target),
			Items:     sess.View.Items,
			Day:       s.sessionDay(sess),
		})
		if out.NoOp() {
			res.Reason = out.Reason
			s.logger.Debug("drop ignored", "session_id", sess.ID, "appointment_id", dragged, "reason", out.Reason)
			return nil
		}
		t, err := s.ctrl.Propose(ctx, &sess.Commit, *out.Transition)
		if err != nil {
			return err
		}
		res.Proposed = &t
		return nil
	})
	res.Snapshot = snap
	return res, err
}

func (s *Service) Pending(ctx context.Context, id string) (Snapshot, error) {
	return s.Open(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id string) (Snapshot, error) {
	return s.with(ctx, id, func(sess *Session) error {
		_, err := s.ctrl.Cancel(&sess.Commit)
		return err
	})
}

// Confirm commits the pending transition and replaces the session's items with the
// store's current view of the day.
func (s *Service) Confirm(ctx context.Context, id string, sendNotify bool) (ConfirmResult, error) {
	var res ConfirmResult
	snap, err := s.with(ctx, id, func(sess *Session) error {
		out, err := s.ctrl.Confirm(ctx, &sess.Commit, s.sessionDay(sess), sendNotify)
		if err != nil {
			return err
		}
		if out.Reloaded {
			sess.View.Replace(out.Items)
		}
		res.Outcome = out
		s.publish(ctx, sess.ID, out)
		return nil
	})
	res.Snapshot = snap
	return res, err
}

// Close forgets a session.
func (s *Service) Close(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

func (s *Service) with(ctx context.Context, id string, fn func(*Session) error) (Snapshot, error) {
	if id == "" {
		id = s.newID()
	}
	if !ValidSessionID(id) {
		return Snapshot{}, ErrInvalidSession
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	fnErr := fn(sess)
	sess.UpdatedAt = s.now().UTC()
	// A confirm has already reached the store; a caller that went away must not leave the
	// session holding the consumed proposal.
	if err := s.sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
		return Snapshot{}, fmt.Errorf("agenda: save session: %w", err)
	}
	return s.snapshot(sess), fnErr
}

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	sess, err := s.sessions.Load(ctx, id)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		sess = &Session{ID: id, Commit: commit.State{Phase: commit.PhaseIdle}}
		if err := s.reload(ctx, sess); err != nil {
			return nil, err
		}
		s.logger.Info("agenda session opened", "session_id", id, "day", sess.Day, "appointments", len(sess.View.Items))
		return sess, nil
	case err != nil:
		return nil, fmt.Errorf("agenda: load session: %w", err)
	}
	sess.Commit.Normalize()
	if today := s.clock.DateString(s.now()); sess.Day != today {
		s.logger.Info("agenda day rolled over", "session_id", id, "from", sess.Day, "to", today)
		if sess.Commit.Phase == commit.PhaseProposed {
			_, _ = s.ctrl.Cancel(&sess.Commit)
		}
		sess.View.ActiveDragID = ""
		if err := s.reload(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (s *Service) reload(ctx context.Context, sess *Session) error {
	now := s.now()
	items, err := s.ctrl.Reload(ctx, now)
	if err != nil {
		return err
	}
	sess.Day = s.clock.DateString(now)
	sess.View.Replace(items)
	return nil
}

func (s *Service) sessionDay(sess *Session) time.Time {
	day, err := s.clock.ParseDate(sess.Day)
	if err != nil {
		return s.clock.Today(s.now())
	}
	return day
}

func (s *Service) snapshot(sess *Session) Snapshot {
	grid := s.builder.Build(sess.View.Items, sess.View.ExpansionLevel)
	return Snapshot{
		SessionID:    sess.ID,
		Day:          sess.Day,
		Phase:        sess.Commit.Phase,
		Pending:      sess.Commit.Pending,
		ActiveDragID: sess.View.ActiveDragID,
		Grid:         grid,
		Hidden:       grid.Hidden(),
	}
}

func (s *Service) publish(ctx context.Context, sessionID string, out commit.Outcome) {
	if len(out.Updated) == 0 {
		return
	}
	ev := events.Rescheduled{
		TransitionID: out.Transition.ID,
		Kind:         out.Transition.Kind(),
		SessionID:    sessionID,
		Legs:         out.Transition.Legs(),
		Updated:      out.Updated,
		Notified:     out.Notified,
		OccurredAt:   s.now().UTC(),
	}
	for _, f := range out.Failed {
		ev.Failed = append(ev.Failed, f.AppointmentID)
	}
	if err := s.events.PublishRescheduled(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Error("reschedule event publish failed", "transition_id", ev.TransitionID, "err", err)
	}
}
