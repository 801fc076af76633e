// Package commit stages a proposed transition and, on confirmation, applies it to the
// appointment store in a fixed order: updates, then the optional notice, then a reload.
package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	otelx "github.com/md-rashed-zaman/apptdesk/libs/otel"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/metrics"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

const tracerName = "github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"

// Store is the appointment source of truth.
type Store interface {
	ListToday(ctx context.Context, day time.Time) ([]model.Appointment, error)
	UpdateStartTime(ctx context.Context, id string, startsAt time.Time) (model.Appointment, error)
}

// Reschedule is the notice handed to a Notifier after a successful update.
type Reschedule struct {
	AppointmentID string
	Channel       model.Channel
	Recipient     string
	CustomerName  string
	Service       string
	OldLabel      string
	NewLabel      string
	NewStartsAt   time.Time
}

type Notifier interface {
	SendReschedule(ctx context.Context, r Reschedule) error
}

type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
	NoticeSuccess NoticeLevel = "success"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

const (
	MsgUpdateFailed  = "could not update the appointment"
	MsgNotifyFailed  = "update succeeded, message not sent"
	MsgReloadFailed  = "could not reload the agenda"
	MsgMoved         = "appointment rescheduled"
	MsgSwapped       = "appointments swapped"
	MsgCustomerAware = "customer notified"
)

type LegError struct {
	AppointmentID string `json:"appointment_id"`
	Message       string `json:"message"`
}

// Outcome describes what a confirm actually did.
type Outcome struct {
	Transition model.Transition    `json:"transition"`
	Updated    []string            `json:"updated"`
	Failed     []LegError          `json:"failed,omitempty"`
	Notified   bool                `json:"notified"`
	Reloaded   bool                `json:"reloaded"`
	Items      []model.Appointment `json:"-"`
	Notices    []Notice            `json:"notices"`
}

const (
	ResultOK      = "ok"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

func (o Outcome) Result() string {
	switch {
	case len(o.Failed) == 0:
		return ResultOK
	case len(o.Updated) > 0:
		return ResultPartial
	default:
		return ResultFailed
	}
}

type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.AgendaMetrics
	// Timeout bounds a whole confirm (updates, notice and reload). Zero means 30s.
	Timeout time.Duration
	Now     func() time.Time
	NewID   func() string
}

type Controller struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.AgendaMetrics
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
	tracer   trace.Tracer
}

func NewController(store Store, notifier Notifier, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Controller{
		store:    store,
		notifier: notifier,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		timeout:  opts.Timeout,
		now:      opts.Now,
		newID:    opts.NewID,
		tracer:   otel.Tracer(tracerName),
	}
}

// Propose stages t, replacing any earlier proposal. The trace of ctx is kept with the state
// so the eventual commit span links to the gesture that staged it.
func (c *Controller) Propose(ctx context.Context, st *State, t model.Transition) (model.Transition, error) {
	if st.Phase == PhaseCommitting {
		return model.Transition{}, ErrCommitting
	}
	t.ID = c.newID()
	t.ProposedAt = c.now().UTC()
	if st.Pending != nil {
		c.logger.Debug("replacing pending transition", "previous_id", st.Pending.ID, "transition_id", t.ID)
	}
	st.Phase = PhaseProposed
	st.Pending = &t
	proposer := otelx.CaptureTrace(ctx)
	st.Traceparent, st.Tracestate = proposer.Parent, proposer.State
	c.metrics.ObserveProposal(t.Kind())
	return t, nil
}

// Cancel drops the pending transition without touching the store.
func (c *Controller) Cancel(st *State) (model.Transition, error) {
	switch st.Phase {
	case PhaseCommitting:
		return model.Transition{}, ErrCommitting
	case PhaseProposed:
		t := *st.Pending
		st.reset()
		return t, nil
	}
	return model.Transition{}, ErrNoPending
}

// Confirm applies the pending transition. Once started it runs to completion even if ctx
// is cancelled; only the controller timeout bounds it. The returned error reports state
// misuse only; store and notifier failures surface as notices in the Outcome.
func (c *Controller) Confirm(ctx context.Context, st *State, day time.Time, sendNotify bool) (Outcome, error) {
	switch st.Phase {
	case PhaseCommitting:
		return Outcome{}, ErrCommitting
	case PhaseProposed:
	default:
		return Outcome{}, ErrNoPending
	}
	t := *st.Pending
	proposal := otelx.StoredTrace{Parent: st.Traceparent, State: st.Tracestate}.Link()
	st.Phase = PhaseCommitting
	defer st.reset()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "agenda.commit",
		trace.WithAttributes(
			attribute.String("transition.id", t.ID),
			attribute.String("transition.kind", t.Kind()),
			attribute.Bool("notify", sendNotify),
		),
		trace.WithLinks(proposal),
	)
	defer span.End()

	start := c.now()
	out := Outcome{Transition: t}
	primaryOK := false
	for i, leg := range t.Legs() {
		if err := c.updateLeg(ctx, leg); err != nil {
			out.Failed = append(out.Failed, LegError{AppointmentID: leg.AppointmentID, Message: remoteMessage(err)})
			continue
		}
		out.Updated = append(out.Updated, leg.AppointmentID)
		if i == 0 {
			primaryOK = true
		}
	}
	if len(out.Failed) > 0 {
		msg := MsgUpdateFailed
		if detail := out.Failed[0].Message; detail != "" {
			msg += ": " + detail
		}
		out.Notices = append(out.Notices, Notice{Level: NoticeError, Message: msg})
		span.SetStatus(codes.Error, MsgUpdateFailed)
	} else if t.IsSwap() {
		out.Notices = append(out.Notices, Notice{Level: NoticeSuccess, Message: MsgSwapped})
	} else {
		out.Notices = append(out.Notices, Notice{Level: NoticeSuccess, Message: MsgMoved})
	}

	if sendNotify && primaryOK {
		if n, attempted := c.notify(ctx, t); attempted {
			out.Notified = n
			if n {
				out.Notices = append(out.Notices, Notice{Level: NoticeSuccess, Message: MsgCustomerAware})
			} else {
				out.Notices = append(out.Notices, Notice{Level: NoticeWarning, Message: MsgNotifyFailed})
			}
		}
	}

	items, err := c.Reload(ctx, day)
	if err != nil {
		out.Notices = append(out.Notices, Notice{Level: NoticeError, Message: MsgReloadFailed})
	} else {
		out.Items = items
		out.Reloaded = true
	}

	c.metrics.ObserveCommit(out.Result(), c.now().Sub(start))
	c.logger.Info("transition committed",
		"transition_id", t.ID,
		"kind", t.Kind(),
		"result", out.Result(),
		"updated", len(out.Updated),
		"failed", len(out.Failed),
		"notified", out.Notified,
		"reloaded", out.Reloaded,
	)
	return out, nil
}

// Reload reads the day's appointments from the store.
func (c *Controller) Reload(ctx context.Context, day time.Time) ([]model.Appointment, error) {
	ctx, span := c.tracer.Start(ctx, "agenda.reload")
	defer span.End()
	items, err := c.store.ListToday(ctx, day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		c.logger.Error("agenda reload failed", "err", err)
		return nil, fmt.Errorf("commit: reload: %w", err)
	}
	span.SetAttributes(attribute.Int("appointments", len(items)))
	return items, nil
}

func (c *Controller) updateLeg(ctx context.Context, leg model.Leg) error {
	ctx, span := c.tracer.Start(ctx, "agenda.update_start_time",
		trace.WithAttributes(attribute.String("appointment.id", leg.AppointmentID)),
	)
	defer span.End()
	_, err := c.store.UpdateStartTime(ctx, leg.AppointmentID, leg.NewStartsAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		c.logger.Error("appointment update failed",
			"appointment_id", leg.AppointmentID,
			"new_starts_at", leg.NewStartsAt,
			"err", err,
		)
	}
	return err
}

// notify reports (sent, attempted).
func (c *Controller) notify(ctx context.Context, t model.Transition) (bool, bool) {
	channel, recipient := t.Contact()
	if channel == model.ChannelNone || c.notifier == nil {
		return false, false
	}
	ctx, span := c.tracer.Start(ctx, "agenda.notify",
		trace.WithAttributes(attribute.String("channel", string(channel))),
	)
	defer span.End()
	err := c.notifier.SendReschedule(ctx, Reschedule{
		AppointmentID: t.Primary.AppointmentID,
		Channel:       channel,
		Recipient:     recipient,
		CustomerName:  t.CustomerName,
		Service:       t.Service,
		OldLabel:      t.Primary.OldLabel,
		NewLabel:      t.Primary.NewLabel,
		NewStartsAt:   t.Primary.NewStartsAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notify failed")
		c.logger.Warn("reschedule notice failed", "appointment_id", t.Primary.AppointmentID, "channel", channel, "err", err)
		c.metrics.ObserveNotification("failed")
		return false, true
	}
	c.metrics.ObserveNotification("sent")
	return true, true
}

func remoteMessage(err error) string {
	var re *model.RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
