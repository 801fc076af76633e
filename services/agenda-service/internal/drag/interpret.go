// Package drag turns a finished drag gesture into a proposed time change. It never touches
// the store; effecting the change belongs to the commit controller.
package drag

import (
	"time"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
)

// Reasons reported when a drop produces no transition.
const (
	ReasonNoTarget       = "no_target"
	ReasonUnknownDragged = "unknown_dragged"
	ReasonUnknownTarget  = "unknown_target"
	ReasonSameSlot       = "same_slot"
	ReasonSelf           = "self"
	ReasonSameTime       = "same_time"
	ReasonBelowThreshold = "below_threshold"
)

type Drop struct {
	DraggedID string
	Target    DropTarget
	Items     []model.Appointment
	// Day is any instant on the business day new times are built on.
	Day time.Time
}

// Result carries either a transition or the reason there is none.
type Result struct {
	Transition *model.Transition
	Reason     string
}

func (r Result) NoOp() bool {
	return r.Transition == nil
}

type Interpreter struct {
	clock  bizclock.Clock
	layout slots.Layout
}

func NewInterpreter(clock bizclock.Clock, layout slots.Layout) Interpreter {
	return Interpreter{clock: clock, layout: layout}
}

// Interpret resolves a drop. The returned transition has no ID or ProposedAt yet.
func (in Interpreter) Interpret(d Drop) Result {
	if d.Target.Kind == TargetNone || d.Target.ID == "" {
		return Result{Reason: ReasonNoTarget}
	}
	dragged, ok := model.FindAppointment(d.Items, d.DraggedID)
	if !ok {
		return Result{Reason: ReasonUnknownDragged}
	}
	switch d.Target.Kind {
	case TargetSlot:
		return in.toSlot(dragged, d.Target.ID, d.Day)
	case TargetAppointment:
		if d.Target.ID == dragged.ID {
			return Result{Reason: ReasonSelf}
		}
		other, ok := model.FindAppointment(d.Items, d.Target.ID)
		if !ok {
			return Result{Reason: ReasonUnknownTarget}
		}
		return in.swap(dragged, other, d.Day)
	}
	return Result{Reason: ReasonUnknownTarget}
}

func (in Interpreter) rounded(a model.Appointment) int {
	return bizclock.Round(in.clock.WallClock(a.StartsAt), in.layout.Step)
}

func (in Interpreter) toSlot(a model.Appointment, label string, day time.Time) Result {
	idx, err := in.layout.LookupLabel(label)
	if err != nil {
		return Result{Reason: ReasonUnknownTarget}
	}
	target := in.layout.SlotTime(idx)
	if in.rounded(a) == target.Minutes() {
		return Result{Reason: ReasonSameSlot}
	}
	newAt := in.clock.BuildInstant(day, target.Hour, target.Minute)
	t := in.base(a)
	t.Primary = model.Leg{
		AppointmentID: a.ID,
		OldLabel:      in.clock.Label(a.StartsAt),
		NewLabel:      target.String(),
		OldStartsAt:   a.StartsAt,
		NewStartsAt:   newAt,
	}
	return Result{Transition: &t}
}

// swap gives a the start of b and b the start of a, both on day.
func (in Interpreter) swap(a, b model.Appointment, day time.Time) Result {
	if in.rounded(a) == in.rounded(b) {
		return Result{Reason: ReasonSameTime}
	}
	wa := in.clock.WallClock(a.StartsAt)
	wb := in.clock.WallClock(b.StartsAt)
	t := in.base(a)
	t.Primary = model.Leg{
		AppointmentID: a.ID,
		OldLabel:      wa.String(),
		NewLabel:      wb.String(),
		OldStartsAt:   a.StartsAt,
		NewStartsAt:   in.onDay(b.StartsAt, day),
	}
	t.Secondary = &model.Leg{
		AppointmentID: b.ID,
		OldLabel:      wb.String(),
		NewLabel:      wa.String(),
		OldStartsAt:   b.StartsAt,
		NewStartsAt:   in.onDay(a.StartsAt, day),
	}
	return Result{Transition: &t}
}

// onDay returns instant unchanged when it already falls on day, otherwise its wall time
// rebuilt on day with seconds kept.
func (in Interpreter) onDay(instant, day time.Time) time.Time {
	if in.clock.SameDay(instant, day) {
		return instant
	}
	w := in.clock.WallClock(instant)
	rebuilt := in.clock.BuildInstant(day, w.Hour, w.Minute)
	return rebuilt.Add(time.Duration(instant.In(in.clock.Location()).Second()) * time.Second)
}

func (in Interpreter) base(a model.Appointment) model.Transition {
	return model.Transition{
		CustomerName:  a.CustomerName,
		CustomerPhone: a.CustomerPhone,
		CustomerEmail: a.CustomerEmail,
		Service:       a.ServicePresentation,
	}
}
