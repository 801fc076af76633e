package commit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/apptdesk/libs/runtime"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

var utcMinus3 = time.FixedZone("UTC-3", -3*3600)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, utcMinus3)
}

// fakeStore records every call in order into a shared log.
type fakeStore struct {
	log      *[]string
	items    map[string]model.Appointment
	failIDs  map[string]error
	listErr  error
	updates  int
	listings int
}

func newFakeStore(log *[]string, items ...model.Appointment) *fakeStore {
	s := &fakeStore{log: log, items: map[string]model.Appointment{}, failIDs: map[string]error{}}
	for _, a := range items {
		s.items[a.ID] = a
	}
	return s
}

func (s *fakeStore) ListToday(_ context.Context, _ time.Time) ([]model.Appointment, error) {
	s.listings++
	*s.log = append(*s.log, "list")
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Appointment
	for _, id := range []string{"a", "b", "c"} {
		if a, ok := s.items[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateStartTime(ctx context.Context, id string, startsAt time.Time) (model.Appointment, error) {
	s.updates++
	*s.log = append(*s.log, "update:"+id)
	if ctx.Err() != nil {
		return model.Appointment{}, ctx.Err()
	}
	if err := s.failIDs[id]; err != nil {
		return model.Appointment{}, err
	}
	a := s.items[id]
	a.StartsAt = startsAt
	s.items[id] = a
	return a, nil
}

type fakeNotifier struct {
	log  *[]string
	err  error
	sent []Reschedule
}

func (n *fakeNotifier) SendReschedule(_ context.Context, r Reschedule) error {
	*n.log = append(*n.log, "notify:"+string(r.Channel))
	n.sent = append(n.sent, r)
	return n.err
}

func newController(store Store, notifier Notifier) *Controller {
	seq := 0
	return NewController(store, notifier, Options{
		Logger: runtime.NopLogger(),
		Now:    func() time.Time { return at(12, 0) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("t%d", seq)
		},
	})
}

func move(id string, from, to time.Time) model.Transition {
	return model.Transition{
		Primary: model.Leg{
			AppointmentID: id,
			OldLabel:      from.Format("15:04"),
			NewLabel:      to.Format("15:04"),
			OldStartsAt:   from,
			NewStartsAt:   to,
		},
		CustomerName:  "Ana",
		CustomerPhone: "+5511999990000",
	}
}

func swap() model.Transition {
	t := move("a", at(10, 0), at(11, 0))
	t.Secondary = &model.Leg{AppointmentID: "b", OldLabel: "11:00", NewLabel: "10:00", OldStartsAt: at(11, 0), NewStartsAt: at(10, 0)}
	return t
}

func seed(log *[]string) *fakeStore {
	return newFakeStore(log,
		model.Appointment{ID: "a", StartsAt: at(10, 0)},
		model.Appointment{ID: "b", StartsAt: at(11, 0)},
	)
}

func TestProposeReplacesPrevious(t *testing.T) {
	var log []string
	c := newController(seed(&log), nil)
	var st State
	first, err := c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	second, _ := c.Propose(context.Background(), &st, move("b", at(11, 0), at(12, 0)))
	if first.ID == second.ID {
		t.Fatal("expected distinct transition ids")
	}
	if st.Phase != PhaseProposed || st.Pending.ID != second.ID {
		t.Fatalf("expected last proposal to win, got %+v", st.Pending)
	}
	if second.ProposedAt.IsZero() {
		t.Fatal("expected ProposedAt to be stamped")
	}
}

func TestProposeKeepsTraceUntilCommit(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var log []string
	c := newController(seed(&log), nil)
	var st State
	_, _ = c.Propose(ctx, &st, move("a", at(10, 0), at(9, 30)))
	if !strings.HasPrefix(st.Traceparent, "00-01000000000000000000000000000000-0200000000000000-") {
		t.Fatalf("expected proposing trace to be kept, got %q", st.Traceparent)
	}
	if _, err := c.Confirm(context.Background(), &st, at(0, 0), false); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if st.Traceparent != "" {
		t.Fatalf("expected trace to be cleared after commit, got %q", st.Traceparent)
	}
}

func TestCancel(t *testing.T) {
	var log []string
	store := seed(&log)
	c := newController(store, nil)
	var st State
	if _, err := c.Cancel(&st); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
	_, _ = c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))
	if _, err := c.Cancel(&st); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if st.Phase != PhaseIdle || st.Pending != nil {
		t.Fatalf("expected idle state, got %+v", st)
	}
	if len(log) != 0 {
		t.Fatalf("cancel must not touch the store: %v", log)
	}
}

func TestConfirmWithoutPending(t *testing.T) {
	var log []string
	c := newController(seed(&log), nil)
	var st State
	if _, err := c.Confirm(context.Background(), &st, at(0, 0), false); !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
	st.Phase = PhaseCommitting
	st.Pending = &model.Transition{}
	if _, err := c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 0))); !errors.Is(err, ErrCommitting) {
		t.Fatalf("expected ErrCommitting, got %v", err)
	}
}

func TestConfirmMoveNoNotify(t *testing.T) {
	var log []string
	store := seed(&log)
	notifier := &fakeNotifier{log: &log}
	c := newController(store, notifier)
	var st State
	_, _ = c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))

	out, err := c.Confirm(context.Background(), &st, at(0, 0), false)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if store.updates != 1 || len(notifier.sent) != 0 || store.listings != 1 {
		t.Fatalf("unexpected calls: updates=%d notices=%d listings=%d", store.updates, len(notifier.sent), store.listings)
	}
	if strings.Join(log, ",") != "update:a,list" {
		t.Fatalf("unexpected order %v", log)
	}
	if out.Result() != ResultOK || !out.Reloaded || out.Notices[0].Message != MsgMoved {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if st.Phase != PhaseIdle || st.Pending != nil {
		t.Fatalf("expected idle after confirm, got %+v", st)
	}
	if !out.Items[0].StartsAt.Equal(at(9, 30)) {
		t.Fatalf("expected reloaded item at 09:30, got %s", out.Items[0].StartsAt)
	}
}

func TestConfirmSwapWithNotify(t *testing.T) {
	var log []string
	store := seed(&log)
	notifier := &fakeNotifier{log: &log}
	c := newController(store, notifier)
	var st State
	_, _ = c.Propose(context.Background(), &st, swap())

	out, err := c.Confirm(context.Background(), &st, at(0, 0), true)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if strings.Join(log, ",") != "update:a,update:b,notify:sms,list" {
		t.Fatalf("unexpected order %v", log)
	}
	if !out.Notified || out.Notices[0].Message != MsgSwapped {
		t.Fatalf("unexpected outcome %+v", out)
	}
	sent := notifier.sent[0]
	if sent.OldLabel != "10:00" || sent.NewLabel != "11:00" || sent.Recipient != "+5511999990000" {
		t.Fatalf("unexpected notice %+v", sent)
	}
}

func TestConfirmUpdateFailureStillReloads(t *testing.T) {
	var log []string
	store := seed(&log)
	store.failIDs["b"] = &model.RemoteError{Message: "slot locked"}
	notifier := &fakeNotifier{log: &log}
	c := newController(store, notifier)
	var st State
	_, _ = c.Propose(context.Background(), &st, swap())

	out, err := c.Confirm(context.Background(), &st, at(0, 0), true)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if out.Result() != ResultPartial {
		t.Fatalf("expected partial result, got %s", out.Result())
	}
	if out.Notices[0].Level != NoticeError || out.Notices[0].Message != MsgUpdateFailed+": slot locked" {
		t.Fatalf("unexpected notice %+v", out.Notices[0])
	}
	if store.listings != 1 || !out.Reloaded {
		t.Fatal("expected a reload after failure")
	}
	// The first leg is not rolled back; the view mirrors whatever the store holds.
	if !out.Items[0].StartsAt.Equal(at(11, 0)) || !out.Items[1].StartsAt.Equal(at(11, 0)) {
		t.Fatalf("expected store truth, got %+v", out.Items)
	}
	if st.Phase != PhaseIdle {
		t.Fatalf("expected idle, got %s", st.Phase)
	}
}

func TestConfirmPrimaryFailureSkipsNotice(t *testing.T) {
	var log []string
	store := seed(&log)
	store.failIDs["a"] = errors.New("boom")
	notifier := &fakeNotifier{log: &log}
	c := newController(store, notifier)
	var st State
	_, _ = c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))

	out, _ := c.Confirm(context.Background(), &st, at(0, 0), true)
	if out.Result() != ResultFailed || len(notifier.sent) != 0 {
		t.Fatalf("expected failure without notice, got %+v", out)
	}
	if out.Notices[0].Message != MsgUpdateFailed {
		t.Fatalf("unexpected notice %q", out.Notices[0].Message)
	}
	if strings.Join(log, ",") != "update:a,list" {
		t.Fatalf("unexpected order %v", log)
	}
}

func TestConfirmNotifyFailureIsSoft(t *testing.T) {
	var log []string
	store := seed(&log)
	notifier := &fakeNotifier{log: &log, err: errors.New("gateway down")}
	c := newController(store, notifier)
	var st State
	_, _ = c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))

	out, _ := c.Confirm(context.Background(), &st, at(0, 0), true)
	if out.Result() != ResultOK || out.Notified {
		t.Fatalf("unexpected outcome %+v", out)
	}
	last := out.Notices[len(out.Notices)-1]
	if last.Level != NoticeWarning || last.Message != MsgNotifyFailed {
		t.Fatalf("unexpected notice %+v", last)
	}
	if store.listings != 1 {
		t.Fatal("expected reload after notice failure")
	}
}

func TestConfirmSurvivesCancelledRequest(t *testing.T) {
	var log []string
	store := seed(&log)
	c := newController(store, nil)
	var st State
	_, _ = c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, _ := c.Confirm(ctx, &st, at(0, 0), false)
	if out.Result() != ResultOK {
		t.Fatalf("expected commit to run despite cancelled request, got %+v", out)
	}
}

func TestConfirmReloadFailure(t *testing.T) {
	var log []string
	store := seed(&log)
	store.listErr = errors.New("db down")
	c := newController(store, nil)
	var st State
	_, _ = c.Propose(context.Background(), &st, move("a", at(10, 0), at(9, 30)))

	out, _ := c.Confirm(context.Background(), &st, at(0, 0), false)
	if out.Reloaded || out.Items != nil {
		t.Fatalf("expected no items after failed reload, got %+v", out)
	}
	if out.Notices[len(out.Notices)-1].Message != MsgReloadFailed {
		t.Fatalf("unexpected notices %+v", out.Notices)
	}
}

func TestStateNormalize(t *testing.T) {
	st := State{Phase: PhaseCommitting, Pending: &model.Transition{ID: "x"}}
	st.Normalize()
	if st.Phase != PhaseIdle || st.Pending != nil {
		t.Fatalf("expected idle, got %+v", st)
	}
	st = State{Phase: PhaseProposed, Pending: &model.Transition{ID: "x"}}
	st.Normalize()
	if st.Phase != PhaseProposed {
		t.Fatal("proposed state should survive")
	}
}
