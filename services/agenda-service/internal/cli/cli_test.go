package cli

import (
	"bytes"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/apptdesk/libs/grpcx"
	"github.com/md-rashed-zaman/apptdesk/libs/runtime"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/agenda"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/handlers"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/sessions"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/storage"
)

var utcMinus3 = time.FixedZone("UTC-3", -3*3600)

func newAgendaServer(t *testing.T) *httptest.Server {
	t.Helper()
	clock := bizclock.New(utcMinus3)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, utcMinus3)
	store := storage.NewMemoryRepository(clock,
		model.Appointment{ID: "a", StartsAt: now.Add(2 * time.Hour), CustomerName: "Ana", ServicePresentation: "Pilates", Status: model.StatusConfirmed},
		model.Appointment{ID: "b", StartsAt: now.Add(3 * time.Hour), CustomerName: "Bruno", Status: model.StatusScheduled},
		model.Appointment{ID: "late", StartsAt: now.Add(11 * time.Hour), CustomerName: "Lia", Status: model.StatusScheduled},
	)
	logger := runtime.NopLogger()
	ctrl := commit.NewController(store, nil, commit.Options{Logger: logger, Now: func() time.Time { return now }})
	svc := agenda.NewService(agenda.Config{
		Clock:  clock,
		Layout: slots.DefaultLayout(),
		Now:    func() time.Time { return now },
	}, ctrl, sessions.NewMemory(), nil, logger)
	srv := httptest.NewServer(handlers.NewRouter(handlers.RouterConfig{
		Logger: logger,
		Agenda: handlers.NewAgendaHandler(svc, logger),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGridMintsSession(t *testing.T) {
	srv := newAgendaServer(t)
	out, errOut, err := runCLI(t, "--server", srv.URL, "grid")
	if err != nil {
		t.Fatalf("grid: %v\n%s", err, errOut)
	}
	if !strings.Contains(errOut, "session: ") {
		t.Fatalf("expected minted session hint, got %q", errOut)
	}
	if !strings.Contains(out, "Ana (Pilates)") || !strings.Contains(out, "Bruno") {
		t.Fatalf("expected appointments in grid:\n%s", out)
	}
	if strings.Contains(out, "Lia") || !strings.Contains(out, "more slots hidden") {
		t.Fatalf("expected 19:00 to be hidden behind expansion:\n%s", out)
	}
}

func TestMoveConfirmFlow(t *testing.T) {
	srv := newAgendaServer(t)
	base := []string{"--server", srv.URL, "--session", "desk-1"}

	out, errOut, err := runCLI(t, append(base, "move", "a", "9:00")...)
	if err != nil {
		t.Fatalf("move: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "a  10:00 -> 09:00") {
		t.Fatalf("expected staged move, got:\n%s", out)
	}

	out, _, err = runCLI(t, append(base, "pending")...)
	if err != nil || !strings.Contains(out, "a  10:00 -> 09:00") {
		t.Fatalf("pending: %v\n%s", err, out)
	}

	out, errOut, err = runCLI(t, append(base, "confirm")...)
	if err != nil {
		t.Fatalf("confirm: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "success: appointment rescheduled") {
		t.Fatalf("expected success notice, got:\n%s", out)
	}

	out, _, _ = runCLI(t, append(base, "cancel")...)
	if !strings.Contains(out, "no pending change") {
		t.Fatalf("expected nothing to cancel, got:\n%s", out)
	}

	_, errOut, err = runCLI(t, append(base, "confirm")...)
	if err == nil || !strings.Contains(errOut, "status 409") {
		t.Fatalf("expected conflict confirming nothing, got %v %q", err, errOut)
	}
}

func TestSwapAndSameSlotNoOp(t *testing.T) {
	srv := newAgendaServer(t)
	base := []string{"--server", srv.URL, "--session", "desk-2"}

	out, _, err := runCLI(t, append(base, "move", "a", "10:00")...)
	if err != nil || !strings.Contains(out, "nothing to change (same_slot)") {
		t.Fatalf("expected same_slot no-op, got %v\n%s", err, out)
	}
	out, _, err = runCLI(t, append(base, "swap", "a", "b")...)
	if err != nil || !strings.Contains(out, "staged swap") || !strings.Contains(out, "b  11:00 -> 10:00") {
		t.Fatalf("expected staged swap, got %v\n%s", err, out)
	}
	out, _, err = runCLI(t, append(base, "--json", "expand")...)
	if err != nil || !strings.Contains(out, `"expansion_level": 1`) {
		t.Fatalf("expected JSON agenda after expand, got %v\n%s", err, out)
	}
}

func TestMoveRejectsBadTime(t *testing.T) {
	_, errOut, err := runCLI(t, "--server", "http://127.0.0.1:0", "move", "a", "25:99")
	if err == nil || errOut == "" {
		t.Fatalf("expected invalid time error, got %v", err)
	}
}

func TestStatusOverGRPC(t *testing.T) {
	srv, hs := grpcx.NewHealthServer(runtime.NopLogger())
	hs.SetServingStatus("agenda-service", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	out, errOut, err := runCLI(t, "--grpc", lis.Addr().String(), "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "SERVING") {
		t.Fatalf("expected SERVING, got %q", out)
	}
}
