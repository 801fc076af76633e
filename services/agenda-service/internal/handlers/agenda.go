package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/md-rashed-zaman/apptdesk/libs/httpx"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/agenda"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
)

const SessionHeader = "X-Session-Id"

type AgendaHandler struct {
	svc    *agenda.Service
	logger *slog.Logger
}

func NewAgendaHandler(svc *agenda.Service, logger *slog.Logger) *AgendaHandler {
	return &AgendaHandler{svc: svc, logger: logger}
}

// Routes mounts the agenda API under the current router.
func (h *AgendaHandler) Routes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/reload", h.Reload)
	r.Post("/expand", h.Expand)
	r.Post("/collapse", h.Collapse)
	r.Post("/drag/start", h.DragStart)
	r.Post("/drag/end", h.DragEnd)
	r.Get("/pending", h.Pending)
	r.Post("/pending/confirm", h.Confirm)
	r.Post("/pending/cancel", h.Cancel)
	r.Delete("/session", h.CloseSession)
}

type dragStartRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type dragEndRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Target        string  `json:"target"`
	DistancePx    float64 `json:"distance_px"`
}

type confirmRequest struct {
	SendNotify bool `json:"send_notify"`
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

func (h *AgendaHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Open(r.Context(), sessionID(r))
	h.respond(w, r, snap, err)
}

func (h *AgendaHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Reload(r.Context(), sessionID(r))
	h.respond(w, r, snap, err)
}

func (h *AgendaHandler) Expand(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Expand(r.Context(), sessionID(r))
	h.respond(w, r, snap, err)
}

func (h *AgendaHandler) Collapse(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Collapse(r.Context(), sessionID(r))
	h.respond(w, r, snap, err)
}

func (h *AgendaHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req dragStartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "appointment_id is required")
		return
	}
	snap, err := h.svc.StartDrag(r.Context(), sessionID(r), req.AppointmentID)
	h.respond(w, r, snap, err)
}

func (h *AgendaHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	var req dragEndRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := h.svc.EndDrag(r.Context(), sessionID(r), agenda.DragEnd{
		AppointmentID: strings.TrimSpace(req.AppointmentID),
		Target:        strings.TrimSpace(req.Target),
		DistancePx:    req.DistancePx,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set(SessionHeader, res.Snapshot.SessionID)
	httpx.WriteJSON(w, http.StatusOK, DragEndResponse{
		Proposed: res.Proposed,
		Reason:   res.Reason,
		Agenda:   toAgendaResponse(h.svc.Clock(), res.Snapshot),
	})
}

func (h *AgendaHandler) Pending(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Pending(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set(SessionHeader, snap.SessionID)
	httpx.WriteJSON(w, http.StatusOK, PendingResponse{Phase: string(snap.Phase), Pending: snap.Pending})
}

func (h *AgendaHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := h.svc.Confirm(r.Context(), sessionID(r), req.SendNotify)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := res.Outcome
	w.Header().Set(SessionHeader, res.Snapshot.SessionID)
	httpx.WriteJSON(w, http.StatusOK, ConfirmResponse{
		Result:   out.Result(),
		Updated:  out.Updated,
		Failed:   out.Failed,
		Notified: out.Notified,
		Reloaded: out.Reloaded,
		Notices:  out.Notices,
		Agenda:   toAgendaResponse(h.svc.Clock(), res.Snapshot),
	})
}

func (h *AgendaHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Cancel(r.Context(), sessionID(r))
	h.respond(w, r, snap, err)
}

func (h *AgendaHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, SessionHeader+" is required")
		return
	}
	if err := h.svc.Close(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AgendaHandler) respond(w http.ResponseWriter, r *http.Request, snap agenda.Snapshot, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set(SessionHeader, snap.SessionID)
	httpx.WriteJSON(w, http.StatusOK, toAgendaResponse(h.svc.Clock(), snap))
}

func (h *AgendaHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, agenda.ErrInvalidSession):
		httpx.WriteError(w, http.StatusBadRequest, "invalid session id")
	case errors.Is(err, agenda.ErrUnknownAppointment):
		httpx.WriteError(w, http.StatusNotFound, "appointment not on today's agenda")
	case errors.Is(err, commit.ErrNoPending):
		httpx.WriteError(w, http.StatusConflict, "no pending change")
	case errors.Is(err, commit.ErrCommitting):
		httpx.WriteError(w, http.StatusConflict, "a change is being committed")
	default:
		h.logger.Error("agenda request failed",
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
