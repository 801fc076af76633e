package handlers

import (
	"time"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/agenda"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

type AppointmentItem struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	StartsAt      string `json:"starts_at"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Service       string `json:"service,omitempty"`
	Instructor    string `json:"instructor,omitempty"`
	Status        string `json:"status"`
}

type SlotItem struct {
	Index int               `json:"index"`
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Items []AppointmentItem `json:"items"`
}

type AgendaResponse struct {
	SessionID      string            `json:"session_id"`
	Day            string            `json:"day"`
	Phase          string            `json:"phase"`
	ExpansionLevel int               `json:"expansion_level"`
	HasMore        bool              `json:"has_more"`
	CanCollapse    bool              `json:"can_collapse"`
	Hidden         int               `json:"hidden"`
	ActiveDragID   string            `json:"active_drag_id,omitempty"`
	Pending        *model.Transition `json:"pending,omitempty"`
	Slots          []SlotItem        `json:"slots"`
}

type DragEndResponse struct {
	Proposed *model.Transition `json:"proposed,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Agenda   AgendaResponse    `json:"agenda"`
}

type ConfirmResponse struct {
	Result   string            `json:"result"`
	Updated  []string          `json:"updated"`
	Failed   []commit.LegError `json:"failed,omitempty"`
	Notified bool              `json:"notified"`
	Reloaded bool              `json:"reloaded"`
	Notices  []commit.Notice   `json:"notices"`
	Agenda   AgendaResponse    `json:"agenda"`
}

type PendingResponse struct {
	Phase   string            `json:"phase"`
	Pending *model.Transition `json:"pending"`
}

func toAgendaResponse(clock bizclock.Clock, s agenda.Snapshot) AgendaResponse {
	out := AgendaResponse{
		SessionID:      s.SessionID,
		Day:            s.Day,
		Phase:          string(s.Phase),
		ExpansionLevel: s.Grid.Level,
		HasMore:        s.Grid.HasMore,
		CanCollapse:    s.Grid.CanCollapse,
		Hidden:         s.Hidden,
		ActiveDragID:   s.ActiveDragID,
		Pending:        s.Pending,
		Slots:          make([]SlotItem, 0, len(s.Grid.Slots)),
	}
	for _, slot := range s.Grid.Slots {
		item := SlotItem{Index: slot.Index, ID: slot.ID, Label: slot.Label, Items: make([]AppointmentItem, 0, len(slot.Items))}
		for _, a := range slot.Items {
			item.Items = append(item.Items, AppointmentItem{
				ID:            a.ID,
				Label:         clock.Label(a.StartsAt),
				StartsAt:      a.StartsAt.UTC().Format(time.RFC3339),
				CustomerName:  a.CustomerName,
				CustomerPhone: a.CustomerPhone,
				CustomerEmail: a.CustomerEmail,
				Service:       a.ServicePresentation,
				Instructor:    a.InstructorName,
				Status:        string(a.Status),
			})
		}
		out.Slots = append(out.Slots, item)
	}
	return out
}
