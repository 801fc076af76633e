package agenda

import (
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
)

// ViewState is the operator-facing projection of today's agenda.
type ViewState struct {
	// Items mirrors the store. It is replaced wholesale on reload and never patched.
	Items          []model.Appointment `json:"items"`
	ExpansionLevel int                 `json:"expansion_level"`
	ActiveDragID   string              `json:"active_drag_id,omitempty"`
}

// Expand reveals one more block of slots unless every slot is already visible.
func (v *ViewState) Expand(layout slots.Layout) bool {
	if v.ExpansionLevel >= layout.MaxLevel() {
		return false
	}
	v.ExpansionLevel++
	return true
}

func (v *ViewState) Collapse() {
	v.ExpansionLevel = 0
}

func (v *ViewState) StartDrag(id string) {
	v.ActiveDragID = id
}

// EndDrag clears the active drag whether or not the drop resolved to anything.
func (v *ViewState) EndDrag() string {
	id := v.ActiveDragID
	v.ActiveDragID = ""
	return id
}

func (v *ViewState) Replace(items []model.Appointment) {
	if items == nil {
		items = []model.Appointment{}
	}
	v.Items = items
}
