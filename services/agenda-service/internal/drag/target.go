package drag

import (
	"strings"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
)

type TargetKind string

const (
	TargetNone        TargetKind = ""
	TargetSlot        TargetKind = "slot"
	TargetAppointment TargetKind = "appointment"
)

// DropTarget is where a drag ended. For slots ID holds the "HH:MM" label.
type DropTarget struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// ParseDropTarget classifies a raw droppable id: "slot:HH:MM" is a slot, anything else
// non-empty is an appointment id.
func ParseDropTarget(raw string) DropTarget {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DropTarget{}
	}
	if label, ok := slots.ParseSlotID(raw); ok {
		return DropTarget{Kind: TargetSlot, ID: label}
	}
	return DropTarget{Kind: TargetAppointment, ID: raw}
}

// DefaultThresholdPx is the pointer distance below which a gesture counts as a click.
const DefaultThresholdPx = 8.0

// Activated reports whether a gesture travelled far enough to count as a drag.
func Activated(distancePx, thresholdPx float64) bool {
	return distancePx >= thresholdPx
}
