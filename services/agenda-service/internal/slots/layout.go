package slots

import (
	"errors"
	"fmt"
	"strings"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
)

var (
	ErrInvalidLayout = errors.New("slots: invalid layout")
	ErrUnknownSlot   = errors.New("slots: unknown slot")
)

const slotIDPrefix = "slot:"

// Layout describes the business-day grid: Count slots of Step minutes starting at DayStart.
// BaseVisible slots show at expansion level 0 and each level reveals ExpandStep more.
type Layout struct {
	DayStart    bizclock.WallTime `yaml:"-" json:"day_start"`
	Step        int               `yaml:"slot_minutes" json:"slot_minutes"`
	Count       int               `yaml:"slot_count" json:"slot_count"`
	BaseVisible int               `yaml:"visible_slots" json:"visible_slots"`
	ExpandStep  int               `yaml:"expand_step" json:"expand_step"`
}

func DefaultLayout() Layout {
	return Layout{
		DayStart:    bizclock.WallTime{Hour: 8},
		Step:        30,
		Count:       24,
		BaseVisible: 12,
		ExpandStep:  4,
	}
}

func (l Layout) Validate() error {
	switch {
	case l.Step <= 0 || 24*60%l.Step != 0:
		return fmt.Errorf("%w: slot minutes %d", ErrInvalidLayout, l.Step)
	case l.DayStart.Minutes()%l.Step != 0:
		return fmt.Errorf("%w: day start %s is not aligned to %d minutes", ErrInvalidLayout, l.DayStart, l.Step)
	case l.Count <= 0 || l.DayStart.Minutes()+l.Count*l.Step > 24*60:
		return fmt.Errorf("%w: %d slots from %s overflow the day", ErrInvalidLayout, l.Count, l.DayStart)
	case l.BaseVisible <= 0 || l.BaseVisible > l.Count:
		return fmt.Errorf("%w: visible slots %d", ErrInvalidLayout, l.BaseVisible)
	case l.ExpandStep <= 0:
		return fmt.Errorf("%w: expand step %d", ErrInvalidLayout, l.ExpandStep)
	}
	return nil
}

// Window is the number of visible slots at the given expansion level.
func (l Layout) Window(level int) int {
	if level < 0 {
		level = 0
	}
	n := l.BaseVisible + l.ExpandStep*level
	if n > l.Count {
		return l.Count
	}
	return n
}

// MaxLevel is the smallest level whose window covers every slot.
func (l Layout) MaxLevel() int {
	if l.BaseVisible >= l.Count {
		return 0
	}
	return (l.Count - l.BaseVisible + l.ExpandStep - 1) / l.ExpandStep
}

// SlotTime returns the wall time at which slot i starts.
func (l Layout) SlotTime(i int) bizclock.WallTime {
	return bizclock.FromMinutes(l.DayStart.Minutes() + i*l.Step)
}

// IndexOf maps a wall time to its slot by nearest rounding, clamped to the grid.
func (l Layout) IndexOf(w bizclock.WallTime) int {
	idx := (bizclock.Round(w, l.Step) - l.DayStart.Minutes()) / l.Step
	if idx < 0 {
		return 0
	}
	if idx >= l.Count {
		return l.Count - 1
	}
	return idx
}

// LookupLabel returns the index of the slot labelled "HH:MM".
func (l Layout) LookupLabel(label string) (int, error) {
	w, err := bizclock.ParseWallTime(label)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}
	off := w.Minutes() - l.DayStart.Minutes()
	if off < 0 || off%l.Step != 0 || off/l.Step >= l.Count {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}
	return off / l.Step, nil
}

func SlotID(label string) string {
	return slotIDPrefix + label
}

// ParseSlotID returns the label carried by a slot id and whether id is a slot id at all.
func ParseSlotID(id string) (string, bool) {
	label, ok := strings.CutPrefix(id, slotIDPrefix)
	if !ok || label == "" {
		return "", false
	}
	return label, true
}
