// Package slots builds the fixed daily timeline and assigns appointments to it.
package slots

import (
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

type Slot struct {
	Index int                 `json:"index"`
	ID    string              `json:"id"`
	Label string              `json:"label"`
	Time  bizclock.WallTime   `json:"-"`
	Items []model.Appointment `json:"items"`
}

type Grid struct {
	// Slots is the visible prefix of All.
	Slots       []Slot `json:"slots"`
	All         []Slot `json:"-"`
	Level       int    `json:"expansion_level"`
	HasMore     bool   `json:"has_more"`
	CanCollapse bool   `json:"can_collapse"`
}

type Builder struct {
	clock  bizclock.Clock
	layout Layout
}

func NewBuilder(clock bizclock.Clock, layout Layout) Builder {
	return Builder{clock: clock, layout: layout}
}

func (b Builder) Layout() Layout {
	return b.layout
}

// IndexFor returns the slot an appointment belongs to.
func (b Builder) IndexFor(a model.Appointment) int {
	return b.layout.IndexOf(b.clock.WallClock(a.StartsAt))
}

// Build lays out every slot of the day and places each item, in input order, into exactly
// one of them. Items outside business hours land in the nearest boundary slot.
func (b Builder) Build(items []model.Appointment, level int) Grid {
	if level < 0 {
		level = 0
	}
	all := make([]Slot, b.layout.Count)
	for i := range all {
		w := b.layout.SlotTime(i)
		all[i] = Slot{
			Index: i,
			ID:    SlotID(w.String()),
			Label: w.String(),
			Time:  w,
			Items: []model.Appointment{},
		}
	}
	for _, a := range items {
		i := b.IndexFor(a)
		all[i].Items = append(all[i].Items, a)
	}

	window := b.layout.Window(level)
	hasMore := window < b.layout.Count
	for _, s := range all[window:] {
		if len(s.Items) > 0 {
			hasMore = true
			break
		}
	}
	return Grid{
		Slots:       all[:window],
		All:         all,
		Level:       level,
		HasMore:     hasMore,
		CanCollapse: level > 0,
	}
}

// Hidden counts items placed in slots outside the visible window.
func (g Grid) Hidden() int {
	n := 0
	for _, s := range g.All[len(g.Slots):] {
		n += len(s.Items)
	}
	return n
}
