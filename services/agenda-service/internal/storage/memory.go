package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

// MemoryRepository is an in-process store for demos and tests.
type MemoryRepository struct {
	mu    sync.Mutex
	clock bizclock.Clock
	items map[string]model.Appointment
	// FailUpdates makes UpdateStartTime fail for the listed ids.
	FailUpdates map[string]string
}

func NewMemoryRepository(clock bizclock.Clock, items ...model.Appointment) *MemoryRepository {
	r := &MemoryRepository{clock: clock, items: map[string]model.Appointment{}, FailUpdates: map[string]string{}}
	for _, a := range items {
		r.items[a.ID] = a
	}
	return r
}

func (r *MemoryRepository) Put(a model.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
}

func (r *MemoryRepository) ListToday(_ context.Context, day time.Time) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := r.clock.DayBounds(day)
	items := []model.Appointment{}
	for _, a := range r.items {
		if !a.StartsAt.Before(start) && a.StartsAt.Before(end) {
			items = append(items, a)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartsAt.Equal(items[j].StartsAt) {
			return items[i].StartsAt.Before(items[j].StartsAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *MemoryRepository) UpdateStartTime(_ context.Context, id string, startsAt time.Time) (model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.FailUpdates[id]; ok {
		return model.Appointment{}, &model.RemoteError{Message: msg}
	}
	a, ok := r.items[id]
	if !ok {
		return model.Appointment{}, notFound(id)
	}
	a.StartsAt = startsAt
	r.items[id] = a
	return a, nil
}
