// Package sessions persists operator agenda sessions.
package sessions

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/agenda"
)

// Memory keeps sessions in process. Values are stored encoded so callers never share
// mutable state with the store.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, id string) (*agenda.Session, error) {
	m.mu.Lock()
	raw, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, agenda.ErrSessionNotFound
	}
	var s agenda.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *Memory) Save(_ context.Context, s *agenda.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.ID] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}
