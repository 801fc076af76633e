package agenda

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
)

var (
	ErrSessionNotFound = errors.New("agenda: session not found")
	ErrInvalidSession  = errors.New("agenda: invalid session id")
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Session is everything an operator's agenda needs between requests. It round-trips
// through JSON so it can live in redis.
type Session struct {
	ID        string       `json:"id"`
	Day       string       `json:"day"`
	View      ViewState    `json:"view"`
	Commit    commit.State `json:"commit"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SessionStore persists sessions. Load returns ErrSessionNotFound for unknown ids.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
