package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/agenda"
)

const (
	DefaultKeyPrefix = "agenda:session:"
	DefaultTTL       = 12 * time.Hour
)

// Redis stores each session as JSON under prefix+id, refreshing the TTL on every save.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(id string) string {
	return r.prefix + id
}

func (r *Redis) Load(ctx context.Context, id string) (*agenda.Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, agenda.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessions: get: %w", err)
	}
	var s agenda.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("sessions: decode %s: %w", id, err)
	}
	return &s, nil
}

func (r *Redis) Save(ctx context.Context, s *agenda.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key(s.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("sessions: set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}

// ReadyCheck pings redis.
func ReadyCheck(rdb redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
