// Package bizclock converts between absolute instants and wall-clock time in the business
// timezone. Nothing here consults the host's local zone.
package bizclock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultZone = "America/Sao_Paulo"
	// Fallback offset when the tz database is unavailable on the host.
	fallbackOffset = -3 * 60 * 60
)

var ErrInvalidWallTime = errors.New("bizclock: invalid wall time")

// LoadLocation resolves name from the tz database and falls back to a fixed UTC-3 zone.
// The bool reports whether the fallback was used.
func LoadLocation(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("UTC-3", fallbackOffset), true
	}
	return loc, false
}

type WallTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (w WallTime) Minutes() int {
	return w.Hour*60 + w.Minute
}

func (w WallTime) String() string {
	return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute)
}

// FromMinutes converts minutes since midnight back into a wall time.
func FromMinutes(m int) WallTime {
	return WallTime{Hour: m / 60, Minute: m % 60}
}

// Round snaps w to the nearest multiple of step minutes. Exact midpoints round up. The
// result is expressed in minutes since midnight and may reach 24:00.
func Round(w WallTime, step int) int {
	if step <= 0 {
		return w.Minutes()
	}
	return (w.Minutes() + step/2) / step * step
}

// ParseWallTime parses "HH:MM" (24h).
func ParseWallTime(s string) (WallTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return WallTime{}, fmt.Errorf("%w: %q", ErrInvalidWallTime, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return WallTime{}, fmt.Errorf("%w: %q", ErrInvalidWallTime, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return WallTime{}, fmt.Errorf("%w: %q", ErrInvalidWallTime, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return WallTime{}, fmt.Errorf("%w: %q", ErrInvalidWallTime, s)
	}
	return WallTime{Hour: hour, Minute: minute}, nil
}

// Clock performs every conversion in a single injected location.
type Clock struct {
	loc *time.Location
}

func New(loc *time.Location) Clock {
	if loc == nil {
		loc, _ = LoadLocation(DefaultZone)
	}
	return Clock{loc: loc}
}

func (c Clock) Location() *time.Location {
	return c.loc
}

func (c Clock) WallClock(t time.Time) WallTime {
	local := t.In(c.loc)
	return WallTime{Hour: local.Hour(), Minute: local.Minute()}
}

// BuildInstant returns the instant at hour:minute on day's business date.
func (c Clock) BuildInstant(day time.Time, hour, minute int) time.Time {
	y, m, d := day.In(c.loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, c.loc)
}

// Today returns business midnight of the day containing now.
func (c Clock) Today(now time.Time) time.Time {
	return c.BuildInstant(now, 0, 0)
}

func (c Clock) Label(t time.Time) string {
	return c.WallClock(t).String()
}

// DayBounds returns [start, end) of the business day containing day.
func (c Clock) DayBounds(day time.Time) (time.Time, time.Time) {
	start := c.Today(day)
	y, m, d := start.Date()
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
}

// SameDay reports whether a and b fall on the same business date.
func (c Clock) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// DateString formats the business date as YYYY-MM-DD.
func (c Clock) DateString(t time.Time) string {
	return t.In(c.loc).Format(time.DateOnly)
}

// ParseDate parses YYYY-MM-DD as a business date (midnight).
func (c Clock) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), c.loc)
}
