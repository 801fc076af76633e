// Package appconfig assembles the agenda service configuration from an optional YAML file
// and the environment. Environment variables win over the file.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/apptdesk/libs/config"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/slots"
)

const (
	StoreMemory     = "memory"
	StoreSQLite     = "sqlite"
	StorePostgres   = "postgres"
	StoreBookingAPI = "bookingapi"
)

// Agenda is the business-hours section, also readable from YAML.
type Agenda struct {
	Timezone        string `yaml:"timezone"`
	DayStart        string `yaml:"day_start"`
	SlotMinutes     int    `yaml:"slot_minutes"`
	SlotCount       int    `yaml:"slot_count"`
	VisibleSlots    int    `yaml:"visible_slots"`
	ExpandStep      int    `yaml:"expand_step"`
	DragThresholdPx int    `yaml:"drag_threshold_px"`
}

type fileConfig struct {
	Agenda Agenda `yaml:"agenda"`
}

type Config struct {
	Service  string
	Port     string
	GRPCPort string

	Agenda Agenda
	Layout slots.Layout

	Store           string
	DatabaseURL     string
	SQLitePath      string
	SQLiteSeedDemo  bool
	BookingAPIURL   string
	BookingAPIToken string

	RedisURL   string
	SessionTTL time.Duration

	KafkaBrokers string
	KafkaTopic   string

	SMSWebhookURL   string
	SMSWebhookToken string
	SMTPHost        string
	SMTPPort        string
	SMTPFrom        string
	SendGridAPIKey  string
	SendGridFrom    string

	CORSOrigins   []string
	RateLimit     int
	RateWindow    time.Duration
	CommitTimeout time.Duration
}

func defaultAgenda() Agenda {
	l := slots.DefaultLayout()
	return Agenda{
		Timezone:        bizclock.DefaultZone,
		DayStart:        l.DayStart.String(),
		SlotMinutes:     l.Step,
		SlotCount:       l.Count,
		VisibleSlots:    l.BaseVisible,
		ExpandStep:      l.ExpandStep,
		DragThresholdPx: 8,
	}
}

// Load reads AGENDA_CONFIG (if set) and then the environment.
func Load() (Config, error) {
	var errs []error
	intVar := func(key string, fallback int) int {
		n, err := config.Int(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	durVar := func(key string, fallback time.Duration) time.Duration {
		d, err := config.Duration(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	portVar := func(key, fallback string) string {
		p, err := config.Port(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return p
	}

	file := fileConfig{Agenda: defaultAgenda()}
	if err := config.LoadYAML(config.String("AGENDA_CONFIG", ""), &file); err != nil {
		return Config{}, err
	}
	a := file.Agenda
	a.Timezone = config.String("AGENDA_TIMEZONE", a.Timezone)
	a.DayStart = config.String("AGENDA_DAY_START", a.DayStart)
	a.SlotMinutes = intVar("AGENDA_SLOT_MINUTES", a.SlotMinutes)
	a.SlotCount = intVar("AGENDA_SLOT_COUNT", a.SlotCount)
	a.VisibleSlots = intVar("AGENDA_VISIBLE_SLOTS", a.VisibleSlots)
	a.ExpandStep = intVar("AGENDA_EXPAND_STEP", a.ExpandStep)
	a.DragThresholdPx = intVar("AGENDA_DRAG_THRESHOLD_PX", a.DragThresholdPx)

	cfg := Config{
		Service:  config.String("SERVICE_NAME", "agenda-service"),
		Port:     portVar("PORT", "8090"),
		GRPCPort: portVar("GRPC_PORT", "9090"),
		Agenda:   a,

		Store:           strings.ToLower(config.String("AGENDA_STORE", StoreMemory)),
		DatabaseURL:     config.String("DATABASE_URL", ""),
		SQLitePath:      config.String("SQLITE_PATH", "agenda.sqlite"),
		SQLiteSeedDemo:  config.Bool("SQLITE_SEED_DEMO", false),
		BookingAPIURL:   config.String("BOOKING_API_URL", ""),
		BookingAPIToken: config.String("BOOKING_API_TOKEN", ""),

		RedisURL:   config.String("REDIS_URL", ""),
		SessionTTL: durVar("SESSION_TTL", 12*time.Hour),

		KafkaBrokers: config.String("KAFKA_BROKERS", ""),
		KafkaTopic:   config.String("KAFKA_TOPIC_RESCHEDULED", ""),

		SMSWebhookURL:   config.String("SMS_WEBHOOK_URL", ""),
		SMSWebhookToken: config.String("SMS_WEBHOOK_TOKEN", ""),
		SMTPHost:        config.String("SMTP_HOST", ""),
		SMTPPort:        config.String("SMTP_PORT", "1025"),
		SMTPFrom:        config.String("SMTP_FROM", ""),
		SendGridAPIKey:  config.String("SENDGRID_API_KEY", ""),
		SendGridFrom:    config.String("SENDGRID_FROM", "no-reply@apptdesk.local"),

		CORSOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
		RateLimit:     intVar("RATE_LIMIT_REQUESTS", 120),
		RateWindow:    durVar("RATE_LIMIT_WINDOW", time.Minute),
		CommitTimeout: durVar("AGENDA_COMMIT_TIMEOUT", 30*time.Second),
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	layout, err := a.layout()
	if err != nil {
		return Config{}, err
	}
	cfg.Layout = layout
	if err := cfg.validateStore(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (a Agenda) layout() (slots.Layout, error) {
	start, err := bizclock.ParseWallTime(a.DayStart)
	if err != nil {
		return slots.Layout{}, fmt.Errorf("appconfig: day_start: %w", err)
	}
	l := slots.Layout{
		DayStart:    start,
		Step:        a.SlotMinutes,
		Count:       a.SlotCount,
		BaseVisible: a.VisibleSlots,
		ExpandStep:  a.ExpandStep,
	}
	if err := l.Validate(); err != nil {
		return slots.Layout{}, err
	}
	return l, nil
}

func (c Config) validateStore() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreBookingAPI:
		if c.BookingAPIURL == "" {
			return errors.New("BOOKING_API_URL is required for the bookingapi store")
		}
	default:
		return fmt.Errorf("AGENDA_STORE must be one of memory, sqlite, postgres, bookingapi (got %q)", c.Store)
	}
	return nil
}
