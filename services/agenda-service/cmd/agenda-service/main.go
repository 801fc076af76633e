package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/apptdesk/libs/db"
	"github.com/md-rashed-zaman/apptdesk/libs/grpcx"
	"github.com/md-rashed-zaman/apptdesk/libs/httpx"
	"github.com/md-rashed-zaman/apptdesk/libs/kafkax"
	otelx "github.com/md-rashed-zaman/apptdesk/libs/otel"
	"github.com/md-rashed-zaman/apptdesk/libs/runtime"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/agenda"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/appconfig"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bizclock"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/bookingapi"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/commit"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/events"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/handlers"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/metrics"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/notify"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/sessions"
	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/storage"
)

func main() {
	runtime.LoadDotenv()
	cfg, err := appconfig.Load()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.Service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	loc, fallback := bizclock.LoadLocation(cfg.Agenda.Timezone)
	if fallback {
		logger.Warn("timezone database unavailable; using fixed UTC-3", "timezone", cfg.Agenda.Timezone)
	}
	clock := bizclock.New(loc)

	store, ready, closeStore, err := openStore(ctx, cfg, clock, logger)
	if err != nil {
		logger.Error("store init failed", "store", cfg.Store, "err", err)
		panic(err)
	}
	defer closeStore()

	var sessionStore agenda.SessionStore = sessions.NewMemory()
	rateLimit := httpx.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).Middleware()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "err", err)
			panic(err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		sessionStore = sessions.NewRedis(rdb, sessions.DefaultKeyPrefix, cfg.SessionTTL)
		rateLimit = httpx.NewRedisRateLimiter(rdb, cfg.RateLimit, cfg.RateWindow, "agenda:rl:").Middleware(logger, true)
		ready = append(ready, runtime.ReadyCheck{Name: "redis", Check: sessions.ReadyCheck(rdb)})
	}

	var publisher events.Publisher = events.Noop{}
	if kp := events.NewKafkaPublisher(logger, events.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}); kp != nil {
		publisher = kp
		ready = append(ready, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ctrl := commit.NewController(store, buildNotifier(cfg, logger), commit.Options{
		Logger:  logger,
		Metrics: metrics.NewAgendaMetrics(reg),
		Timeout: cfg.CommitTimeout,
	})
	svc := agenda.NewService(agenda.Config{
		Clock:           clock,
		Layout:          cfg.Layout,
		DragThresholdPx: float64(cfg.Agenda.DragThresholdPx),
	}, ctrl, sessionStore, publisher, logger)

	httpHandler := handlers.NewRouter(handlers.RouterConfig{
		Logger:  logger,
		Agenda:  handlers.NewAgendaHandler(svc, logger),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ready:   ready,
		APIMiddleware: []httpx.Middleware{
			httpx.WithBodyLimit(64 << 10),
			rateLimit,
		},
		CORS: httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			MaxAge:         10 * time.Minute,
		},
	})
	httpHandler = otelhttp.NewHandler(httpHandler, "agenda")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, healthServer := grpcx.NewHealthServer(logger)
	healthServer.SetServingStatus(cfg.Service, healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Error("grpc listen failed", "err", err)
		panic(err)
	}
	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "store", cfg.Store, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	healthServer.Shutdown()
	shutdownCtx, cancel := runtime.ShutdownContext(10 * time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	grpcServer.GracefulStop()
	logger.Info("agenda service stopped")
}

func openStore(ctx context.Context, cfg appconfig.Config, clock bizclock.Clock, logger *slog.Logger) (commit.Store, []runtime.ReadyCheck, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case appconfig.StoreSQLite:
		repo, err := storage.OpenSQLite(ctx, cfg.SQLitePath, clock)
		if err != nil {
			return nil, nil, noop, err
		}
		if cfg.SQLiteSeedDemo {
			seedSQLite(ctx, repo, clock, logger)
		}
		ready := []runtime.ReadyCheck{{Name: "sqlite", Check: repo.Ping}}
		return repo, ready, func() { _ = repo.Close() }, nil
	case appconfig.StorePostgres:
		pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{})
		if err != nil {
			return nil, nil, noop, err
		}
		repo := storage.NewPostgresRepository(pool, clock)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, noop, err
		}
		ready := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
		return repo, ready, pool.Close, nil
	case appconfig.StoreBookingAPI:
		client := bookingapi.NewClient(cfg.BookingAPIURL, cfg.BookingAPIToken, clock)
		return client, []runtime.ReadyCheck{{Name: "booking-api", Check: client.Ping}}, noop, nil
	default:
		logger.Info("using in-memory demo appointments")
		return storage.NewMemoryRepository(clock, storage.DemoAppointments(clock, time.Now())...), nil, noop, nil
	}
}

func seedSQLite(ctx context.Context, repo *storage.SQLiteRepository, clock bizclock.Clock, logger *slog.Logger) {
	now := time.Now()
	existing, err := repo.ListToday(ctx, now)
	if err != nil {
		logger.Error("sqlite seed check failed", "err", err)
		return
	}
	if len(existing) > 0 {
		return
	}
	for _, a := range storage.DemoAppointments(clock, now) {
		a.ID = ""
		if _, err := repo.Insert(ctx, a); err != nil {
			logger.Error("sqlite seed failed", "err", err)
			return
		}
	}
	logger.Info("seeded demo appointments")
}

func buildNotifier(cfg appconfig.Config, logger *slog.Logger) commit.Notifier {
	var sms notify.SMSSender
	if cfg.SMSWebhookURL != "" {
		sms = notify.NewWebhookSMS(cfg.SMSWebhookURL, cfg.SMSWebhookToken)
	}
	var email notify.EmailSender
	if sg := notify.NewSendGridEmail(notify.SendGridConfig{APIKey: cfg.SendGridAPIKey, FromEmail: cfg.SendGridFrom}, logger); sg != nil {
		email = sg
	} else if cfg.SMTPHost != "" {
		email = notify.NewSMTPEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	}
	if sms == nil && email == nil {
		logger.Warn("no notification provider configured; confirm with notify will report the notice as failed")
	}
	return notify.NewRouter(sms, email, logger)
}
