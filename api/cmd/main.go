package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/participation"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/stats"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/config"
	rediscache "github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/db/postgres"
	rabbitpub "github.com/baechuer/real-time-ressys/services/listing-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/transport/http/router"
	"github.com/baechuer/real-time-ressys/services/listing-service/migrations"
)

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	DB     *sql.DB
	Outbox *postgres.OutboxWorker

	Publisher *rabbitpub.Publisher
	Cache     *rediscache.Cache
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		zlog.Info().
			Str("db_user", u.User.Username()).
			Str("db_host", u.Host).
			Str("db_db", u.Path).
			Msg("db config loaded")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			zlog.Fatal().Err(err).Msg("db ping failed")
		}
		if cfg.DBMigrate {
			if err := postgres.Migrate(ctx, db, migrations.FS); err != nil {
				zlog.Fatal().Err(err).Msg("db migrate failed")
			}
			zlog.Info().Msg("db migrations applied")
		}
	}

	app := NewApp(cfg, db)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("server crashed")
	}
}

func NewApp(cfg *config.Config, db *sql.DB) *App {
	// 1) Infrastructure
	eventRepo := postgres.NewEventRepo(db)
	requestRepo := postgres.NewRequestRepo(db)
	statsRepo := postgres.NewStatsRepo(db)
	dir := postgres.NewDirectory(db)

	var rabbit *rabbitpub.Publisher
	var pub messaging.Publisher = messaging.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		rabbit = p
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: outbox messages will be dropped")
	}

	var cache *rediscache.Cache
	var eventCache event.Cache
	if cfg.RedisURL != "" {
		c, err := rediscache.New(context.Background(), cfg.RedisURL)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable: event details cache disabled")
		} else {
			cache = c
			eventCache = c
		}
	}

	outbox := postgres.NewOutboxWorker(db, pub, cfg.OutboxPollInterval, cfg.OutboxBatch)

	// 2) Application
	clock := sysClock{}
	statsSvc := stats.New(statsRepo, clock, cfg.StatsApp)
	eventSvc := event.New(eventRepo, dir, statsSvc, statsSvc, clock, eventCache, cfg.CacheTTLDetails)
	partSvc := participation.New(requestRepo, dir, clock)

	// 3) Transport
	deps := map[string]handlers.Pinger{"postgres": db}
	if cache != nil {
		deps["redis"] = handlers.PingFunc(cache.Ping)
	}
	h := router.Handlers{
		Events:   handlers.NewEventsHandler(eventSvc),
		Requests: handlers.NewRequestsHandler(partSvc),
		Stats:    handlers.NewStatsHandler(statsSvc),
		Health:   handlers.NewHealthHandler(deps),
	}
	auth := authmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)

	// 4) Server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.New(h, auth, cfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &App{
		Config:    cfg,
		Server:    srv,
		DB:        db,
		Outbox:    outbox,
		Publisher: rabbit,
		Cache:     cache,
	}
}

// Run serves HTTP and drains the outbox until ctx is canceled, then shuts both down.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := a.Outbox.Start(workerCtx)
	defer func() {
		stopWorker()
		<-workerDone
	}()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", a.Server.Addr).Msg("listening")
		errCh <- a.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zlog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
