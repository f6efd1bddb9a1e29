// Command server runs the garita access-control service: visitor entry/exit
// registration at guarded facilities, backed by postgres (or in-memory stores
// for development) with optional redis presence caching and Kafka audit
// streaming.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	accesshandler "garita/internal/access/handler"
	accessmetrics "garita/internal/access/metrics"
	accessservice "garita/internal/access/service"
	banstore "garita/internal/access/store/ban"
	eventstore "garita/internal/access/store/event"
	"garita/internal/access/store/presence"
	visitorstore "garita/internal/access/store/visitor"
	"garita/internal/audit"
	"garita/internal/platform/config"
	"garita/internal/platform/httpserver"
	"garita/internal/platform/logger"
	"garita/internal/platform/metrics"
	"garita/internal/platform/middleware"
	"garita/internal/platform/postgres"
	"garita/internal/platform/redis"
	registryhandler "garita/internal/registry/handler"
	registryservice "garita/internal/registry/service"
	registrystore "garita/internal/registry/store"
)

func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when configured, in-memory otherwise.
	var (
		db       *sql.DB
		visitors accessservice.VisitorStore
		bans     accessservice.BanStore
		events   accessservice.EventStore
		registry interface {
			accessservice.Registry
			registryservice.Store
		}
	)
	if cfg.Postgres.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		visitors = visitorstore.NewPostgres(db)
		bans = banstore.NewPostgres(db)
		events = eventstore.NewPostgres(db)
		registry = registrystore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		visitors = visitorstore.NewMemory()
		bans = banstore.NewMemory()
		events = eventstore.NewMemory()
		registry = registrystore.NewMemory()
		log.Warn("no postgres configured, using in-memory stores")
	}

	// Presence cache is optional; the ledger stays authoritative without it.
	var presenceCache accessservice.PresenceCache
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		presenceCache = presence.NewRedis(rdb.Client, cfg.Redis.PresenceTTL)
		log.Info("presence cache enabled")
	}

	// Audit pipeline: recorder feeds a worker that writes postgres and,
	// when brokers are configured, publishes to Kafka.
	recorder := audit.NewRecorder(1024, log)
	var auditStore audit.Store
	if db != nil {
		auditStore = audit.NewPostgresStore(db)
	} else {
		auditStore = audit.NewMemoryStore()
	}
	var publisher audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = kafka
		log.Info("audit kafka publisher enabled", "topic", cfg.Kafka.Topic)
	}
	worker := audit.NewWorker(recorder.Inbox(), auditStore, publisher, log)

	httpMetrics := metrics.New()
	accessMetrics := accessmetrics.New()

	svc := accessservice.NewService(accessservice.Deps{
		Visitors:       visitors,
		Bans:           bans,
		Events:         events,
		Registry:       registry,
		Presence:       presenceCache,
		Auditor:        recorder,
		Metrics:        accessMetrics,
		Logger:         log,
		ImportMaxBatch: cfg.ImportMaxBatch,
	})
	regSvc := registryservice.NewService(registry)

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	router := chi.NewRouter()
	accesshandler.New(svc, log, httpMetrics, validator, cfg.AdminTokenHash).Register(router)
	registryhandler.New(regSvc, log, httpMetrics, validator).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	server := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
