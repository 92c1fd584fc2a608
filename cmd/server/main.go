package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"civreg/internal/access"
	idhandler "civreg/internal/identity/handler"
	idmetrics "civreg/internal/identity/metrics"
	idservice "civreg/internal/identity/service"
	sessionstore "civreg/internal/identity/store/session"
	userstore "civreg/internal/identity/store/user"
	"civreg/internal/identity/token"
	lochandler "civreg/internal/location/handler"
	"civreg/internal/location/hierarchy"
	locmodels "civreg/internal/location/models"
	locservice "civreg/internal/location/service"
	villagestore "civreg/internal/location/store/village"
	wardstore "civreg/internal/location/store/ward"
	"civreg/internal/platform/config"
	"civreg/internal/platform/httpserver"
	"civreg/internal/platform/logger"
	"civreg/internal/platform/postgres"
	"civreg/internal/platform/redis"
	reghandler "civreg/internal/registry/handler"
	regmetrics "civreg/internal/registry/metrics"
	regservice "civreg/internal/registry/service"
	familymemberstore "civreg/internal/registry/store/familymember"
	residencestore "civreg/internal/registry/store/residence"
	transferhandler "civreg/internal/transfer/handler"
	transfermetrics "civreg/internal/transfer/metrics"
	transferservice "civreg/internal/transfer/service"
	transferstore "civreg/internal/transfer/store/transfer"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/audit"
	"civreg/pkg/platform/audit/publisher"
	auditmem "civreg/pkg/platform/audit/store/memory"
	auditpg "civreg/pkg/platform/audit/store/postgres"
	"civreg/pkg/platform/audit/worker"
	"civreg/pkg/platform/middleware/auth"
	"civreg/pkg/platform/middleware/metadata"
	"civreg/pkg/platform/middleware/request"
	"civreg/pkg/platform/middleware/requesttime"
	txcontext "civreg/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// villageStore is the union of what the location service and the hierarchy
// read model need from a village store. Both backends satisfy it.
type villageStore interface {
	locservice.VillageStore
	ListByWard(ctx context.Context, wardID id.WardID) ([]*locmodels.Village, error)
}

// main wires stores, services and handlers and keeps the process lifecycle
// small. Business logic lives in the internal service packages.
func main() {
	log := logger.New()
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	cache, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if cache != nil {
		defer cache.Close()
	}

	// Postgres-backed stores when a database is configured, in-memory
	// otherwise. The in-memory backend exists for local development and must
	// not be used with more than one replica.
	var (
		users      idservice.UserStore
		wards      locservice.WardStore
		villages   villageStore
		residences regservice.ResidenceStore
		members    regservice.FamilyMemberStore
		transfers  transferservice.TransferStore
		auditStore audit.Store
		runner     txcontext.Runner
	)
	if db != nil {
		users = userstore.NewPostgres(db)
		wards = wardstore.NewPostgres(db)
		villages = villagestore.NewPostgres(db)
		residences = residencestore.NewPostgres(db)
		members = familymemberstore.NewPostgres(db)
		transfers = transferstore.NewPostgres(db)
		auditStore = auditpg.New(db)
		runner = txcontext.NewSQLRunner(db)
		log.Info("using postgres-backed stores")
	} else {
		users = userstore.NewInMemory()
		wards = wardstore.NewInMemory()
		villages = villagestore.NewInMemory()
		residences = residencestore.NewInMemory()
		members = familymemberstore.NewInMemory()
		transfers = transferstore.NewInMemory()
		auditStore = auditmem.NewInMemoryStore()
		runner = txcontext.NewSerialRunner()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var sessions idservice.SessionStore
	if cache != nil {
		sessions = sessionstore.NewRedis(cache.Client)
		log.Info("using redis-backed sessions")
	} else {
		sessions = sessionstore.NewInMemory()
		log.Warn("REDIS_URL not set, sessions will not survive restarts")
	}

	// Audit pipeline: services emit to the channel, the worker persists
	// events and forwards them to Kafka when brokers are configured.
	channel := audit.NewChannel(1024)
	var sink audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := publisher.NewKafka(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafka.Close()
		sink = kafka
	}
	auditWorker := worker.New(auditStore, sink, channel.Events(), log)

	h := hierarchy.New(wards, villages)
	checker := access.NewChecker(h)
	tokens := token.NewService(cfg.JWTSigningKey, "civreg")

	identitySvc := idservice.New(users, sessions, tokens, checker, h, channel, idmetrics.New(), log, cfg.TokenTTL)
	locationSvc := locservice.New(wards, villages, h, channel, log)
	registrySvc := regservice.New(residences, members, checker, h, channel, regmetrics.New(), log)
	transferSvc := transferservice.New(transfers, residences, registrySvc, checker, h, runner, channel, transfermetrics.New(), log)

	identityHandler := idhandler.New(identitySvc, log)
	locationHandler := lochandler.New(locationSvc, identitySvc, log)
	registryHandler := reghandler.New(registrySvc, identitySvc, log)
	transferHandler := transferhandler.New(transferSvc, identitySvc, log)

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware(nil).Handler)
	r.Use(request.Logger(log))
	r.Use(request.Timeout(30 * time.Second))

	r.Get("/health", healthHandler(db, cache))
	r.Handle("/metrics", promhttp.Handler())
	identityHandler.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, identitySvc, log))
		identityHandler.Register(r)
		locationHandler.Register(r)
		registryHandler.Register(r)
		transferHandler.Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting civreg server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

func healthHandler(db *sql.DB, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, `{"status":"unavailable","component":"postgres"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				http.Error(w, `{"status":"unavailable","component":"redis"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
