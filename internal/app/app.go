// Package app wires repositories, services and the HTTP router for the
// tablekeep server.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tablekeep/internal/api"
	"tablekeep/internal/config"
	"tablekeep/internal/db/repository"
	"tablekeep/internal/metrics"
	"tablekeep/internal/middleware"
	"tablekeep/internal/service/booking"
	"tablekeep/internal/service/governance"
	"tablekeep/internal/service/manifest"
	"tablekeep/internal/service/messaging"
	"tablekeep/internal/service/ordering"
	"tablekeep/internal/service/security"
	"tablekeep/internal/service/venue"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Services api.Services
	Policy   *security.PolicyStore
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	cfg       *config.Config
	readDB    *sql.DB
	identity  *security.ActorService
	validator middleware.JWTValidator
	logger    *slog.Logger
}

// New wires all repositories and services from the provided deps and warms
// the policy cache.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	readDB := deps.ReadDB
	if readDB == nil {
		readDB = deps.WriteDB
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// === Repositories (write pool) ===
	actorRepo := repository.NewActorRepo(deps.WriteDB)
	policyRepo := repository.NewPolicyRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)
	venueRepo := repository.NewVenueRepo(deps.WriteDB)
	memberRepo := repository.NewMemberRepo(deps.WriteDB)
	reservationRepo := repository.NewReservationRepo(deps.WriteDB)
	attendeeRepo := repository.NewAttendeeRepo(deps.WriteDB)
	orderRepo := repository.NewOrderRepo(deps.WriteDB)
	messageRepo := repository.NewMessageRepo(deps.WriteDB)
	notificationRepo := repository.NewNotificationRepo(deps.WriteDB)
	tx := repository.NewTxManager(deps.WriteDB)

	// === Repositories (read pool) ===
	auditReader := repository.NewAuditRepo(readDB)
	actorReader := repository.NewActorRepo(readDB)

	// === Authorization ===
	bootstrap, err := security.LoadBootstrapMatrix(cfg.PolicyBootstrapFile)
	if err != nil {
		return nil, fmt.Errorf("bootstrap policy: %w", err)
	}
	policyStore := security.NewPolicyStore(
		policyRepo, auditRepo, tx, security.NewPolicyCache(), bootstrap,
		logger, m,
	)
	eval := security.NewEvaluator(policyStore, logger, m)

	validator, err := middleware.NewHS256Validator(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("token validator: %w", err)
	}

	// === Core services ===
	reconciler := manifest.NewReconciler(manifest.Deps{
		Reservations: reservationRepo,
		Attendees:    attendeeRepo,
		Members:      memberRepo,
		Venues:       venueRepo,
		Actors:       actorRepo,
		Audit:        auditRepo,
		Tx:           tx,
		Evaluator:    eval,
		Logger:       logger,
		Metrics:      m,
	})
	reservations := booking.NewService(booking.Deps{
		Reservations: reservationRepo,
		Attendees:    attendeeRepo,
		Venues:       venueRepo,
		Actors:       actorRepo,
		Orders:       orderRepo,
		Audit:        auditRepo,
		Tx:           tx,
		Evaluator:    eval,
		Manifest:     reconciler,
		Logger:       logger,
		Metrics:      m,
	})

	a := &App{
		Services: api.Services{
			Reservations: reservations,
			Manifest:     reconciler,
			Members:      manifest.NewMemberService(memberRepo, eval),
			Messages: messaging.NewService(messaging.Deps{
				Messages:      messageRepo,
				Notifications: notificationRepo,
				Reservations:  reservationRepo,
				Tx:            tx,
				Evaluator:     eval,
				Logger:        logger,
			}),
			Notifications: messaging.NewNotificationService(notificationRepo, eval),
			Policy:        security.NewPolicyService(policyStore, eval),
			Actors:        security.NewActorService(actorRepo, auditRepo, tx, eval, cfg.GuestAllowanceDefault),
			Audit:         governance.NewAuditService(auditReader),
			Venues:        venue.NewService(venueRepo, auditRepo, tx, eval),
			Orders:        ordering.NewService(orderRepo, reservationRepo, attendeeRepo, eval),
		},
		Policy:   policyStore,
		Metrics:  m,
		Registry: reg,

		cfg:       cfg,
		readDB:    readDB,
		identity:  security.NewActorService(actorReader, nil, nil, nil, cfg.GuestAllowanceDefault),
		validator: validator,
		logger:    logger,
	}

	if _, err := policyStore.Load(ctx); err != nil {
		logger.Warn("policy cache warm-up failed", "error", err)
	}
	return a, nil
}

// Handler builds the HTTP router. Middleware goroutines stop when ctx is done.
func (a *App) Handler(ctx context.Context) http.Handler {
	h := api.NewHandler(a.Services, a.logger)
	return api.NewRouter(ctx, h, api.RouterConfig{
		Validator: a.validator,
		Actors:    a.identity,
		Metrics:   a.Metrics,
		Gatherer:  a.Registry,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		},
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		Ping:           a.readDB.PingContext,
		Logger:         a.logger,
	})
}
