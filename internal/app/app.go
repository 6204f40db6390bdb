package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ibrahimvarli/noresrp-sub001/internal/config"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/handler"
	"github.com/ibrahimvarli/noresrp-sub001/internal/http/middleware"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

// App owns the HTTP server and the heartbeat loop of one node.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	heartbeat *service.HeartbeatService
}

type Handlers struct {
	Message      *handler.MessageHandler
	Notification *handler.NotificationHandler
	Presence     *handler.PresenceHandler
	Node         *handler.NodeHandler
	Health       *handler.HealthHandler
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	handlers Handlers,
	sessionSvc *service.SessionService,
	heartbeat *service.HeartbeatService,
	perf repository.PerfLogRepository,
	apiLimiter middleware.Limiter,
) *App {
	router := NewRouter(cfg, logger, handlers, sessionSvc, heartbeat, perf, apiLimiter)
	return &App{
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:              ":" + cfg.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		heartbeat: heartbeat,
	}
}

// NewRouter assembles the chi routing tree.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	handlers Handlers,
	sessionSvc *service.SessionService,
	heartbeat *service.HeartbeatService,
	perf repository.PerfLogRepository,
	apiLimiter middleware.Limiter,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestTimer(perf, heartbeat.NodeID(), logger))

	bypass := middleware.NewRequestBypassEvaluator(middleware.RequestBypassConfig{
		EnableInternalProbeBypass: true,
		EnableTrustedPeerBypass:   len(cfg.TrustedPeerCIDRs) > 0,
		TrustedPeerCIDRs:          cfg.TrustedPeerCIDRs,
	})
	throttle := middleware.NewDistributedRateLimiter(
		apiLimiter, cfg.APIRateLimitPerMin, time.Minute, middleware.FailOpen, "api",
	).WithBypass(bypass).WithLogger(logger)

	r.With(throttle.Middleware()).Get("/healthz", handlers.Health.Healthz)

	r.Route("/api/v1", func(r chi.Router) {
		// Public route: throttled by client IP.
		r.With(throttle.Middleware()).Get("/route", handlers.Node.Route)

		// Session middleware runs before the throttle so the bucket key is
		// the authenticated user, not anything the client chose.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessionSvc))
			r.Use(throttle.Middleware())
			r.Get("/messages", handlers.Message.Conversation)
			r.Post("/messages/send", handlers.Message.Send)
			r.Get("/notifications", handlers.Notification.Poll)
			r.Get("/presence", handlers.Presence.Online)
		})
	})
	return r
}

// Run serves HTTP and the heartbeat loop until the context is canceled, then
// drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go a.heartbeat.Run(heartbeatCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
