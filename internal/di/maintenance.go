package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ibrahimvarli/noresrp-sub001/internal/config"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
	"github.com/ibrahimvarli/noresrp-sub001/internal/service"
)

// Maintenance is the periodic cleanup pass run from cron: one heartbeat,
// session expiry, notification generation and the retention prunes. Every
// step runs even when an earlier one fails; the first failure is reported.
type Maintenance struct {
	heartbeat     *service.HeartbeatService
	sessions      *service.SessionService
	notifications *service.NotificationService
	perf          repository.PerfLogRepository
	logger        *slog.Logger
	cfg           *config.Config
}

func NewMaintenance(
	heartbeat *service.HeartbeatService,
	sessions *service.SessionService,
	notifications *service.NotificationService,
	perf repository.PerfLogRepository,
	logger *slog.Logger,
	cfg *config.Config,
) *Maintenance {
	return &Maintenance{
		heartbeat:     heartbeat,
		sessions:      sessions,
		notifications: notifications,
		perf:          perf,
		logger:        logger,
		cfg:           cfg,
	}
}

func (m *Maintenance) Run(ctx context.Context) ([]string, error) {
	var details []string
	var firstErr error

	record := func(step, line string, err error) {
		if err != nil {
			m.logger.ErrorContext(ctx, "maintenance step failed", "step", step, "error", err)
			details = append(details, fmt.Sprintf("%s: failed: %v", step, err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", step, err)
			}
			return
		}
		details = append(details, line)
	}

	err := m.heartbeat.Tick(ctx)
	record("heartbeat", "heartbeat: node registered, stale peers swept", err)

	expired, err := m.sessions.ExpireIdle(ctx)
	record("expire_sessions", fmt.Sprintf("expire_sessions: %d removed", expired), err)

	m.notifications.RunGenerators(ctx)
	details = append(details, "notification_generators: ran")

	prunedNotifications, err := m.notifications.PruneDelivered(ctx)
	record("prune_notifications", fmt.Sprintf("prune_notifications: %d removed", prunedNotifications), err)

	prunedPerf, err := m.perf.Prune(m.cfg.PerfLogRetention)
	record("prune_perf_logs", fmt.Sprintf("prune_perf_logs: %d removed", prunedPerf), err)

	return details, firstErr
}
