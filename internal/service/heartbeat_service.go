package service

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

// HeartbeatService is each node's periodic self-report into the shared
// registry. Missing the staleness window is the only liveness signal; there
// is no explicit deregistration (crash-only fault model).
type HeartbeatService struct {
	nodes    repository.NodeRepository
	sessions repository.SessionRepository
	perf     repository.PerfLogRepository
	logger   *slog.Logger

	nodeID       string
	nodeURL      string
	capacity     int
	interval     time.Duration
	staleAfter   time.Duration
	onlineWindow time.Duration
}

func NewHeartbeatService(
	nodes repository.NodeRepository,
	sessions repository.SessionRepository,
	perf repository.PerfLogRepository,
	logger *slog.Logger,
	nodeID, nodeURL string,
	capacity int,
	interval, staleAfter, onlineWindow time.Duration,
) *HeartbeatService {
	return &HeartbeatService{
		nodes:        nodes,
		sessions:     sessions,
		perf:         perf,
		logger:       logger,
		nodeID:       nodeID,
		nodeURL:      nodeURL,
		capacity:     capacity,
		interval:     interval,
		staleAfter:   staleAfter,
		onlineWindow: onlineWindow,
	}
}

func (s *HeartbeatService) NodeID() string { return s.nodeID }

// GatherStats snapshots this node's load figures.
func (s *HeartbeatService) GatherStats(ctx context.Context) (LocalStats, error) {
	active, err := s.sessions.CountActive(s.nodeID, s.onlineWindow)
	if err != nil {
		return LocalStats{}, err
	}
	avg, err := s.perf.AverageDurationMS(s.nodeID, time.Now().UTC().Add(-s.interval))
	if err != nil {
		return LocalStats{}, err
	}
	return LocalStats{
		NodeID:       s.nodeID,
		ActiveUsers:  int(active),
		AvgLatencyMS: avg,
		LoadAvg:      readLoadAvg(),
	}, nil
}

// loadavgPath is a var so tests can point it at a fixture.
var loadavgPath = "/proc/loadavg"

// readLoadAvg returns the 1-minute system load average, best effort: 0 on
// platforms without /proc or on any parse failure.
func readLoadAvg() float64 {
	raw, err := os.ReadFile(loadavgPath)
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

// Tick performs one heartbeat: register/refresh this node, report its load
// and sweep stale peers. Storage failure is fatal to the tick only; the loop
// retries on the next interval.
func (s *HeartbeatService) Tick(ctx context.Context) error {
	stats, err := s.GatherStats(ctx)
	if err != nil {
		observability.RecordNodeEvent(ctx, "heartbeat", "error")
		return err
	}
	node := &domain.ServerNode{
		ID:          s.nodeID,
		URL:         s.nodeURL,
		Capacity:    s.capacity,
		ActiveUsers: stats.ActiveUsers,
	}
	if err := s.nodes.Register(node); err != nil {
		observability.RecordNodeEvent(ctx, "heartbeat", "error")
		return err
	}
	if err := s.nodes.UpdateLoad(s.nodeID, stats.ActiveUsers); err != nil {
		observability.RecordNodeEvent(ctx, "heartbeat", "error")
		return err
	}
	swept, err := s.nodes.SweepStale(s.staleAfter)
	if err != nil {
		observability.RecordNodeEvent(ctx, "sweep", "error")
		return err
	}
	if swept > 0 {
		s.logger.InfoContext(ctx, "marked stale nodes inactive", "count", swept)
	}
	observability.RecordNodeEvent(ctx, "heartbeat", "success")
	s.logger.DebugContext(ctx, "heartbeat reported",
		"node_id", s.nodeID,
		"active_users", stats.ActiveUsers,
		"avg_latency_ms", stats.AvgLatencyMS,
	)
	return nil
}

// Run ticks immediately and then on every interval until the context is
// canceled. Tick errors are logged and retried next tick, never fatal.
func (s *HeartbeatService) Run(ctx context.Context) {
	if err := s.Tick(ctx); err != nil {
		s.logger.ErrorContext(ctx, "heartbeat tick failed", "error", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.ErrorContext(ctx, "heartbeat tick failed", "error", err)
			}
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "heartbeat loop stopping")
			return
		}
	}
}
