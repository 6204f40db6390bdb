package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

// SessionService is the per-user session bookkeeping invoked on every
// authenticated request: refresh on activity, bounded retention, validity
// checks and the idle sweep feeding the presence view.
type SessionService struct {
	sessions repository.SessionRepository
	presence *PresenceCache
	logger   *slog.Logger

	nodeID    string
	ttl       time.Duration
	keep      int
	idleAfter time.Duration
}

func NewSessionService(
	sessions repository.SessionRepository,
	presence *PresenceCache,
	logger *slog.Logger,
	nodeID string,
	ttl time.Duration,
	keep int,
	idleAfter time.Duration,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		presence:  presence,
		logger:    logger,
		nodeID:    nodeID,
		ttl:       ttl,
		keep:      keep,
		idleAfter: idleAfter,
	}
}

// Touch refreshes the session row and prunes the user down to the retention
// cap. The prune is best-effort: a failure is logged, not surfaced, and the
// next touch converges it.
func (s *SessionService) Touch(ctx context.Context, userID uint, sessionID string) error {
	if err := s.sessions.Touch(userID, sessionID, s.nodeID); err != nil {
		observability.RecordSessionEvent(ctx, "touch", "error")
		return err
	}
	observability.RecordSessionEvent(ctx, "touch", "success")
	if _, err := s.sessions.PruneExcess(userID, s.keep); err != nil {
		s.logger.WarnContext(ctx, "session prune failed", "user_id", userID, "error", err)
	}
	if s.presence != nil {
		if err := s.presence.MarkSeen(ctx, userID, time.Now().UTC()); err != nil {
			s.logger.DebugContext(ctx, "presence cache mark failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

// IsValid reports whether the session exists with activity inside the ttl.
func (s *SessionService) IsValid(ctx context.Context, userID uint, sessionID string) (bool, error) {
	session, err := s.sessions.Find(userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			observability.RecordSessionEvent(ctx, "validate", "not_found")
			return false, nil
		}
		observability.RecordSessionEvent(ctx, "validate", "error")
		return false, err
	}
	if session.IdleFor(time.Now().UTC()) > s.ttl {
		observability.RecordSessionEvent(ctx, "validate", "expired")
		return false, nil
	}
	observability.RecordSessionEvent(ctx, "validate", "success")
	return true, nil
}

// ExpireIdle sweeps sessions idle beyond the configured window.
func (s *SessionService) ExpireIdle(ctx context.Context) (int64, error) {
	expired, err := s.sessions.ExpireIdle(s.idleAfter)
	if err != nil {
		observability.RecordSessionEvent(ctx, "expire_idle", "error")
		return 0, err
	}
	observability.RecordSessionEvent(ctx, "expire_idle", "success")
	return expired, nil
}
