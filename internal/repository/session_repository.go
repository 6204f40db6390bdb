package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
)

var ErrSessionNotFound = errors.New("user session not found")

type SessionRepository interface {
	Touch(userID uint, sessionID, nodeID string) error
	Find(userID uint, sessionID string) (*domain.UserSession, error)
	PruneExcess(userID uint, keep int) (int64, error)
	ExpireIdle(idleAfter time.Duration) (int64, error)
	CountActive(nodeID string, window time.Duration) (int64, error)
	RecentByUsers(userIDs []uint, since time.Time) (map[uint]time.Time, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// Touch upserts the session row for (user, session), refreshing the activity
// timestamp and rebinding the row to the touching node.
func (r *GormSessionRepository) Touch(userID uint, sessionID, nodeID string) error {
	row := &domain.UserSession{
		UserID:       userID,
		SessionID:    sessionID,
		NodeID:       nodeID,
		LastActivity: time.Now().UTC(),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_activity", "node_id"}),
	}).Create(row).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user_session", "touch", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user_session", "touch", "success")
	return nil
}

func (r *GormSessionRepository) Find(userID uint, sessionID string) (*domain.UserSession, error) {
	var session domain.UserSession
	err := r.db.Where("user_id = ? AND session_id = ?", userID, sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// PruneExcess deletes all but the keep most-recently-active rows for the
// user. Best-effort: a race between two concurrent touches may transiently
// retain more than keep rows; the next prune converges it.
func (r *GormSessionRepository) PruneExcess(userID uint, keep int) (int64, error) {
	var keepIDs []string
	err := r.db.Model(&domain.UserSession{}).
		Where("user_id = ?", userID).
		Order("last_activity desc").
		Limit(keep).
		Pluck("session_id", &keepIDs).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user_session", "prune_excess", "error")
		return 0, err
	}
	if len(keepIDs) < keep {
		return 0, nil
	}
	res := r.db.Where("user_id = ? AND session_id NOT IN ?", userID, keepIDs).
		Delete(&domain.UserSession{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user_session", "prune_excess", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "user_session", "prune_excess", "success")
	return res.RowsAffected, nil
}

// ExpireIdle removes rows whose last activity is older than idleAfter. Feeds
// the presence view: a user with no surviving row is offline.
func (r *GormSessionRepository) ExpireIdle(idleAfter time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-idleAfter)
	res := r.db.Where("last_activity < ?", cutoff).Delete(&domain.UserSession{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user_session", "expire_idle", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "user_session", "expire_idle", "success")
	return res.RowsAffected, nil
}

// CountActive counts distinct users bound to the node with activity inside
// the window. This is the node's reported load figure; without the node
// filter every node would report the cluster-wide count and the balancer
// could never find a lighter peer.
func (r *GormSessionRepository) CountActive(nodeID string, window time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-window)
	var count int64
	err := r.db.Model(&domain.UserSession{}).
		Where("node_id = ? AND last_activity >= ?", nodeID, cutoff).
		Distinct("user_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecentByUsers returns, per user, the newest activity timestamp at or after
// since. Users with no recent session are absent from the map.
func (r *GormSessionRepository) RecentByUsers(userIDs []uint, since time.Time) (map[uint]time.Time, error) {
	out := make(map[uint]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []domain.UserSession
	err := r.db.Where("user_id IN ? AND last_activity >= ?", userIDs, since).
		Order("last_activity desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if existing, ok := out[row.UserID]; !ok || row.LastActivity.After(existing) {
			out[row.UserID] = row.LastActivity
		}
	}
	return out, nil
}
