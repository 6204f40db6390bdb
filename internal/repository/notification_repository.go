package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
)

type NotificationRepository interface {
	Create(n *domain.Notification) error
	// CreateIfAbsent inserts the notification unless one already exists for
	// the same (recipient, type, source) fact, delivered or not. Returns
	// whether a row was inserted. Check and insert run in one transaction.
	CreateIfAbsent(n *domain.Notification) (bool, error)
	// Drain returns the recipient's undelivered notifications in creation
	// order and marks them delivered in the same transaction.
	Drain(characterID uint) ([]domain.Notification, error)
	PruneDelivered(olderThan time.Duration) (int64, error)
}

type GormNotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(n *domain.Notification) error {
	if err := r.db.Create(n).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "notification", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "notification", "create", "success")
	return nil
}

func (r *GormNotificationRepository) CreateIfAbsent(n *domain.Notification) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&domain.Notification{}).
			Where("character_id = ? AND type = ? AND source_id = ?", n.CharacterID, n.Type, n.SourceID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(n).Error; err != nil {
			// The unique fact index can still fire when another node won the
			// race between our check and insert; that is the dedup working.
			if isUniqueViolation(err) {
				return nil
			}
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "notification", "create_if_absent", "error")
		return false, err
	}
	outcome := "deduplicated"
	if created {
		outcome = "created"
	}
	observability.RecordRepositoryOperation(context.Background(), "notification", "create_if_absent", outcome)
	return created, nil
}

func (r *GormNotificationRepository) Drain(characterID uint) ([]domain.Notification, error) {
	var pending []domain.Notification
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("character_id = ? AND is_delivered = ?", characterID, false).
			Order("created_at asc").Order("id asc").
			Find(&pending).Error
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		ids := make([]uint, len(pending))
		for i, n := range pending {
			ids[i] = n.ID
		}
		if err := tx.Model(&domain.Notification{}).
			Where("id IN ?", ids).
			Update("is_delivered", true).Error; err != nil {
			return err
		}
		for i := range pending {
			pending[i].Delivered = true
		}
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "notification", "drain", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "notification", "drain", "success")
	return pending, nil
}

func (r *GormNotificationRepository) PruneDelivered(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := r.db.Where("is_delivered = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "notification", "prune_delivered", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "notification", "prune_delivered", "success")
	return res.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Driver-specific fallbacks: pgx wraps SQLSTATE 23505, sqlite reports
	// "UNIQUE constraint failed".
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint failed")
}
