package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
)

type MessageRepository interface {
	Create(msg *domain.CharacterMessage) error
	CountRecentBySender(senderID uint, since time.Time) (int64, error)
	Conversation(a, b uint, limit int) ([]domain.CharacterMessage, error)
	MarkConversationRead(readerID, senderID uint) (int64, error)
	UnreadCount(characterID uint) (int64, error)
}

type GormMessageRepository struct{ db *gorm.DB }

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(msg *domain.CharacterMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "character_message", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "character_message", "create", "success")
	return nil
}

// CountRecentBySender is the flood-control counter: messages the sender wrote
// at or after since. Recomputed on every send so the window slides instead of
// resetting on a clock boundary.
func (r *GormMessageRepository) CountRecentBySender(senderID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.CharacterMessage{}).
		Where("sender_id = ? AND created_at >= ?", senderID, since).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "character_message", "count_recent", "error")
		return 0, err
	}
	return count, nil
}

// Conversation returns the newest limit messages between a and b in
// chronological order.
func (r *GormMessageRepository) Conversation(a, b uint, limit int) ([]domain.CharacterMessage, error) {
	limit = normalizeLimit(limit, DefaultMessageLimit, MaxMessageLimit)
	var msgs []domain.CharacterMessage
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "character_message", "conversation", "error")
		return nil, err
	}
	// Stored newest-first for the limit; serve oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	observability.RecordRepositoryOperation(context.Background(), "character_message", "conversation", "success")
	return msgs, nil
}

// MarkConversationRead flips the monotonic is_read flag on every unread
// message from senderID to readerID.
func (r *GormMessageRepository) MarkConversationRead(readerID, senderID uint) (int64, error) {
	res := r.db.Model(&domain.CharacterMessage{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", readerID, senderID, false).
		Update("is_read", true)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "character_message", "mark_read", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "character_message", "mark_read", "success")
	return res.RowsAffected, nil
}

func (r *GormMessageRepository) UnreadCount(characterID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.CharacterMessage{}).
		Where("receiver_id = ? AND is_read = ?", characterID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
