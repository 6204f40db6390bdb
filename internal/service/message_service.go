package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

const previewRunes = 50

// MessageService carries player-to-player direct messages with flood control.
type MessageService struct {
	messages      repository.MessageRepository
	characters    repository.CharacterRepository
	notifications repository.NotificationRepository
	logger        *slog.Logger

	rateLimit  int
	rateWindow time.Duration
}

func NewMessageService(
	messages repository.MessageRepository,
	characters repository.CharacterRepository,
	notifications repository.NotificationRepository,
	logger *slog.Logger,
	rateLimit int,
	rateWindow time.Duration,
) *MessageService {
	return &MessageService{
		messages:      messages,
		characters:    characters,
		notifications: notifications,
		logger:        logger,
		rateLimit:     rateLimit,
		rateWindow:    rateWindow,
	}
}

// Send validates, applies the sliding-window flood check and persists the
// message, then enqueues a message-arrived notification for the receiver.
// The message is durable even when the notification enqueue fails: that
// failure is logged and swallowed, never rolled back into the send.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uint, content, msgType string) (*domain.CharacterMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		observability.RecordMessageEvent(ctx, "empty")
		return nil, ErrEmptyMessage
	}
	if msgType == "" {
		msgType = domain.MessageTypeChat
	}

	sender, err := s.characters.FindByID(senderID)
	if err != nil {
		if err == repository.ErrCharacterNotFound {
			observability.RecordMessageEvent(ctx, "unknown_sender")
			return nil, ErrUnknownSender
		}
		return nil, err
	}
	ok, err := s.characters.Exists(receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.RecordMessageEvent(ctx, "unknown_recipient")
		return nil, ErrUnknownRecipient
	}

	// Sliding window, recomputed per send so a burst cannot hide behind a
	// bucket boundary.
	since := time.Now().UTC().Add(-s.rateWindow)
	recent, err := s.messages.CountRecentBySender(senderID, since)
	if err != nil {
		return nil, err
	}
	if recent >= int64(s.rateLimit) {
		observability.RecordMessageEvent(ctx, "rate_limited")
		return nil, ErrRateLimited
	}

	msg := &domain.CharacterMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Type:       msgType,
	}
	if err := s.messages.Create(msg); err != nil {
		observability.RecordMessageEvent(ctx, "error")
		return nil, err
	}
	observability.RecordMessageEvent(ctx, "sent")

	notification, err := domain.NewNotification(receiverID, domain.NotificationTypeMessage, msg.ID, domain.MessagePayload{
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Preview:    preview(content),
	})
	if err == nil {
		err = s.notifications.Create(notification)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "message notification enqueue failed",
			"message_id", msg.ID,
			"receiver_id", receiverID,
			"error", err,
		)
		observability.RecordNotificationEvent(ctx, domain.NotificationTypeMessage, "error")
	} else {
		observability.RecordNotificationEvent(ctx, domain.NotificationTypeMessage, "created")
	}
	return msg, nil
}

// GetConversation returns the chronological conversation between viewer and
// other and, as its observable side effect, marks everything the other side
// sent to the viewer as read.
func (s *MessageService) GetConversation(ctx context.Context, viewerID, otherID uint, limit int) ([]domain.CharacterMessage, error) {
	if _, err := s.messages.MarkConversationRead(viewerID, otherID); err != nil {
		return nil, err
	}
	return s.messages.Conversation(viewerID, otherID, limit)
}

func (s *MessageService) UnreadCount(ctx context.Context, characterID uint) (int64, error) {
	return s.messages.UnreadCount(characterID)
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + "…"
}
