package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	NotificationTypeMessage             = "message"
	NotificationTypeRelationshipRequest = "relationship_request"
	NotificationTypeEventReminder       = "event_reminder"
)

// Notification is one undelivered-or-delivered client event for a character.
// Delivered only moves false -> true. For generator-produced notifications the
// (character, type, source) triple is unique so the same underlying fact can
// never be notified twice.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CharacterID uint      `gorm:"column:character_id;not null;index;uniqueIndex:idx_notifications_fact" json:"character_id"`
	Type        string    `gorm:"size:32;not null;uniqueIndex:idx_notifications_fact" json:"type"`
	SourceID    uint      `gorm:"not null;default:0;uniqueIndex:idx_notifications_fact" json:"source_id"`
	Data        string    `gorm:"column:notification_data;type:text;not null" json:"data"`
	Delivered   bool      `gorm:"column:is_delivered;not null;default:false;index" json:"is_delivered"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "real_time_notifications" }

// MessagePayload announces an arrived direct message. Preview carries at most
// the first 50 characters of the content.
type MessagePayload struct {
	SenderID   uint   `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Preview    string `json:"preview"`
}

type RelationshipRequestPayload struct {
	RequestID       uint   `json:"request_id"`
	FromCharacterID uint   `json:"from_character_id"`
	FromName        string `json:"from_name"`
}

type EventReminderPayload struct {
	EventID  uint      `json:"event_id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
}

// NewNotification serializes the typed payload into the Data column. The
// payload type must match one of the notification type constants.
func NewNotification(characterID uint, kind string, sourceID uint, payload any) (*Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &Notification{
		CharacterID: characterID,
		Type:        kind,
		SourceID:    sourceID,
		Data:        string(raw),
	}, nil
}

// DecodePayload returns the typed payload for the notification's type
// discriminator.
func (n *Notification) DecodePayload() (any, error) {
	switch n.Type {
	case NotificationTypeMessage:
		var p MessagePayload
		if err := json.Unmarshal([]byte(n.Data), &p); err != nil {
			return nil, err
		}
		return p, nil
	case NotificationTypeRelationshipRequest:
		var p RelationshipRequestPayload
		if err := json.Unmarshal([]byte(n.Data), &p); err != nil {
			return nil, err
		}
		return p, nil
	case NotificationTypeEventReminder:
		var p EventReminderPayload
		if err := json.Unmarshal([]byte(n.Data), &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
}
