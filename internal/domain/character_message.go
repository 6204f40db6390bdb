package domain

import "time"

const (
	MessageTypeChat   = "chat"
	MessageTypeSystem = "system"
)

// CharacterMessage is a direct message between two players. Rows are
// immutable once written except for IsRead, which only moves false -> true.
type CharacterMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"index;not null;index:idx_messages_sender_created" json:"sender_id"`
	ReceiverID uint      `gorm:"index;not null" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Type       string    `gorm:"size:16;not null;default:chat" json:"type"`
	IsRead     bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt  time.Time `gorm:"index:idx_messages_sender_created" json:"created_at"`
}

func (CharacterMessage) TableName() string { return "character_messages" }
