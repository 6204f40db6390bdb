package domain

import "time"

const (
	RelationshipRequestPending  = "pending"
	RelationshipRequestAccepted = "accepted"
	RelationshipRequestDeclined = "declined"
)

// RelationshipRequest is owned by the social-system collaborator; this core
// only scans pending rows to generate notifications.
type RelationshipRequest struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FromCharacterID uint      `gorm:"index;not null" json:"from_character_id"`
	ToCharacterID   uint      `gorm:"index;not null" json:"to_character_id"`
	Status          string    `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func (RelationshipRequest) TableName() string { return "relationship_requests" }

// WorldEvent is a scheduled in-game event; attendees are reminded shortly
// before it starts.
type WorldEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	LocationID uint      `gorm:"index;not null;default:0" json:"location_id"`
	StartsAt   time.Time `gorm:"index;not null" json:"starts_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (WorldEvent) TableName() string { return "world_events" }

type EventAttendance struct {
	EventID     uint `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	CharacterID uint `gorm:"primaryKey;autoIncrement:false" json:"character_id"`
}

func (EventAttendance) TableName() string { return "world_event_attendees" }
