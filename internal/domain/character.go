package domain

import "time"

// Character is the slice of the character directory this core reads: identity,
// owning user and current location. The game-rule subsystems own the rest of
// the character state.
type Character struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	LocationID uint      `gorm:"index;not null;default:0" json:"location_id"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Character) TableName() string { return "characters" }

// CharacterSummary is the read-only projection served by the presence view.
type CharacterSummary struct {
	CharacterID  uint      `json:"character_id"`
	Name         string    `json:"name"`
	LocationID   uint      `json:"location_id"`
	LastActivity time.Time `json:"last_activity"`
}
