package domain

import "time"

// UserSession is one session row per (user, session token). A bounded number
// of rows survive per user; the prune keeps the newest by LastActivity.
// The node that last touched the row is the implicit node binding.
type UserSession struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	SessionID    string    `gorm:"primaryKey;size:128" json:"session_id"`
	LastActivity time.Time `gorm:"index;not null" json:"last_activity"`
	NodeID       string    `gorm:"size:64;index" json:"node_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (UserSession) TableName() string { return "user_sessions" }

func (s *UserSession) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}
