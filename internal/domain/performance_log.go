package domain

import "time"

// PerformanceLog records one handled request. The heartbeat reads the rolling
// average duration from this table; maintenance prunes old rows.
type PerformanceLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NodeID     string    `gorm:"size:64;index" json:"node_id"`
	Path       string    `gorm:"size:255;not null" json:"path"`
	StatusCode int       `gorm:"not null" json:"status_code"`
	DurationMS int64     `gorm:"not null" json:"duration_ms"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (PerformanceLog) TableName() string { return "performance_logs" }
