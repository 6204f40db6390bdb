package domain

import "time"

const (
	NodeStatusActive   = "active"
	NodeStatusInactive = "inactive"
)

// ServerNode is one running game server process in the shared registry.
// Rows are never deleted; re-registration upserts by ID and a stale node is
// only flipped to inactive by the maintenance sweep.
type ServerNode struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	URL           string    `gorm:"column:server_url;size:512;not null" json:"server_url"`
	Capacity      int       `gorm:"not null;default:0" json:"capacity"`
	ActiveUsers   int       `gorm:"not null;default:0" json:"active_users"`
	Status        string    `gorm:"size:16;not null;default:active;index" json:"status"`
	LastHeartbeat time.Time `gorm:"index;not null" json:"last_heartbeat"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ServerNode) TableName() string { return "server_nodes" }

// Stale reports whether the node has missed its heartbeat window as of now.
func (n *ServerNode) Stale(now time.Time, staleAfter time.Duration) bool {
	return now.Sub(n.LastHeartbeat) > staleAfter
}
