package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
)

var ErrNodeNotFound = errors.New("server node not found")

// NodeRepository is the shared registry of game server processes. Every write
// is an idempotent upsert keyed by node id, so concurrent heartbeats from
// different nodes never conflict.
type NodeRepository interface {
	Register(node *domain.ServerNode) error
	UpdateLoad(nodeID string, activeUsers int) error
	FindByID(nodeID string) (*domain.ServerNode, error)
	ListActive() ([]domain.ServerNode, error)
	SweepStale(staleAfter time.Duration) (int64, error)
}

type GormNodeRepository struct{ db *gorm.DB }

func NewNodeRepository(db *gorm.DB) NodeRepository {
	return &GormNodeRepository{db: db}
}

// Register upserts the node row, always refreshing the heartbeat and forcing
// the status back to active. A node recovering from a crash re-enters the
// rotation on its first successful register.
func (r *GormNodeRepository) Register(node *domain.ServerNode) error {
	node.Status = domain.NodeStatusActive
	node.LastHeartbeat = time.Now().UTC()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"server_url", "capacity", "active_users", "status", "last_heartbeat", "updated_at",
		}),
	}).Create(node).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "server_node", "register", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "server_node", "register", "success")
	return nil
}

// UpdateLoad refreshes the reported load and heartbeat without touching the
// status column.
func (r *GormNodeRepository) UpdateLoad(nodeID string, activeUsers int) error {
	res := r.db.Model(&domain.ServerNode{}).Where("id = ?", nodeID).Updates(map[string]any{
		"active_users":   activeUsers,
		"last_heartbeat": time.Now().UTC(),
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "server_node", "update_load", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "server_node", "update_load", "not_found")
		return ErrNodeNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "server_node", "update_load", "success")
	return nil
}

func (r *GormNodeRepository) FindByID(nodeID string) (*domain.ServerNode, error) {
	var node domain.ServerNode
	err := r.db.Where("id = ?", nodeID).First(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	return &node, nil
}

// ListActive returns active nodes lightest first. The ordering, with id as
// tie-break, is the contract the load balancer's redirect decision depends on.
func (r *GormNodeRepository) ListActive() ([]domain.ServerNode, error) {
	var nodes []domain.ServerNode
	err := r.db.Where("status = ?", domain.NodeStatusActive).
		Order("active_users asc").Order("id asc").
		Find(&nodes).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "server_node", "list_active", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "server_node", "list_active", "success")
	return nodes, nil
}

// SweepStale flips nodes whose heartbeat is older than staleAfter from active
// to inactive and returns the number of transitions. The predicate is a
// monotone timestamp comparison, so concurrent sweeps from several nodes are
// safe without locking.
func (r *GormNodeRepository) SweepStale(staleAfter time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-staleAfter)
	res := r.db.Model(&domain.ServerNode{}).
		Where("status = ? AND last_heartbeat < ?", domain.NodeStatusActive, cutoff).
		Update("status", domain.NodeStatusInactive)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "server_node", "sweep_stale", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "server_node", "sweep_stale", "success")
	return res.RowsAffected, nil
}
