package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/observability"
)

type PerfLogRepository interface {
	Record(entry *domain.PerformanceLog) error
	// AverageDurationMS is the rolling average request latency the heartbeat
	// reports. Zero when no requests were recorded in the window.
	AverageDurationMS(nodeID string, since time.Time) (float64, error)
	Prune(olderThan time.Duration) (int64, error)
}

type GormPerfLogRepository struct{ db *gorm.DB }

func NewPerfLogRepository(db *gorm.DB) PerfLogRepository {
	return &GormPerfLogRepository{db: db}
}

func (r *GormPerfLogRepository) Record(entry *domain.PerformanceLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "performance_log", "record", "error")
		return err
	}
	return nil
}

func (r *GormPerfLogRepository) AverageDurationMS(nodeID string, since time.Time) (float64, error) {
	var avg *float64
	err := r.db.Model(&domain.PerformanceLog{}).
		Where("node_id = ? AND created_at >= ?", nodeID, since).
		Select("AVG(duration_ms)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *GormPerfLogRepository) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := r.db.Where("created_at < ?", cutoff).Delete(&domain.PerformanceLog{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "performance_log", "prune", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "performance_log", "prune", "success")
	return res.RowsAffected, nil
}
