package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
)

// RelationshipRepository exposes the social-system facts the notification
// generators scan. Pending requests belong to the social collaborator; this
// core only reads them.
type RelationshipRepository interface {
	ListPending() ([]domain.RelationshipRequest, error)
}

type GormRelationshipRepository struct{ db *gorm.DB }

func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &GormRelationshipRepository{db: db}
}

func (r *GormRelationshipRepository) ListPending() ([]domain.RelationshipRequest, error) {
	var reqs []domain.RelationshipRequest
	err := r.db.Where("status = ?", domain.RelationshipRequestPending).
		Order("created_at asc").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// EventRepository exposes scheduled world events and their attendees for the
// event-reminder generator.
type EventRepository interface {
	StartingBetween(from, to time.Time) ([]domain.WorldEvent, error)
	Attendees(eventID uint) ([]uint, error)
}

type GormEventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) StartingBetween(from, to time.Time) ([]domain.WorldEvent, error) {
	var events []domain.WorldEvent
	err := r.db.Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) Attendees(eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&domain.EventAttendance{}).
		Where("event_id = ?", eventID).
		Order("character_id asc").
		Pluck("character_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
