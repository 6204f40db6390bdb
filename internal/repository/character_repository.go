package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
)

var ErrCharacterNotFound = errors.New("character not found")

// CharacterRepository is the read-only slice of the character directory this
// core needs: existence checks for message participants and location lookups
// for the presence view. The game-rule subsystems own the writes.
type CharacterRepository interface {
	FindByID(id uint) (*domain.Character, error)
	Exists(id uint) (bool, error)
	ListByLocation(locationID uint, limit int) ([]domain.Character, error)
}

type GormCharacterRepository struct{ db *gorm.DB }

func NewCharacterRepository(db *gorm.DB) CharacterRepository {
	return &GormCharacterRepository{db: db}
}

func (r *GormCharacterRepository) FindByID(id uint) (*domain.Character, error) {
	var c domain.Character
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormCharacterRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Character{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormCharacterRepository) ListByLocation(locationID uint, limit int) ([]domain.Character, error) {
	limit = normalizeLimit(limit, DefaultPresenceLimit, MaxPresenceLimit)
	var chars []domain.Character
	err := r.db.Where("location_id = ? AND is_active = ?", locationID, true).
		Limit(limit).
		Find(&chars).Error
	if err != nil {
		return nil, err
	}
	return chars, nil
}
