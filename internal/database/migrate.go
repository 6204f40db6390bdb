package database

import (
	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"

	"gorm.io/gorm"
)

// Tables lists every table the migration owns, in apply order.
var Tables = []string{
	domain.ServerNode{}.TableName(),
	domain.UserSession{}.TableName(),
	domain.Character{}.TableName(),
	domain.CharacterMessage{}.TableName(),
	domain.Notification{}.TableName(),
	domain.RelationshipRequest{}.TableName(),
	domain.WorldEvent{}.TableName(),
	domain.EventAttendance{}.TableName(),
	domain.PerformanceLog{}.TableName(),
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ServerNode{},
		&domain.UserSession{},
		&domain.Character{},
		&domain.CharacterMessage{},
		&domain.Notification{},
		&domain.RelationshipRequest{},
		&domain.WorldEvent{},
		&domain.EventAttendance{},
		&domain.PerformanceLog{},
	)
}
