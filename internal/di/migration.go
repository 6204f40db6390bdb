package di

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/ibrahimvarli/noresrp-sub001/internal/database"
)

type MigrationRunner struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewMigrationRunner(db *gorm.DB, logger *slog.Logger) *MigrationRunner {
	return &MigrationRunner{db: db, logger: logger}
}

func (r *MigrationRunner) Run() error {
	r.logger.Info("running schema migration")
	return database.Migrate(r.db)
}

func (r *MigrationRunner) DB() *gorm.DB { return r.db }
