//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/ibrahimvarli/noresrp-sub001/internal/app"
	"github.com/ibrahimvarli/noresrp-sub001/internal/database"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		InfraSet,
		RepositorySet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}

func InitializeMaintenance() (*Maintenance, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		InfraSet,
		RepositorySet,
		ServiceSet,
		NewMaintenance,
	))
}

func InitializeMigrationRunner() (*MigrationRunner, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		database.Open,
		NewMigrationRunner,
	))
}
