//go:build wireinject
// +build wireinject

package main

import (
	"promptgate/config"
	"promptgate/internal/command"
	"promptgate/internal/cron"
	"promptgate/internal/database"
	fluentdRepo "promptgate/internal/database/fluentd/repository"
	"promptgate/internal/handler"
	"promptgate/internal/middleware"
	"promptgate/internal/router"
	"promptgate/internal/service"
	"promptgate/internal/service/filter"
	"promptgate/internal/service/usage"
	"promptgate/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init application.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(wire.Build(
		database.ProviderSet,
		telemetry.ProviderSet,
		filter.ProviderSet,
		usage.NewAggregator,
		wire.Bind(new(filter.AuditSink), new(*fluentdRepo.LogRepository)),
		command.ProviderSet,
	))
}
