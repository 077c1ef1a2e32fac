package service

import (
	fluentdRepo "promptgate/internal/database/fluentd/repository"
	"promptgate/internal/service/filter"
	"promptgate/internal/service/generation"
	"promptgate/internal/service/usage"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewHealthService,
	NewRequestValidator,
	NewGenerationService,
	wire.Bind(new(Validator), new(*RequestValidator)),
	wire.Bind(new(Filter), new(*filter.ContentFilter)),
	wire.Bind(new(Generator), new(*generation.Invoker)),
	wire.Bind(new(UsageRecorder), new(*usage.Recorder)),
	wire.Bind(new(filter.AuditSink), new(*fluentdRepo.LogRepository)),
	wire.Bind(new(usage.UsageLogger), new(*fluentdRepo.LogRepository)),
	filter.ProviderSet,
	generation.ProviderSet,
	usage.ProviderSet,
)
