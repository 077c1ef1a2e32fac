package handler

import (
	"promptgate/internal/service"
	"promptgate/internal/service/usage"

	"github.com/google/wire"
)

// ProviderSet Provider对象集合
var ProviderSet = wire.NewSet(
	NewGenerationHandler,
	NewUsageHandler,
	NewHealthHandler,
	wire.Bind(new(GenerationService), new(*service.GenerationService)),
	wire.Bind(new(UsageService), new(*usage.Aggregator)),
)
