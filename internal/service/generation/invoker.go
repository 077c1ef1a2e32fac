package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/telemetry"

	"go.uber.org/zap"
)

const generationFailedMsg = "Text generation failed"

// Invoker 依設定選擇 Generator，量測延遲並把所有錯誤包成 UpstreamError，不重試
type Invoker struct {
	registry *Registry
	provider core.ProviderName
	logger   *zap.Logger
	metric   *telemetry.Metric
	now      func() time.Time
}

func NewInvoker(registry *Registry, conf *config.Configuration, logger *zap.Logger, metric *telemetry.Metric) *Invoker {
	return &Invoker{
		registry: registry,
		provider: core.ProviderName(conf.Generation.Provider),
		logger:   logger,
		metric:   metric,
		now:      time.Now,
	}
}

func (i *Invoker) Provider() core.ProviderName {
	return i.provider
}

func (i *Invoker) Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
	generator, ok := i.registry.Get(i.provider)
	if !ok {
		return core.GenerationResult{}, i.fail(fmt.Errorf("unknown generation provider: %q", i.provider), 0)
	}

	start := i.now()
	out, err := generator.Generate(ctx, req)
	elapsed := i.now().Sub(start)
	if err != nil {
		return core.GenerationResult{}, i.fail(err, elapsed)
	}
	if out.Text == "" {
		return core.GenerationResult{}, i.fail(errors.New("generator returned empty output"), elapsed)
	}

	i.observe("success", elapsed)
	return core.GenerationResult{
		GeneratedText:  out.Text,
		InputTokens:    out.InputTokens,
		OutputTokens:   out.OutputTokens,
		ResponseTime:   elapsed,
		ResponseTimeMs: elapsed.Milliseconds(),
		ModelID:        out.ModelID,
	}, nil
}

func (i *Invoker) fail(err error, elapsed time.Duration) error {
	outcome := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		outcome = "timeout"
	}
	i.logger.Error("generation failed",
		zap.String("provider", string(i.provider)),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
		zap.Error(err),
	)
	i.observe(outcome, elapsed)
	return cErr.Upstream(generationFailedMsg, err)
}

func (i *Invoker) observe(outcome string, elapsed time.Duration) {
	if i.metric == nil {
		return
	}
	if i.metric.GenerationTotal != nil {
		i.metric.GenerationTotal.WithLabelValues(string(i.provider), outcome).Inc()
	}
	if i.metric.GenerationDuration != nil && elapsed > 0 {
		i.metric.GenerationDuration.WithLabelValues(string(i.provider)).Observe(elapsed.Seconds())
	}
}
