package job

import (
	"context"
	"time"

	"promptgate/internal/core"
	"promptgate/internal/telemetry"

	"go.uber.org/zap"
)

type Prober interface {
	Probe(ctx context.Context) error
	IsReady() bool
}

// UsageStoreProbe 定期 ping 使用紀錄儲存後端並更新 readiness
type UsageStoreProbe struct {
	logger *zap.Logger
	trace  *telemetry.Trace
	prober Prober
}

func NewUsageStoreProbe(logger *zap.Logger, trace *telemetry.Trace, prober Prober) *UsageStoreProbe {
	return &UsageStoreProbe{logger: logger, trace: trace, prober: prober}
}

func (j *UsageStoreProbe) Run() {
	ctx, _, end := j.trace.WithSpan(context.Background(), string(core.SpanStoreProbe))
	wasReady := j.prober.IsReady()
	start := time.Now()
	err := j.prober.Probe(ctx)
	end(err)

	switch {
	case err != nil && wasReady:
		j.logger.Error("usage store unreachable, marking not ready", zap.Error(err))
	case err != nil:
		j.logger.Warn("usage store still unreachable", zap.Error(err))
	case !wasReady:
		j.logger.Info("usage store reachable, marking ready", zap.Duration("latency", time.Since(start)))
	}
}
