package usage

import (
	"context"
	"fmt"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/telemetry"

	"go.uber.org/zap"
)

const defaultWriteTimeout = 3 * time.Second

// RecordingError 寫入失敗；只記錄，不回傳給呼叫端
type RecordingError struct {
	UserID    string
	RequestID string
	Err       error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("record usage for user %s (request %s): %v", e.UserID, e.RequestID, e.Err)
}

func (e *RecordingError) Unwrap() error {
	return e.Err
}

// UsageLogger fluentd usage_log 副本
type UsageLogger interface {
	LogUsage(ctx context.Context, record core.UsageRecord, provider string) error
}

type Recorder struct {
	store        Store
	usageLogger  UsageLogger
	logger       *zap.Logger
	metric       *telemetry.Metric
	provider     string
	writeTimeout time.Duration
}

func NewRecorder(store Store, usageLogger UsageLogger, conf *config.Configuration, logger *zap.Logger, metric *telemetry.Metric) *Recorder {
	timeout := time.Duration(conf.Usage.WriteTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Recorder{
		store:        store,
		usageLogger:  usageLogger,
		logger:       logger,
		metric:       metric,
		provider:     conf.Generation.Provider,
		writeTimeout: timeout,
	}
}

// Record 寫入不受請求取消影響，但有獨立逾時
func (r *Recorder) Record(ctx context.Context, record core.UsageRecord) error {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
	defer cancel()

	backend := string(r.store.Backend())
	if err := r.store.Append(writeCtx, record); err != nil {
		r.countWrite(backend, "error")
		return &RecordingError{UserID: record.UserID, RequestID: record.RequestID, Err: err}
	}
	r.countWrite(backend, "success")
	r.countTokens(record)

	if r.usageLogger != nil {
		if err := r.usageLogger.LogUsage(writeCtx, record, r.provider); err != nil {
			r.logger.Warn("failed to ship usage log",
				zap.String("requestId", record.RequestID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (r *Recorder) countWrite(backend, result string) {
	if r.metric != nil && r.metric.UsageRecordsTotal != nil {
		r.metric.UsageRecordsTotal.WithLabelValues(backend, result).Inc()
	}
}

func (r *Recorder) countTokens(record core.UsageRecord) {
	if r.metric == nil || r.metric.TokensTotal == nil {
		return
	}
	if record.InputTokens > 0 {
		r.metric.TokensTotal.WithLabelValues("input").Add(float64(record.InputTokens))
	}
	if record.OutputTokens > 0 {
		r.metric.TokensTotal.WithLabelValues("output").Add(float64(record.OutputTokens))
	}
}
