package filter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(
	NewClassifier,
	NewAlerter,
	NewContentFilter,
)

// AuditSink 每次過濾都寫一筆 security event
type AuditSink interface {
	LogSecurityEvent(ctx context.Context, event core.SecurityEvent) error
}

type requestIDKey struct{}

// WithRequestID 讓 security event 帶上 request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type ContentFilter struct {
	patterns    *PatternSet
	classifier  Classifier
	threshold   float64
	failOpen    bool
	minSeverity core.Severity
	sink        AuditSink
	alerter     Alerter
	logger      *zap.Logger
	trace       *telemetry.Trace
	metric      *telemetry.Metric
	now         func() time.Time
}

func NewContentFilter(
	conf *config.Configuration,
	classifier Classifier,
	sink AuditSink,
	alerter Alerter,
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
) (*ContentFilter, error) {
	patterns, err := NewPatternSet(conf.Filter.Rules)
	if err != nil {
		return nil, err
	}
	minSeverity, ok := core.ParseSeverity(conf.Filter.Alert.MinSeverity)
	if !ok {
		minSeverity = core.SeverityHigh
	}
	if classifier == nil {
		classifier = NoopClassifier{}
	}
	if alerter == nil {
		alerter = NoopAlerter{}
	}
	return &ContentFilter{
		patterns:    patterns,
		classifier:  classifier,
		threshold:   conf.Filter.Classifier.Threshold,
		failOpen:    conf.Filter.Classifier.FailOpen,
		minSeverity: minSeverity,
		sink:        sink,
		alerter:     alerter,
		logger:      logger,
		trace:       trace,
		metric:      metric,
		now:         time.Now,
	}, nil
}

// Check 先比對規則，通過後才送分類器；分類器失敗時依 FAIL_OPEN 決定放行或回 UpstreamError
func (f *ContentFilter) Check(ctx context.Context, userID string, stage core.FilterStage, text string) (verdict core.FilterVerdict, returnedError error) {
	now := f.now()
	defer func() {
		f.emit(ctx, userID, stage, verdict, returnedError)
	}()

	if rule, hit := f.patterns.Match(text); hit {
		return f.reject(now, rule.Category, rule.Severity, core.FilterLayerPattern), nil
	}

	if text == "" {
		return core.PassedVerdict(now), nil
	}
	score, err := f.score(ctx, userID, text)
	if err != nil {
		if f.failOpen {
			f.logger.Warn("classifier failed, passing content",
				zap.String("classifier", string(f.classifier.Name())),
				zap.String("stage", string(stage)),
				zap.Error(err),
			)
			return core.PassedVerdict(now), nil
		}
		return core.FilterVerdict{}, cErr.Upstream("Content classification failed", err)
	}
	if score > f.threshold {
		return f.reject(now, core.CategoryToxicity, core.SeverityMedium, core.FilterLayerClassifier), nil
	}
	return core.PassedVerdict(now), nil
}

func (f *ContentFilter) score(ctx context.Context, userID, text string) (_ float64, returnedError error) {
	ctx, span, end := f.trace.WithSpan(ctx, string(core.SpanClassifier))
	defer func() { end(returnedError) }()
	f.trace.ApplyTraceAttributes(span, core.TraceFilterMeta{
		UserID:  userID,
		TextLen: len(text),
		Layer:   string(core.FilterLayerClassifier),
	})
	return f.classifier.Score(ctx, text)
}

func (f *ContentFilter) reject(now time.Time, category core.Category, severity core.Severity, layer core.FilterLayer) core.FilterVerdict {
	return core.FilterVerdict{
		Passed:    false,
		Reason:    fmt.Sprintf("Content policy violation: %s", category),
		Severity:  severity,
		Category:  category,
		Layer:     layer,
		Timestamp: now.Unix(),
	}
}

// emit 稽核、日誌、指標、告警；任何失敗都不影響判定結果
func (f *ContentFilter) emit(ctx context.Context, userID string, stage core.FilterStage, verdict core.FilterVerdict, checkErr error) {
	event := core.SecurityEvent{
		RequestID: requestIDFrom(ctx),
		UserID:    userID,
		Stage:     stage,
		Timestamp: verdict.Timestamp,
		Passed:    verdict.Passed,
		Reason:    verdict.Reason,
		Severity:  verdict.Severity,
		Category:  verdict.Category,
		Layer:     verdict.Layer,
	}
	if checkErr != nil {
		event.Timestamp = f.now().Unix()
		event.Error = checkErr.Error()
		if cause := errors.Unwrap(checkErr); cause != nil {
			event.Error = cause.Error()
		}
	}

	if f.sink != nil {
		if err := f.sink.LogSecurityEvent(ctx, event); err != nil {
			f.logger.Warn("failed to write security event", zap.String("userId", userID), zap.Error(err))
		}
	}

	result := "passed"
	fields := []zap.Field{
		zap.String("requestId", event.RequestID),
		zap.String("userId", userID),
		zap.String("stage", string(stage)),
	}
	switch {
	case checkErr != nil:
		result = "error"
		f.logger.Error("content filter error", append(fields, zap.Error(checkErr))...)
	case verdict.Passed:
		f.logger.Info("content filter passed", fields...)
	default:
		result = "blocked"
		f.logger.Warn("content filter blocked", append(fields,
			zap.String("category", string(verdict.Category)),
			zap.String("severity", string(verdict.Severity)),
			zap.String("layer", string(verdict.Layer)),
		)...)
	}

	if f.metric != nil && f.metric.FilterEventsTotal != nil {
		f.metric.FilterEventsTotal.WithLabelValues(string(stage), result, string(verdict.Category)).Inc()
	}

	if checkErr == nil && !verdict.Passed && verdict.Severity.Rank() >= f.minSeverity.Rank() {
		if err := f.alerter.Alert(ctx, event); err != nil {
			f.logger.Warn("failed to publish security alert", zap.String("userId", userID), zap.Error(err))
		}
	}
}
