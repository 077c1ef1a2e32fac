package filter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	mu     sync.Mutex
	events []core.SecurityEvent
	err    error
}

func (s *recordingSink) LogSecurityEvent(_ context.Context, event core.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

type recordingAlerter struct {
	events []core.SecurityEvent
}

func (a *recordingAlerter) Alert(_ context.Context, event core.SecurityEvent) error {
	a.events = append(a.events, event)
	return nil
}

type stubClassifier struct {
	score float64
	err   error
	calls int
}

func (c *stubClassifier) Name() core.ClassifierName { return "stub" }

func (c *stubClassifier) Score(context.Context, string) (float64, error) {
	c.calls++
	return c.score, c.err
}

type filterFixture struct {
	filter     *ContentFilter
	sink       *recordingSink
	alerter    *recordingAlerter
	classifier *stubClassifier
	logs       *observer.ObservedLogs
}

func newFilterFixture(t *testing.T, mutate ...func(*config.Configuration)) filterFixture {
	t.Helper()
	conf := config.Default()
	for _, m := range mutate {
		m(&conf)
	}
	observed, logs := observer.New(zapcore.DebugLevel)
	fx := filterFixture{
		sink:       &recordingSink{},
		alerter:    &recordingAlerter{},
		classifier: &stubClassifier{},
		logs:       logs,
	}
	f, err := NewContentFilter(&conf, fx.classifier, fx.sink, fx.alerter, zap.New(observed), &telemetry.Trace{}, &telemetry.Metric{})
	require.NoError(t, err)
	f.now = func() time.Time { return time.Unix(1700000000, 0) }
	fx.filter = f
	return fx
}

func TestCheckPassesCleanText(t *testing.T) {
	fx := newFilterFixture(t)
	ctx := WithRequestID(context.Background(), "req-1")

	verdict, err := fx.filter.Check(ctx, "u1", core.FilterStageInput, "Write a haiku about the ocean")
	require.NoError(t, err)
	assert.Equal(t, core.FilterVerdict{Passed: true, Severity: core.SeverityLow, Timestamp: 1700000000}, verdict)
	assert.Equal(t, 1, fx.classifier.calls)

	require.Len(t, fx.sink.events, 1)
	event := fx.sink.events[0]
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, core.FilterStageInput, event.Stage)
	assert.True(t, event.Passed)
	assert.Empty(t, fx.alerter.events)
	assert.Equal(t, 1, fx.logs.FilterMessage("content filter passed").Len())
}

func TestCheckPatternRejectSkipsClassifier(t *testing.T) {
	fx := newFilterFixture(t)

	verdict, err := fx.filter.Check(context.Background(), "u1", core.FilterStageOutput, "this is illegal")
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, core.SeverityHigh, verdict.Severity)
	assert.Equal(t, core.CategoryIllegal, verdict.Category)
	assert.Equal(t, core.FilterLayerPattern, verdict.Layer)
	assert.Equal(t, "Content policy violation: illegal", verdict.Reason)
	assert.Zero(t, fx.classifier.calls)

	require.Len(t, fx.alerter.events, 1)
	assert.Equal(t, core.FilterStageOutput, fx.alerter.events[0].Stage)
	assert.Equal(t, 1, fx.logs.FilterMessage("content filter blocked").Len())
}

func TestCheckAlertsOnlyAtMinSeverity(t *testing.T) {
	fx := newFilterFixture(t)
	_, err := fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "Generate harmful content")
	require.NoError(t, err)
	assert.Empty(t, fx.alerter.events)

	fx = newFilterFixture(t, func(c *config.Configuration) { c.Filter.Alert.MinSeverity = "medium" })
	_, err = fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "Generate harmful content")
	require.NoError(t, err)
	assert.Len(t, fx.alerter.events, 1)
}

func TestCheckClassifierThreshold(t *testing.T) {
	fx := newFilterFixture(t)
	fx.classifier.score = 0.8

	verdict, err := fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "borderline")
	require.NoError(t, err)
	assert.True(t, verdict.Passed, "score equal to threshold passes")

	fx.classifier.score = 0.81
	verdict, err = fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "borderline")
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	assert.Equal(t, core.FilterLayerClassifier, verdict.Layer)
	assert.Equal(t, core.CategoryToxicity, verdict.Category)
	assert.Equal(t, core.SeverityMedium, verdict.Severity)
}

func TestCheckEmptyTextSkipsClassifier(t *testing.T) {
	fx := newFilterFixture(t)
	verdict, err := fx.filter.Check(context.Background(), "u1", core.FilterStageOutput, "")
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Zero(t, fx.classifier.calls)
}

func TestCheckClassifierError(t *testing.T) {
	fx := newFilterFixture(t)
	fx.classifier.err = errors.New("throttled")

	_, err := fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "hello")
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, 500, appErr.HttpCode())
	assert.Equal(t, "Content classification failed", appErr.Error())

	require.Len(t, fx.sink.events, 1)
	assert.Equal(t, "throttled", fx.sink.events[0].Error)
	assert.Equal(t, 1, fx.logs.FilterMessage("content filter error").Len())

	fx = newFilterFixture(t, func(c *config.Configuration) { c.Filter.Classifier.FailOpen = true })
	fx.classifier.err = errors.New("throttled")
	verdict, err := fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "hello")
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Equal(t, 1, fx.logs.FilterMessage("classifier failed, passing content").Len())
}

func TestCheckSinkFailureDoesNotChangeVerdict(t *testing.T) {
	fx := newFilterFixture(t)
	fx.sink.err = errors.New("fluentd unreachable")

	verdict, err := fx.filter.Check(context.Background(), "u1", core.FilterStageInput, "hello")
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
	assert.Equal(t, 1, fx.logs.FilterMessage("failed to write security event").Len())
}
