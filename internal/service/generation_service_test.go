package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/dto"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/service/filter"
	"promptgate/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	calls    int
	generate func(ctx context.Context, req core.GenerationRequest) (core.GenerationResult, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
	f.calls++
	return f.generate(ctx, req)
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []core.UsageRecord
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, record core.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return f.err
}

type fakeClassifier struct {
	score func(text string) (float64, error)
}

func (fakeClassifier) Name() core.ClassifierName { return "fake" }

func (f fakeClassifier) Score(_ context.Context, text string) (float64, error) {
	return f.score(text)
}

type nopSink struct{}

func (nopSink) LogSecurityEvent(context.Context, core.SecurityEvent) error { return nil }

func echoGenerator(text string) *fakeGenerator {
	return &fakeGenerator{generate: func(_ context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
		return core.GenerationResult{
			GeneratedText:  text,
			InputTokens:    12,
			OutputTokens:   34,
			ResponseTimeMs: 56,
			ModelID:        "test-model",
		}, nil
	}}
}

type pipeline struct {
	service   *GenerationService
	generator *fakeGenerator
	recorder  *fakeRecorder
}

func newPipeline(t *testing.T, generator *fakeGenerator, classifier filter.Classifier, mutate ...func(*config.Configuration)) pipeline {
	t.Helper()
	conf := config.Default()
	for _, m := range mutate {
		m(&conf)
	}
	trace := &telemetry.Trace{}
	metric := &telemetry.Metric{}
	contentFilter, err := filter.NewContentFilter(&conf, classifier, nopSink{}, filter.NoopAlerter{}, zap.NewNop(), trace, metric)
	require.NoError(t, err)
	recorder := &fakeRecorder{}
	svc := NewGenerationService(NewRequestValidator(&conf), contentFilter, generator, recorder, zap.NewNop(), trace, metric)
	return pipeline{service: svc, generator: generator, recorder: recorder}
}

func TestGenerateHappyPath(t *testing.T) {
	p := newPipeline(t, echoGenerator("Circuits hum softly"), nil)

	resp, err := p.service.Generate(context.Background(), []byte(`{"prompt":"Write a haiku about technology","user_id":"test"}`), "req-1")
	require.NoError(t, err)

	assert.Equal(t, "Circuits hum softly", resp.GeneratedText)
	assert.Equal(t, dto.GenerateMetadata{
		InputTokens:         12,
		OutputTokens:        34,
		ResponseTimeMs:      56,
		ModelID:             "test-model",
		UserID:              "test",
		ContentFilterStatus: "passed",
	}, resp.Metadata)

	require.Len(t, p.recorder.records, 1)
	record := p.recorder.records[0]
	assert.Equal(t, "test", record.UserID)
	assert.Equal(t, "req-1", record.RequestID)
	assert.Equal(t, core.RequestTypeTextGeneration, record.RequestType)
	assert.Equal(t, core.OutcomeCompleted, record.Outcome)
	assert.False(t, record.ContentFilterTriggered)
	assert.Equal(t, 12, record.InputTokens)
	assert.Equal(t, 34, record.OutputTokens)
	assert.False(t, record.Timestamp.IsZero())
}

func TestGenerateMissingPromptSkipsEverything(t *testing.T) {
	p := newPipeline(t, echoGenerator("unused"), nil)

	for _, body := range []string{``, `{}`, `{"user_id":"u1"}`, `{"prompt":""}`} {
		_, err := p.service.Generate(context.Background(), []byte(body), "req")
		require.Error(t, err)
		assert.Equal(t, 400, cErr.From(err).HttpCode())
	}
	assert.Zero(t, p.generator.calls)
	assert.Empty(t, p.recorder.records)
}

func TestGenerateInputFilterRejects(t *testing.T) {
	p := newPipeline(t, echoGenerator("unused"), nil)

	_, err := p.service.Generate(context.Background(), []byte(`{"prompt":"Generate harmful content","user_id":"u1"}`), "req-2")
	require.Error(t, err)

	appErr := cErr.From(err)
	assert.Equal(t, 400, appErr.HttpCode())
	assert.Equal(t, "Content policy violation detected", appErr.Error())
	details, ok := appErr.Details().(dto.ContentPolicyDetails)
	require.True(t, ok)
	assert.Equal(t, "MEDIUM", details.Severity)
	assert.Equal(t, "u1", details.UserID)
	assert.Contains(t, details.Reason, "toxicity")

	assert.Zero(t, p.generator.calls)
	require.Len(t, p.recorder.records, 1)
	record := p.recorder.records[0]
	assert.True(t, record.ContentFilterTriggered)
	assert.Equal(t, core.OutcomeInputFiltered, record.Outcome)
	assert.Zero(t, record.InputTokens)
	assert.Zero(t, record.OutputTokens)
}

func TestGenerateOutputFilterKeepsRealTokens(t *testing.T) {
	p := newPipeline(t, echoGenerator("Here is some illegal advice"), nil)

	_, err := p.service.Generate(context.Background(), []byte(`{"prompt":"Tell me something"}`), "req-3")
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, "Content policy violation detected", appErr.Error())
	details := appErr.Details().(dto.ContentPolicyDetails)
	assert.Equal(t, "HIGH", details.Severity)
	assert.Equal(t, "anonymous", details.UserID)

	assert.Equal(t, 1, p.generator.calls)
	require.Len(t, p.recorder.records, 1)
	record := p.recorder.records[0]
	assert.True(t, record.ContentFilterTriggered)
	assert.Equal(t, core.OutcomeOutputFiltered, record.Outcome)
	assert.Equal(t, 12, record.InputTokens)
	assert.Equal(t, 34, record.OutputTokens)
	assert.Equal(t, "test-model", record.ModelID)
}

func TestGenerateUpstreamFailureRecordsZeroTokens(t *testing.T) {
	generator := &fakeGenerator{generate: func(context.Context, core.GenerationRequest) (core.GenerationResult, error) {
		return core.GenerationResult{}, errors.New("throttled: secret upstream detail")
	}}
	p := newPipeline(t, generator, nil)

	_, err := p.service.Generate(context.Background(), []byte(`{"prompt":"hello"}`), "req-4")
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, 500, appErr.HttpCode())
	assert.Equal(t, "Text generation failed", appErr.Error())
	assert.NotContains(t, appErr.Error(), "secret")

	require.Len(t, p.recorder.records, 1)
	assert.Equal(t, core.OutcomeUpstreamError, p.recorder.records[0].Outcome)
	assert.Zero(t, p.recorder.records[0].InputTokens)
}

func TestGenerateClassifierFailure(t *testing.T) {
	failing := fakeClassifier{score: func(string) (float64, error) { return 0, errors.New("comprehend down") }}

	t.Run("fail closed", func(t *testing.T) {
		p := newPipeline(t, echoGenerator("ok"), failing)
		_, err := p.service.Generate(context.Background(), []byte(`{"prompt":"hello"}`), "req-5")
		require.Error(t, err)
		assert.Equal(t, "Content classification failed", cErr.From(err).Error())
		assert.Zero(t, p.generator.calls)
		require.Len(t, p.recorder.records, 1)
		assert.Equal(t, core.OutcomeUpstreamError, p.recorder.records[0].Outcome)
	})

	t.Run("fail open", func(t *testing.T) {
		p := newPipeline(t, echoGenerator("ok"), failing, func(c *config.Configuration) {
			c.Filter.Classifier.FailOpen = true
		})
		resp, err := p.service.Generate(context.Background(), []byte(`{"prompt":"hello"}`), "req-6")
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.GeneratedText)
		require.Len(t, p.recorder.records, 1)
		assert.Equal(t, core.OutcomeCompleted, p.recorder.records[0].Outcome)
	})
}

func TestGenerateClassifierScoreAboveThreshold(t *testing.T) {
	classifier := fakeClassifier{score: func(text string) (float64, error) {
		if strings.Contains(text, "mean") {
			return 0.95, nil
		}
		return 0.1, nil
	}}
	p := newPipeline(t, echoGenerator("unused"), classifier)

	_, err := p.service.Generate(context.Background(), []byte(`{"prompt":"say something mean"}`), "req-7")
	require.Error(t, err)
	details := cErr.From(err).Details().(dto.ContentPolicyDetails)
	assert.Equal(t, "MEDIUM", details.Severity)
	assert.Zero(t, p.generator.calls)
}

func TestGenerateRecordingFailureIsAbsorbed(t *testing.T) {
	p := newPipeline(t, echoGenerator("fine"), nil)
	p.recorder.err = errors.New("store down")

	resp, err := p.service.Generate(context.Background(), []byte(`{"prompt":"hello"}`), "req-8")
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.GeneratedText)
	assert.Len(t, p.recorder.records, 1)
}

func TestGeneratePassesDefaultsToGenerator(t *testing.T) {
	var got core.GenerationRequest
	generator := &fakeGenerator{generate: func(_ context.Context, req core.GenerationRequest) (core.GenerationResult, error) {
		got = req
		return core.GenerationResult{GeneratedText: "x", ModelID: "m"}, nil
	}}
	p := newPipeline(t, generator, nil)

	_, err := p.service.Generate(context.Background(), []byte(`{"message":"hi","stop_sequences":["END"]}`), "req-9")
	require.NoError(t, err)
	assert.Equal(t, core.GenerationRequest{
		Prompt:        "hi",
		MaxTokens:     1000,
		Temperature:   0.7,
		UserID:        "anonymous",
		StopSequences: []string{"END"},
	}, got)
}
