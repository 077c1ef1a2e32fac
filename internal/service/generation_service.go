package service

import (
	"context"
	"errors"
	"time"

	"promptgate/internal/core"
	"promptgate/internal/dto"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/service/filter"
	"promptgate/internal/telemetry"

	"go.uber.org/zap"
)

// PipelineState 單次生成請求的狀態
type PipelineState string

const (
	StateReceived       PipelineState = "RECEIVED"
	StateValidated      PipelineState = "VALIDATED"
	StateInputFiltered  PipelineState = "INPUT_FILTERED"
	StateGenerated      PipelineState = "GENERATED"
	StateOutputFiltered PipelineState = "OUTPUT_FILTERED"
	StateRecorded       PipelineState = "RECORDED"
	StateResponded      PipelineState = "RESPONDED"
)

type Validator interface {
	Validate(raw []byte) (core.GenerationRequest, error)
}

type Filter interface {
	Check(ctx context.Context, userID string, stage core.FilterStage, text string) (core.FilterVerdict, error)
}

type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest) (core.GenerationResult, error)
}

type UsageRecorder interface {
	Record(ctx context.Context, record core.UsageRecord) error
}

// GenerationService 驗證 → 輸入過濾 → 生成 → 輸出過濾 → 記錄
type GenerationService struct {
	validator Validator
	filter    Filter
	generator Generator
	recorder  UsageRecorder
	logger    *zap.Logger
	trace     *telemetry.Trace
	metric    *telemetry.Metric
	now       func() time.Time
}

func NewGenerationService(
	validator Validator,
	filter Filter,
	generator Generator,
	recorder UsageRecorder,
	logger *zap.Logger,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
) *GenerationService {
	return &GenerationService{
		validator: validator,
		filter:    filter,
		generator: generator,
		recorder:  recorder,
		logger:    logger,
		trace:     trace,
		metric:    metric,
		now:       time.Now,
	}
}

func (s *GenerationService) Generate(ctx context.Context, raw []byte, requestID string) (*dto.GenerateResponse, error) {
	ctx = filter.WithRequestID(ctx, requestID)
	s.transition(requestID, StateReceived)
	received := s.now()

	req, err := s.validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.transition(requestID, StateValidated, zap.String("userId", req.UserID))

	record := core.UsageRecord{
		UserID:      req.UserID,
		Timestamp:   received.UTC(),
		RequestID:   requestID,
		RequestType: core.RequestTypeTextGeneration,
	}

	verdict, err := s.checkStage(ctx, core.SpanInputFilter, req.UserID, core.FilterStageInput, req.Prompt)
	if err != nil {
		record.Outcome = core.OutcomeUpstreamError
		s.record(ctx, record)
		return nil, err
	}
	if !verdict.Passed {
		record.ContentFilterTriggered = true
		record.Outcome = core.OutcomeInputFiltered
		s.record(ctx, record)
		return nil, contentPolicyError(verdict, req.UserID)
	}
	s.transition(requestID, StateInputFiltered)

	result, err := s.generate(ctx, req)
	if err != nil {
		record.Outcome = core.OutcomeUpstreamError
		s.record(ctx, record)
		return nil, err
	}
	s.transition(requestID, StateGenerated,
		zap.Int("inputTokens", result.InputTokens),
		zap.Int("outputTokens", result.OutputTokens),
	)
	record.ModelID = result.ModelID
	record.InputTokens = result.InputTokens
	record.OutputTokens = result.OutputTokens
	record.ResponseTimeMs = result.ResponseTimeMs

	verdict, err = s.checkStage(ctx, core.SpanOutputFilter, req.UserID, core.FilterStageOutput, result.GeneratedText)
	if err != nil {
		record.Outcome = core.OutcomeUpstreamError
		s.record(ctx, record)
		return nil, err
	}
	if !verdict.Passed {
		// 生成成本已發生，保留實際 token 數
		record.ContentFilterTriggered = true
		record.Outcome = core.OutcomeOutputFiltered
		s.record(ctx, record)
		return nil, contentPolicyError(verdict, req.UserID)
	}
	s.transition(requestID, StateOutputFiltered)

	record.Outcome = core.OutcomeCompleted
	s.record(ctx, record)
	s.transition(requestID, StateRecorded)

	result.ContentFilterStatus = core.ContentFilterStatusPassed
	resp := &dto.GenerateResponse{
		GeneratedText: result.GeneratedText,
		Metadata: dto.GenerateMetadata{
			InputTokens:         result.InputTokens,
			OutputTokens:        result.OutputTokens,
			ResponseTimeMs:      result.ResponseTimeMs,
			ModelID:             result.ModelID,
			UserID:              req.UserID,
			ContentFilterStatus: result.ContentFilterStatus,
		},
	}
	s.transition(requestID, StateResponded)
	return resp, nil
}

func (s *GenerationService) validate(ctx context.Context, raw []byte) (_ core.GenerationRequest, returnedError error) {
	_, _, end := s.trace.WithSpan(ctx, string(core.SpanValidate))
	defer func() { end(returnedError) }()
	return s.validator.Validate(raw)
}

func (s *GenerationService) checkStage(ctx context.Context, spanName core.TraceSpanName, userID string, stage core.FilterStage, text string) (verdict core.FilterVerdict, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx, string(spanName))
	defer func() {
		s.trace.ApplyTraceAttributes(span, core.TraceFilterMeta{
			UserID:   userID,
			Stage:    string(stage),
			TextLen:  len(text),
			Passed:   verdict.Passed,
			Layer:    string(verdict.Layer),
			Category: string(verdict.Category),
			Severity: string(verdict.Severity),
		})
		end(returnedError)
	}()
	verdict, returnedError = s.filter.Check(ctx, userID, stage, text)
	if returnedError != nil {
		var appErr *cErr.Error
		if !errors.As(returnedError, &appErr) {
			returnedError = cErr.Upstream("Content classification failed", returnedError)
		}
	}
	return verdict, returnedError
}

func (s *GenerationService) generate(ctx context.Context, req core.GenerationRequest) (_ core.GenerationResult, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx, string(core.SpanGenerate))
	defer func() { end(returnedError) }()

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		var appErr *cErr.Error
		if !errors.As(err, &appErr) {
			err = cErr.Upstream("Text generation failed", err)
		}
		return core.GenerationResult{}, err
	}
	s.trace.ApplyTraceAttributes(span, core.TraceGenerationMeta{
		UserID:       req.UserID,
		Model:        result.ModelID,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		LatencyMs:    result.ResponseTimeMs,
	})
	return result, nil
}

// record 寫入失敗只記錄，不影響回應
func (s *GenerationService) record(ctx context.Context, record core.UsageRecord) {
	ctx, _, end := s.trace.WithSpan(ctx, string(core.SpanRecord))
	err := s.recorder.Record(ctx, record)
	end(err)
	if err == nil {
		return
	}
	s.logger.Warn("usage record dropped",
		zap.String("requestId", record.RequestID),
		zap.String("userId", record.UserID),
		zap.String("outcome", string(record.Outcome)),
		zap.Error(err),
	)
	if s.metric != nil && s.metric.UsageRecordFailedTotal != nil {
		s.metric.UsageRecordFailedTotal.WithLabelValues(string(record.Outcome)).Inc()
	}
}

func (s *GenerationService) transition(requestID string, state PipelineState, fields ...zap.Field) {
	s.logger.Debug("generation state",
		append([]zap.Field{zap.String("requestId", requestID), zap.String("state", string(state))}, fields...)...,
	)
}

func contentPolicyError(verdict core.FilterVerdict, userID string) error {
	return cErr.ContentPolicy(dto.ContentPolicyDetails{
		Reason:    verdict.Reason,
		Severity:  string(verdict.Severity),
		UserID:    userID,
		Timestamp: verdict.Timestamp,
	})
}
