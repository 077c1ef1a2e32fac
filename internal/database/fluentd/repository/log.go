package repository

import (
	"context"
	"encoding/json"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/database/client"
	"promptgate/internal/database/fluentd/model"
)

const loggedAtLayout = "2006-01-02 15:04:05.999999 UTC"

// LogRepository 統一負責發送 Request/Response/Usage/SecurityEvent Log 到 Fluentd
type LogRepository struct {
	fluentdClient client.Client
	version       string
	now           func() time.Time
}

func NewLogRepository(config *config.Configuration, client client.Client) *LogRepository {
	version := "1.0.0"
	if config.App.Version != "" {
		version = config.App.Version
	}
	return &LogRepository{fluentdClient: client, version: version, now: time.Now}
}

func (repository *LogRepository) LogRequest(ctx context.Context, req model.RequestLog) error {
	if req.LoggedAt == "" {
		req.LoggedAt = repository.loggedAt()
	}
	if req.Version == "" {
		req.Version = repository.version
	}
	return repository.post(ctx, core.FluentdRequest, req)
}

func (repository *LogRepository) LogResponse(ctx context.Context, resp model.ResponseLog) error {
	if resp.LoggedAt == "" {
		resp.LoggedAt = repository.loggedAt()
	}
	if resp.Version == "" {
		resp.Version = repository.version
	}
	return repository.post(ctx, core.FluentdResponse, resp)
}

func (repository *LogRepository) LogUsage(ctx context.Context, record core.UsageRecord, provider string) error {
	usage := model.UsageLog{
		RequestID:              record.RequestID,
		UserID:                 record.UserID,
		RequestType:            record.RequestType,
		Provider:               provider,
		Model:                  record.ModelID,
		InputTokens:            record.InputTokens,
		OutputTokens:           record.OutputTokens,
		TokensTotal:            record.InputTokens + record.OutputTokens,
		ResponseTimeMs:         record.ResponseTimeMs,
		ContentFilterTriggered: record.ContentFilterTriggered,
		Outcome:                string(record.Outcome),
		Timestamp:              record.Timestamp.UTC().Format(time.RFC3339Nano),
		Version:                repository.version,
		LoggedAt:               repository.loggedAt(),
	}
	return repository.post(ctx, core.FluentdUsage, usage)
}

// LogSecurityEvent 實作 filter.AuditSink
func (repository *LogRepository) LogSecurityEvent(ctx context.Context, event core.SecurityEvent) error {
	eventLog := model.SecurityEventLog{
		RequestID: event.RequestID,
		UserID:    event.UserID,
		EventType: "content_filter",
		Stage:     string(event.Stage),
		Passed:    event.Passed,
		Reason:    event.Reason,
		Severity:  string(event.Severity),
		Category:  string(event.Category),
		Layer:     string(event.Layer),
		Error:     event.Error,
		Timestamp: event.Timestamp,
		Version:   repository.version,
		LoggedAt:  repository.loggedAt(),
	}
	return repository.post(ctx, core.FluentdSecurityEvent, eventLog)
}

func (repository *LogRepository) loggedAt() string {
	return repository.now().UTC().Format(loggedAtLayout)
}

// fluent-logger 只接受 map/struct msgpack，統一轉成 map 送出
func (repository *LogRepository) post(ctx context.Context, tag core.FluentdSubTag, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var fluentdMessage map[string]any
	if err := json.Unmarshal(b, &fluentdMessage); err != nil {
		return err
	}
	return repository.fluentdClient.Post(ctx, string(tag), fluentdMessage)
}
