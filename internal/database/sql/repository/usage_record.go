package repository

import (
	"context"
	"time"

	"promptgate/internal/core"
	client "promptgate/internal/database/client"
	"promptgate/internal/telemetry"

	"gorm.io/gorm"
)

// UsageRecord usage_records 資料表
type UsageRecord struct {
	ID                     uint      `gorm:"primaryKey;autoIncrement"`
	UserID                 string    `gorm:"size:128;not null;index:idx_user_ts,priority:1"`
	Timestamp              time.Time `gorm:"not null;index:idx_user_ts,priority:2"`
	RequestID              string    `gorm:"size:64;not null;uniqueIndex"`
	RequestType            string    `gorm:"size:64;not null"`
	ModelID                string    `gorm:"size:256"`
	InputTokens            int       `gorm:"not null;default:0"`
	OutputTokens           int       `gorm:"not null;default:0"`
	ResponseTimeMs         int64     `gorm:"not null;default:0"`
	ContentFilterTriggered bool      `gorm:"not null;default:false"`
	Outcome                string    `gorm:"size:32;not null"`
	CreatedAt              time.Time
}

func (UsageRecord) TableName() string {
	return string(core.SQLTableUsageRecords)
}

type UsageRecordRepository struct {
	trace *telemetry.Trace
	db    *gorm.DB
}

// NewUsageRecordRepository 啟動時 AutoMigrate
func NewUsageRecordRepository(trace *telemetry.Trace, sqlClient *client.SQLClient) (*UsageRecordRepository, error) {
	repository := &UsageRecordRepository{trace: trace, db: sqlClient.DB()}
	if err := repository.db.AutoMigrate(&UsageRecord{}); err != nil {
		return nil, err
	}
	return repository, nil
}

func (repository *UsageRecordRepository) Append(contextValue context.Context, record core.UsageRecord) (returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceUsageWriteMeta{
		Backend:   string(core.SQL),
		UserID:    record.UserID,
		RequestID: record.RequestID,
		Outcome:   string(record.Outcome),
		Triggered: record.ContentFilterTriggered,
	})

	row := UsageRecord{
		UserID:                 record.UserID,
		Timestamp:              record.Timestamp.UTC(),
		RequestID:              record.RequestID,
		RequestType:            record.RequestType,
		ModelID:                record.ModelID,
		InputTokens:            record.InputTokens,
		OutputTokens:           record.OutputTokens,
		ResponseTimeMs:         record.ResponseTimeMs,
		ContentFilterTriggered: record.ContentFilterTriggered,
		Outcome:                string(record.Outcome),
	}
	returnedError = repository.db.WithContext(contextValue).Create(&row).Error
	return returnedError
}

func (repository *UsageRecordRepository) ListByUser(contextValue context.Context, userID string, from, to time.Time) (_ []core.UsageRecord, returnedError error) {
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	var rows []UsageRecord
	returnedError = repository.db.WithContext(contextValue).
		Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, from.UTC(), to.UTC()).
		Order("timestamp ASC").
		Find(&rows).Error
	if returnedError != nil {
		return nil, returnedError
	}
	records := make([]core.UsageRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, core.UsageRecord{
			UserID:                 row.UserID,
			Timestamp:              row.Timestamp.UTC(),
			RequestID:              row.RequestID,
			RequestType:            row.RequestType,
			ModelID:                row.ModelID,
			InputTokens:            row.InputTokens,
			OutputTokens:           row.OutputTokens,
			ResponseTimeMs:         row.ResponseTimeMs,
			ContentFilterTriggered: row.ContentFilterTriggered,
			Outcome:                core.UsageOutcome(row.Outcome),
		})
	}
	return records, nil
}

func (repository *UsageRecordRepository) HasRecords(contextValue context.Context, userID string) (bool, error) {
	var count int64
	err := repository.db.WithContext(contextValue).Model(&UsageRecord{}).
		Where("user_id = ?", userID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repository *UsageRecordRepository) Ping(contextValue context.Context) error {
	sqlDB, err := repository.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(contextValue)
}

func (repository *UsageRecordRepository) Backend() core.DatabaseType {
	return core.SQL
}
