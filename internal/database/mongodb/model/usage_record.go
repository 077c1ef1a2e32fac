package model

import (
	"promptgate/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsageRecord struct {
	ID                     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID                 string             `json:"userID" bson:"userID"`
	Timestamp              time.Time          `json:"timestamp" bson:"timestamp"`
	RequestID              string             `json:"requestID" bson:"requestID"`
	RequestType            string             `json:"requestType" bson:"requestType"`
	ModelID                string             `json:"modelID,omitempty" bson:"modelID,omitempty"`
	InputTokens            int                `json:"inputTokens" bson:"inputTokens"`
	OutputTokens           int                `json:"outputTokens" bson:"outputTokens"`
	ResponseTimeMs         int64              `json:"responseTimeMs" bson:"responseTimeMs"`
	ContentFilterTriggered bool               `json:"contentFilterTriggered" bson:"contentFilterTriggered"`
	Outcome                string             `json:"outcome" bson:"outcome"`
	CreatedAt              time.Time          `json:"createdAt" bson:"createdAt"`
}

func NewUsageRecord(record core.UsageRecord) *UsageRecord {
	return &UsageRecord{
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
}

func (m *UsageRecord) ToCore() core.UsageRecord {
	return core.UsageRecord{
		UserID:                 m.UserID,
		Timestamp:              m.Timestamp.UTC(),
		RequestID:              m.RequestID,
		RequestType:            m.RequestType,
		ModelID:                m.ModelID,
		InputTokens:            m.InputTokens,
		OutputTokens:           m.OutputTokens,
		ResponseTimeMs:         m.ResponseTimeMs,
		ContentFilterTriggered: m.ContentFilterTriggered,
		Outcome:                core.UsageOutcome(m.Outcome),
	}
}
