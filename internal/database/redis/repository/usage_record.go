package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	client "promptgate/internal/database/client"
	"promptgate/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

// UsageRecordRepository 每位使用者一個 sorted set，score 為毫秒時間戳
type UsageRecordRepository struct {
	trace     *telemetry.Trace
	client    *redis.Client
	keyPrefix string
}

func NewUsageRecordRepository(trace *telemetry.Trace, config *config.Configuration, client *client.RedisClient) *UsageRecordRepository {
	prefix := config.Usage.RedisKeyPrefix
	if prefix == "" {
		prefix = fmt.Sprintf("%s:%s", core.RedisKeyServerName, core.RedisKeyUsage)
	}
	return &UsageRecordRepository{trace: trace, client: client.Client(), keyPrefix: prefix}
}

// Append ZADD 一筆紀錄；member 含 request_id，同一毫秒的紀錄不會互相覆蓋
func (repository *UsageRecordRepository) Append(contextValue context.Context, record core.UsageRecord) (returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceUsageWriteMeta{
		Backend:   string(core.Redis),
		UserID:    record.UserID,
		RequestID: record.RequestID,
		Outcome:   string(record.Outcome),
		Triggered: record.ContentFilterTriggered,
	})

	record.Timestamp = record.Timestamp.UTC()
	member, marshalError := json.Marshal(record)
	if marshalError != nil {
		returnedError = marshalError
		return returnedError
	}
	returnedError = repository.client.ZAdd(contextValue, repository.buildKey(record.UserID), redis.Z{
		Score:  float64(record.Timestamp.UnixMilli()),
		Member: string(member),
	}).Err()
	return returnedError
}

// ListByUser ZRANGEBYSCORE [from, to]
func (repository *UsageRecordRepository) ListByUser(contextValue context.Context, userID string, from, to time.Time) (_ []core.UsageRecord, returnedError error) {
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	members, rangeError := repository.client.ZRangeByScore(contextValue, repository.buildKey(userID), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if rangeError != nil {
		returnedError = rangeError
		return nil, returnedError
	}

	records := make([]core.UsageRecord, 0, len(members))
	for _, member := range members {
		var record core.UsageRecord
		if unmarshalError := json.Unmarshal([]byte(member), &record); unmarshalError != nil {
			returnedError = fmt.Errorf("decode usage record: %w", unmarshalError)
			return nil, returnedError
		}
		records = append(records, record)
	}
	return records, nil
}

func (repository *UsageRecordRepository) HasRecords(contextValue context.Context, userID string) (bool, error) {
	n, err := repository.client.Exists(contextValue, repository.buildKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (repository *UsageRecordRepository) Ping(contextValue context.Context) error {
	return repository.client.Ping(contextValue).Err()
}

func (repository *UsageRecordRepository) Backend() core.DatabaseType {
	return core.Redis
}

// buildKey 建構使用紀錄的 Redis key
func (repository *UsageRecordRepository) buildKey(userID string) string {
	return fmt.Sprintf("%s:%s", repository.keyPrefix, userID)
}
