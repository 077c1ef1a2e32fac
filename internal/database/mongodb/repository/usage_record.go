package repository

import (
	"context"
	"time"

	"promptgate/internal/core"
	client "promptgate/internal/database/client"
	"promptgate/internal/database/mongodb/model"
	"promptgate/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type UsageRecordRepository struct {
	trace      *telemetry.Trace
	logger     *zap.Logger
	client     *mongo.Client
	collection *mongo.Collection
}

func NewUsageRecordRepository(trace *telemetry.Trace, logger *zap.Logger, mongoClient *client.MongoClient) *UsageRecordRepository {
	repository := &UsageRecordRepository{
		trace:      trace,
		logger:     logger,
		client:     mongoClient.Client(),
		collection: mongoClient.Database(string(core.MongoDBPromptGate)).Collection(string(core.MongoCollectionUsageRecords)),
	}
	contextValue, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// 索引建立失敗不阻擋啟動，但 requestID 唯一性會失效
	if err := repository.ensureIndexes(contextValue); err != nil {
		logger.Warn("failed to ensure usage record indexes",
			zap.String("collection", repository.collection.Name()),
			zap.Error(err),
		)
	}
	return repository
}

// 建索引：
// 1) userID+timestamp 查詢區間
// 2) requestID 唯一，重送時不重覆記錄
func (repository *UsageRecordRepository) ensureIndexes(contextValue context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userID", Value: 1},
				{Key: "timestamp", Value: 1},
			},
			Options: options.Index().SetName("idx_userID_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "requestID", Value: 1}},
			Options: options.Index().SetName("uniq_requestID").SetUnique(true),
		},
	}
	_, err := repository.collection.Indexes().CreateMany(contextValue, models)
	return err
}

// Append 新增一筆使用紀錄
func (repository *UsageRecordRepository) Append(contextValue context.Context, record core.UsageRecord) (returnedError error) {
	contextValue, span, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	repository.trace.ApplyTraceAttributes(span, core.TraceUsageWriteMeta{
		Backend:   string(core.Mongo),
		UserID:    record.UserID,
		RequestID: record.RequestID,
		Outcome:   string(record.Outcome),
		Triggered: record.ContentFilterTriggered,
	})

	document := model.NewUsageRecord(record)
	document.CreatedAt = time.Now().UTC()
	_, returnedError = repository.collection.InsertOne(contextValue, document)
	return returnedError
}

// ListByUser 取得 [from, to] 區間內的紀錄，依時間排序
func (repository *UsageRecordRepository) ListByUser(contextValue context.Context, userID string, from, to time.Time) (_ []core.UsageRecord, returnedError error) {
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	filter := bson.M{
		"userID": userID,
		"timestamp": bson.M{
			"$gte": from.UTC(),
			"$lte": to.UTC(),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, findError := repository.collection.Find(contextValue, filter, opts)
	if findError != nil {
		returnedError = findError
		return nil, returnedError
	}
	defer cursor.Close(contextValue)

	var results []core.UsageRecord
	for cursor.Next(contextValue) {
		var document model.UsageRecord
		if decodeError := cursor.Decode(&document); decodeError != nil {
			returnedError = decodeError
			return nil, returnedError
		}
		results = append(results, document.ToCore())
	}
	if cursorError := cursor.Err(); cursorError != nil {
		returnedError = cursorError
		return nil, returnedError
	}
	return results, nil
}

// HasRecords 是否曾有任何紀錄
func (repository *UsageRecordRepository) HasRecords(contextValue context.Context, userID string) (_ bool, returnedError error) {
	contextValue, _, endSpan := repository.trace.WithSpan(contextValue)
	defer func() { endSpan(returnedError) }()

	count, countError := repository.collection.CountDocuments(contextValue, bson.M{"userID": userID}, options.Count().SetLimit(1))
	if countError != nil {
		returnedError = countError
		return false, returnedError
	}
	return count > 0, nil
}

func (repository *UsageRecordRepository) Ping(contextValue context.Context) error {
	return repository.client.Ping(contextValue, readpref.Primary())
}

func (repository *UsageRecordRepository) Backend() core.DatabaseType {
	return core.Mongo
}
