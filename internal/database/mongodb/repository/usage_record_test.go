package repository

import (
	"context"
	"testing"
	"time"

	"promptgate/internal/core"
	client "promptgate/internal/database/client"
	"promptgate/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testNamespace = "promptgate_test.usage_records"

func newMockRepository(mt *mtest.T, logger *zap.Logger) *UsageRecordRepository {
	mt.AddMockResponses(mtest.CreateSuccessResponse())
	repository := NewUsageRecordRepository(&telemetry.Trace{}, logger, client.WrapMongoClient(mt.Client, "promptgate_test", logger))
	mt.ClearEvents()
	return repository
}

func usageDocument(requestID string, at time.Time, output int) bson.D {
	return bson.D{
		{Key: "userID", Value: "u1"},
		{Key: "timestamp", Value: at},
		{Key: "requestID", Value: requestID},
		{Key: "requestType", Value: core.RequestTypeTextGeneration},
		{Key: "modelID", Value: "mock"},
		{Key: "inputTokens", Value: 3},
		{Key: "outputTokens", Value: output},
		{Key: "responseTimeMs", Value: int64(120)},
		{Key: "contentFilterTriggered", Value: false},
		{Key: "outcome", Value: string(core.OutcomeCompleted)},
	}
}

func TestUsageRecordRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mt.Run("ensures indexes on construction", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		NewUsageRecordRepository(&telemetry.Trace{}, zap.NewNop(), client.WrapMongoClient(mt.Client, "promptgate_test", zap.NewNop()))

		event := mt.GetStartedEvent()
		require.NotNil(mt, event)
		assert.Equal(mt, "createIndexes", event.CommandName)
		assert.Equal(mt, "usage_records", event.Command.Lookup("createIndexes").StringValue())
		assert.Equal(mt, "idx_userID_timestamp", event.Command.Lookup("indexes", "0", "name").StringValue())
		assert.Equal(mt, "uniq_requestID", event.Command.Lookup("indexes", "1", "name").StringValue())
		assert.True(mt, event.Command.Lookup("indexes", "1", "unique").Boolean())
	})

	mt.Run("logs index failures", func(mt *mtest.T) {
		observed, logs := observer.New(zapcore.WarnLevel)
		logger := zap.New(observed)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index already exists with different options",
		}))

		repository := NewUsageRecordRepository(&telemetry.Trace{}, logger, client.WrapMongoClient(mt.Client, "promptgate_test", logger))
		require.NotNil(mt, repository)
		entries := logs.FilterMessage("failed to ensure usage record indexes").All()
		require.Len(mt, entries, 1)
		assert.Equal(mt, "usage_records", entries[0].ContextMap()["collection"])
	})

	mt.Run("append inserts one document", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repository.Append(context.Background(), core.UsageRecord{
			UserID:                 "u1",
			Timestamp:              base,
			RequestID:              "r1",
			RequestType:            core.RequestTypeTextGeneration,
			InputTokens:            4,
			OutputTokens:           9,
			ContentFilterTriggered: true,
			Outcome:                core.OutcomeOutputFiltered,
		}))

		event := mt.GetStartedEvent()
		require.NotNil(mt, event)
		assert.Equal(mt, "insert", event.CommandName)
		document := event.Command.Lookup("documents", "0").Document()
		assert.Equal(mt, "u1", document.Lookup("userID").StringValue())
		assert.Equal(mt, "r1", document.Lookup("requestID").StringValue())
		assert.Equal(mt, int64(9), document.Lookup("outputTokens").AsInt64())
		assert.True(mt, document.Lookup("contentFilterTriggered").Boolean())
		assert.Equal(mt, string(core.OutcomeOutputFiltered), document.Lookup("outcome").StringValue())
		assert.True(mt, document.Lookup("timestamp").Time().Equal(base))
	})

	mt.Run("append surfaces duplicate request ids", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repository.Append(context.Background(), core.UsageRecord{UserID: "u1", Timestamp: base, RequestID: "r1"})
		require.Error(mt, err)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
	})

	mt.Run("list queries the inclusive window in time order", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch,
			usageDocument("a", base, 5),
			usageDocument("b", base.Add(time.Hour), 7),
		))

		from, to := base, base.Add(24*time.Hour)
		got, err := repository.ListByUser(context.Background(), "u1", from, to)
		require.NoError(mt, err)

		event := mt.GetStartedEvent()
		require.NotNil(mt, event)
		assert.Equal(mt, "find", event.CommandName)
		assert.Equal(mt, "u1", event.Command.Lookup("filter", "userID").StringValue())
		assert.True(mt, event.Command.Lookup("filter", "timestamp", "$gte").Time().Equal(from))
		assert.True(mt, event.Command.Lookup("filter", "timestamp", "$lte").Time().Equal(to))
		assert.Equal(mt, int64(1), event.Command.Lookup("sort", "timestamp").AsInt64())

		require.Len(mt, got, 2)
		assert.Equal(mt, "a", got[0].RequestID)
		assert.Equal(mt, "b", got[1].RequestID)
		assert.Equal(mt, time.UTC, got[1].Timestamp.Location())
		assert.True(mt, got[1].Timestamp.Equal(base.Add(time.Hour)))
		assert.Equal(mt, 7, got[1].OutputTokens)
		assert.Equal(mt, int64(120), got[0].ResponseTimeMs)
		assert.Equal(mt, "mock", got[0].ModelID)
		assert.Equal(mt, core.OutcomeCompleted, got[0].Outcome)
	})

	mt.Run("list returns nothing for an empty window", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		got, err := repository.ListByUser(context.Background(), "u1", base, base.Add(time.Hour))
		require.NoError(mt, err)
		assert.Empty(mt, got)
	})

	mt.Run("list surfaces query failures", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		_, err := repository.ListByUser(context.Background(), "u1", base, base.Add(time.Hour))
		assert.Error(mt, err)
	})

	mt.Run("has records counts by user", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch),
		)

		known, err := repository.HasRecords(context.Background(), "u1")
		require.NoError(mt, err)
		assert.True(mt, known)

		event := mt.GetStartedEvent()
		require.NotNil(mt, event)
		assert.Equal(mt, "aggregate", event.CommandName)
		assert.Equal(mt, "u1", event.Command.Lookup("pipeline", "0", "$match", "userID").StringValue())

		known, err = repository.HasRecords(context.Background(), "ghost")
		require.NoError(mt, err)
		assert.False(mt, known)
	})

	mt.Run("ping and backend", func(mt *mtest.T) {
		repository := newMockRepository(mt, zap.NewNop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repository.Ping(context.Background()))
		assert.Equal(mt, core.Mongo, repository.Backend())
	})
}
