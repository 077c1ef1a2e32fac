package repository

import (
	"context"
	"testing"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	client "promptgate/internal/database/client"
	"promptgate/internal/telemetry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepository(t *testing.T) (*UsageRecordRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	conf := config.Default()
	return NewUsageRecordRepository(&telemetry.Trace{}, &conf, client.WrapRedisClient(rdb, zap.NewNop())), mr
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	repository, mr := newTestRepository(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []core.UsageRecord{
		{UserID: "u1", Timestamp: base.Add(time.Hour), RequestID: "r2", InputTokens: 3, Outcome: core.OutcomeCompleted},
		{UserID: "u1", Timestamp: base, RequestID: "r1", InputTokens: 1, ContentFilterTriggered: true, Outcome: core.OutcomeInputFiltered},
		{UserID: "u1", Timestamp: base, RequestID: "r1b", Outcome: core.OutcomeCompleted},
		{UserID: "u1", Timestamp: base.Add(72 * time.Hour), RequestID: "r3", Outcome: core.OutcomeCompleted},
	}
	for _, record := range records {
		require.NoError(t, repository.Append(ctx, record))
	}
	assert.True(t, mr.Exists("promptgate:usage:u1"))

	got, err := repository.ListByUser(ctx, "u1", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "r2", got[2].RequestID)
	assert.Equal(t, 3, got[2].InputTokens)
	assert.True(t, got[2].Timestamp.Equal(base.Add(time.Hour)))
	assert.ElementsMatch(t, []string{"r1", "r1b"}, []string{got[0].RequestID, got[1].RequestID})

	known, err := repository.HasRecords(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, known)
	known, err = repository.HasRecords(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestPingAndBackend(t *testing.T) {
	repository, _ := newTestRepository(t)
	assert.NoError(t, repository.Ping(context.Background()))
	assert.Equal(t, core.Redis, repository.Backend())
}
