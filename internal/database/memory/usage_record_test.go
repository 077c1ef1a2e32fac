package memory

import (
	"context"
	"testing"
	"time"

	"promptgate/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageRecordRepository(t *testing.T) {
	ctx := context.Background()
	repository := NewUsageRecordRepository()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{2 * time.Hour, 0, time.Hour, 48 * time.Hour} {
		require.NoError(t, repository.Append(ctx, core.UsageRecord{
			UserID:    "u1",
			Timestamp: base.Add(offset),
			RequestID: string(rune('a' + i)),
			Outcome:   core.OutcomeCompleted,
		}))
	}
	require.NoError(t, repository.Append(ctx, core.UsageRecord{UserID: "u2", Timestamp: base, RequestID: "z"}))

	records, err := repository.ListByUser(ctx, "u1", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{records[0].RequestID, records[1].RequestID, records[2].RequestID})

	known, err := repository.HasRecords(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, known)
	known, err = repository.HasRecords(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, known)

	assert.NoError(t, repository.Ping(ctx))
	assert.Equal(t, core.Memory, repository.Backend())
}

func TestUsageRecordRepositorySameInstant(t *testing.T) {
	ctx := context.Background()
	repository := NewUsageRecordRepository()
	ts := time.Now()
	require.NoError(t, repository.Append(ctx, core.UsageRecord{UserID: "u1", Timestamp: ts, RequestID: "r1"}))
	require.NoError(t, repository.Append(ctx, core.UsageRecord{UserID: "u1", Timestamp: ts, RequestID: "r2"}))

	records, err := repository.ListByUser(ctx, "u1", ts.Add(-time.Second), ts.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
