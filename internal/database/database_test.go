package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T, mutate func(*config.Configuration)) (core.DatabaseType, error) {
	t.Helper()
	conf := config.Default()
	mutate(&conf)
	store, cleanup, err := NewUsageStore(zap.NewNop(), &conf, &telemetry.Trace{}, aws.Config{})
	if err != nil {
		return "", err
	}
	t.Cleanup(cleanup)

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Append(ctx, core.UsageRecord{
		UserID:      "u1",
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		RequestID:   "req-1",
		RequestType: core.RequestTypeTextGeneration,
		Outcome:     core.OutcomeCompleted,
	}))
	known, err := store.HasRecords(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, known)
	return store.Backend(), nil
}

func TestNewUsageStoreMemory(t *testing.T) {
	backend, err := newStore(t, func(c *config.Configuration) { c.Usage.Backend = "memory" })
	require.NoError(t, err)
	assert.Equal(t, core.Memory, backend)
}

func TestNewUsageStoreSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "usage.db")
	backend, err := newStore(t, func(c *config.Configuration) {
		c.Usage.Backend = "sql"
		c.SQL.Driver = "sqlite"
		c.SQL.DSN = dsn
	})
	require.NoError(t, err)
	assert.Equal(t, core.SQL, backend)
}

func TestNewUsageStoreRejectsUnknownBackend(t *testing.T) {
	_, err := newStore(t, func(c *config.Configuration) { c.Usage.Backend = "cassandra" })
	assert.ErrorContains(t, err, "unsupported usage backend")

	_, err = newStore(t, func(c *config.Configuration) {
		c.Usage.Backend = "sql"
		c.SQL.Driver = "oracle"
	})
	assert.ErrorContains(t, err, "unsupported sql driver")
}
