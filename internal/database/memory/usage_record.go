package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"promptgate/internal/core"
)

// UsageRecordRepository 僅供本地開發與測試，重啟即遺失
type UsageRecordRepository struct {
	mu      sync.RWMutex
	records map[string][]core.UsageRecord
}

func NewUsageRecordRepository() *UsageRecordRepository {
	return &UsageRecordRepository{records: make(map[string][]core.UsageRecord)}
}

func (repository *UsageRecordRepository) Append(_ context.Context, record core.UsageRecord) error {
	record.Timestamp = record.Timestamp.UTC()
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.records[record.UserID] = append(repository.records[record.UserID], record)
	return nil
}

func (repository *UsageRecordRepository) ListByUser(_ context.Context, userID string, from, to time.Time) ([]core.UsageRecord, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	var out []core.UsageRecord
	for _, record := range repository.records[userID] {
		if record.Timestamp.Before(from) || record.Timestamp.After(to) {
			continue
		}
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (repository *UsageRecordRepository) HasRecords(_ context.Context, userID string) (bool, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()
	return len(repository.records[userID]) > 0, nil
}

func (repository *UsageRecordRepository) Ping(context.Context) error {
	return nil
}

func (repository *UsageRecordRepository) Backend() core.DatabaseType {
	return core.Memory
}
