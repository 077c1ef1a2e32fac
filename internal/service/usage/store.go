package usage

import (
	"context"
	"time"

	"promptgate/internal/core"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewRecorder,
	NewAggregator,
)

// Store 使用紀錄的儲存後端，只新增不修改
type Store interface {
	Append(ctx context.Context, record core.UsageRecord) error
	// ListByUser 回傳 [from, to] 內的紀錄，依時間遞增
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]core.UsageRecord, error)
	HasRecords(ctx context.Context, userID string) (bool, error)
	Ping(ctx context.Context) error
	Backend() core.DatabaseType
}
