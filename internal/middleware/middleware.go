package middleware

import (
	"strings"

	"promptgate/internal/core"
	"promptgate/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewTraceEntry,
	NewCors,
	NewLogger,
	NewRecovery,
	NewResponse,
)

// 不追蹤、不記錄的路徑
func skipObservability(endpoint string) bool {
	return strings.HasPrefix(endpoint, "/swagger") ||
		strings.HasPrefix(endpoint, "/metrics") ||
		strings.HasPrefix(endpoint, "/version") ||
		strings.HasPrefix(endpoint, "/health") ||
		strings.HasPrefix(endpoint, "/debug/pprof")
}

// ensureRequestID 每個請求只產生一次 UUIDv7，並寫入 X-Request-ID
func ensureRequestID(c *gin.Context) string {
	if v, ok := c.Get(core.ContextRequestIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	requestID := id.String()
	c.Set(core.ContextRequestIDKey, requestID)
	c.Header(response.RequestIDHeader, requestID)
	return requestID
}

// RequestID 給 handler 取得目前請求的 id
func RequestID(c *gin.Context) string {
	return ensureRequestID(c)
}
