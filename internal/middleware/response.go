package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/database/fluentd/model"
	"promptgate/internal/database/fluentd/repository"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/pkg/response"
	"promptgate/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	logger            *zap.Logger
	trace             *telemetry.Trace
	config            *config.Configuration
	fluentdRepository *repository.LogRepository
}

func NewResponse(
	logger *zap.Logger,
	trace *telemetry.Trace,
	config *config.Configuration,
	fluentdRepository *repository.LogRepository,
) *Response {
	return &Response{
		logger:            logger,
		trace:             trace,
		config:            config,
		fluentdRepository: fluentdRepository,
	}
}

// FormatHandler 將 handler 透過 response.Success 設定的 data 原樣輸出為 JSON
func (middleware *Response) FormatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(response.AppVersionHeader, middleware.config.App.Version)
		endpoint := c.FullPath()
		if skipObservability(endpoint) {
			c.Next()
			return
		}
		requestID := ensureRequestID(c)

		requestTime := time.Now()
		if startTime, exists := c.Get("requestDuration"); exists {
			if t, ok := startTime.(time.Time); ok {
				requestTime = t
			}
		} else {
			c.Set("requestDuration", requestTime)
		}

		// 執行下游
		c.Next()

		// 若已經有錯誤交由 Recovery 處理，或已經寫出回應，就不要再動了
		if len(c.Errors) > 0 || c.Writer.Written() {
			return
		}
		data, exists := c.Get("data")
		if !exists {
			// 未命中路由等情況
			statusCode := c.Writer.Status()
			if statusCode < http.StatusBadRequest {
				statusCode = http.StatusNotFound
			}
			response.AbortWithError(c, cErr.MapHttpStatusToError(statusCode, "request error"))
			return
		}

		ctx, span, end := middleware.trace.WithSpan(middleware.trace.GetTraceContext(c), string(core.SpanResponseMiddleware))
		var returnedError error
		defer func() { end(returnedError) }()

		body, err := json.Marshal(data)
		if err != nil {
			returnedError = err
			response.AbortWithError(c, cErr.InternalServer("marshal response failed").WithCause(err))
			return
		}
		statusCode := c.Writer.Status()
		duration := time.Since(requestTime)
		traceID := span.SpanContext().TraceID()

		middleware.trace.ApplyTraceAttributes(span, core.TraceResponseMeta{
			Path:       c.Request.URL.Path,
			Method:     c.Request.Method,
			Status:     statusCode,
			DurationMs: float64(duration.Milliseconds()),
			Data:       previewJSON(body, 2000),
		})

		middleware.logger.Info("[Response] request success",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", statusCode),
			zap.Duration("duration", duration),
			zap.String("requestId", requestID),
			zap.String("traceId", fmt.Sprintf("%x", traceID[:])),
		)

		// fluentd
		if err := middleware.fluentdRepository.LogResponse(ctx, model.ResponseLog{
			RequestID:  requestID,
			Code:       cErr.SUCCESS,
			StatusCode: statusCode,
			Body:       previewJSON(body, 2000),
			LatencyMs:  duration.Milliseconds(),
			ResponseTS: time.Now().UTC().Format("2006-01-02 15:04:05.999999 UTC"),
		}); err != nil {
			middleware.logger.Warn("failed to ship response log", zap.String("requestId", requestID), zap.Error(err))
		}

		c.Data(statusCode, "application/json; charset=utf-8", body)
	}
}

func previewJSON(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max]) + "…"
	}
	return string(b)
}
