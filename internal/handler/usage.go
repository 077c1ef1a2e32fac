package handler

import (
	"context"

	"promptgate/internal/core"
	"promptgate/internal/pkg/response"
	"promptgate/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type UsageService interface {
	ParseDays(raw string) (int, error)
	Summarize(ctx context.Context, userID string, days int) (core.UsageSummary, error)
}

type UsageHandler struct {
	trace   *telemetry.Trace
	service UsageService
}

func NewUsageHandler(trace *telemetry.Trace, service UsageService) *UsageHandler {
	return &UsageHandler{trace: trace, service: service}
}

// GetUsage 查詢使用者用量統計
// @Summary 取得使用者近 N 天的用量
// @Tags Usage
// @Produce json
// @Param user_id path string true "User ID"
// @Param days query int false "統計天數 (1-365)，預設 7"
// @Success 200 {object} core.UsageSummary
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /usage/{user_id} [get]
func (h *UsageHandler) GetUsage(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var returnedError error
	defer func() { end(returnedError) }()

	days, err := h.service.ParseDays(c.Query("days"))
	if err != nil {
		returnedError = err
		response.AbortWithError(c, err)
		return
	}
	summary, err := h.service.Summarize(ctx, c.Param("user_id"), days)
	if err != nil {
		returnedError = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, summary)
}
