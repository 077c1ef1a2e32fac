package handler

import (
	"context"

	"promptgate/internal/dto"
	"promptgate/internal/middleware"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/pkg/response"
	"promptgate/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type GenerationService interface {
	Generate(ctx context.Context, raw []byte, requestID string) (*dto.GenerateResponse, error)
}

type GenerationHandler struct {
	trace   *telemetry.Trace
	service GenerationService
}

func NewGenerationHandler(trace *telemetry.Trace, service GenerationService) *GenerationHandler {
	return &GenerationHandler{trace: trace, service: service}
}

// Generate 產生文字
// @Summary 內容過濾後產生文字
// @Description 依序執行輸入過濾、模型生成、輸出過濾並紀錄用量
// @Tags Generation
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequest true "生成參數"
// @Success 200 {object} dto.GenerateResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /generate [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	var returnedError error
	defer func() { end(returnedError) }()

	raw, err := c.GetRawData()
	if err != nil {
		returnedError = err
		response.AbortWithError(c, cErr.ValidateErr("invalid request body"))
		return
	}

	resp, err := h.service.Generate(ctx, raw, middleware.RequestID(c))
	if err != nil {
		returnedError = err
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, resp)
}
