package command

import (
	"context"
	"encoding/json"
	"time"

	"promptgate/internal/core"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type FilterChecker interface {
	Check(ctx context.Context, userID string, stage core.FilterStage, text string) (core.FilterVerdict, error)
}

type FilterHandler struct {
	logger  *zap.Logger
	checker FilterChecker
}

func NewFilterHandler(logger *zap.Logger, checker FilterChecker) *FilterHandler {
	return &FilterHandler{
		logger:  logger,
		checker: checker,
	}
}

// Check 對單段文字執行內容過濾並輸出 verdict
func (handler *FilterHandler) Check(cmd *cobra.Command, userID string, stage core.FilterStage, text string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	verdict, err := handler.checker.Check(ctx, userID, stage, text)
	if err != nil {
		handler.logger.Error("filter check failed", zap.Error(err))
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(verdict)
}
