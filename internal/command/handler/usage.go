package command

import (
	"context"
	"encoding/json"
	"time"

	"promptgate/internal/core"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type UsageSummarizer interface {
	Summarize(ctx context.Context, userID string, days int) (core.UsageSummary, error)
}

type UsageHandler struct {
	logger     *zap.Logger
	summarizer UsageSummarizer
}

func NewUsageHandler(logger *zap.Logger, summarizer UsageSummarizer) *UsageHandler {
	return &UsageHandler{
		logger:     logger,
		summarizer: summarizer,
	}
}

// Summary 輸出使用者用量統計 JSON
func (handler *UsageHandler) Summary(cmd *cobra.Command, userID string, days int) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	summary, err := handler.summarizer.Summarize(ctx, userID, days)
	if err != nil {
		handler.logger.Error("usage summary failed", zap.String("userId", userID), zap.Error(err))
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
