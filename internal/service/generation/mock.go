package generation

import (
	"context"
	"fmt"
	"strings"

	"promptgate/internal/core"
)

// MockGenerator 未開通模型存取前使用，不呼叫任何外部服務
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (g *MockGenerator) Generate(ctx context.Context, req core.GenerationRequest) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	text := fmt.Sprintf("[MOCK] AI Generated Response for: '%s'\n\n"+
		"This is a simulated response. The actual model response will be returned once a generation provider is configured.\n\n"+
		"Parameters used:\n- Max tokens: %d\n- Temperature: %g\n- User ID: %s",
		req.Prompt, req.MaxTokens, req.Temperature, req.UserID)
	return Output{
		Text:         text,
		InputTokens:  len(strings.Fields(req.Prompt)),
		OutputTokens: len(strings.Fields(text)),
		ModelID:      core.MockModelID,
	}, nil
}
