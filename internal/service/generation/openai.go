package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/database/client"
	"promptgate/internal/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	Temperature         float64       `json:"temperature"`
	Stop                []string      `json:"stop,omitempty"`
}

type chatResult struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAIGenerator 呼叫 OpenAI 相容的 /v1/chat/completions
type OpenAIGenerator struct {
	HTTPClient *http.Client
	trace      *telemetry.Trace
	baseURL    string
	apiKey     string
	modelID    string
}

// NewOpenAIGenerator 設定 API_KEY_SECRET_ID 且 provider 為 openai 時，啟動時從 Secrets Manager 讀取金鑰
func NewOpenAIGenerator(logger *zap.Logger, trace *telemetry.Trace, conf *config.Configuration, awsConfig aws.Config) (*OpenAIGenerator, error) {
	baseURL := strings.TrimRight(conf.Generation.OpenAI.BaseURL, "/")
	if baseURL == "" {
		baseURL = core.OpenAIAPIBaseURL
	}
	apiKey := conf.Generation.OpenAI.APIKey
	secretID := conf.Generation.OpenAI.APIKeySecretID
	if secretID != "" && core.ProviderName(conf.Generation.Provider) == core.ProviderOpenAI {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		secret, err := client.ResolveSecret(ctx, client.NewSecretsManager(awsConfig), secretID)
		if err != nil {
			logger.Error("failed to resolve openai api key", zap.String("secretId", secretID), zap.Error(err))
			return nil, err
		}
		apiKey = secret
	}
	timeout := time.Duration(conf.Generation.TimeoutMs) * time.Millisecond
	return &OpenAIGenerator{
		HTTPClient: &http.Client{Timeout: timeout},
		trace:      trace,
		baseURL:    baseURL,
		apiKey:     apiKey,
		modelID:    conf.Generation.ModelID,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req core.GenerationRequest) (_ Output, returnedError error) {
	url := g.baseURL + "/v1" + string(core.OpenAiChatEndpoint)
	ctx, span, end := g.trace.WithSpan(ctx, "openai.chat.completions")
	defer func() { end(returnedError) }()

	span.SetAttributes(
		attribute.String("ai.provider", string(core.ProviderOpenAI)),
		attribute.String("http.url", url),
	)

	payload, err := json.Marshal(chatPayload{
		Model:               g.modelID,
		Messages:            []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         req.Temperature,
		Stop:                req.StopSequences,
	})
	if err != nil {
		return Output{}, fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Output{}, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")

	resp, err := g.HTTPClient.Do(httpReq)
	if err != nil {
		return Output{}, fmt.Errorf("openai api request: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Output{}, fmt.Errorf("read openai response: %w", err)
	}
	body, err := decompressOnly(raw, resp.Header)
	if err != nil {
		return Output{}, fmt.Errorf("decompress openai response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Output{}, fmt.Errorf("openai non-2xx: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result chatResult
	if err := json.Unmarshal(body, &result); err != nil {
		return Output{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(result.Choices) == 0 {
		return Output{}, errors.New("openai response has no choices")
	}
	model := result.Model
	if model == "" {
		model = g.modelID
	}
	return Output{
		Text:         result.Choices[0].Message.Content,
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		ModelID:      model,
	}, nil
}
