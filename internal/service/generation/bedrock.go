package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/database/client"
	"promptgate/internal/telemetry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const defaultAnthropicVersion = "bedrock-2023-05-31"

// BedrockAPI 只列出使用到的操作，方便測試替換
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// NewBedrockRuntimeClient 逾時與重試交給 AWS client
func NewBedrockRuntimeClient(cfg aws.Config, conf *config.Configuration) *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		o.HTTPClient = client.HTTPClientWithTimeout(conf.Generation.TimeoutMs)
		if conf.Generation.MaxRetries >= 0 {
			o.RetryMaxAttempts = conf.Generation.MaxRetries + 1
		}
	})
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
	StopSequences    []string           `json:"stop_sequences,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	StopReason string `json:"stop_reason"`
}

type BedrockGenerator struct {
	api              BedrockAPI
	trace            *telemetry.Trace
	modelID          string
	anthropicVersion string
}

func NewBedrockGenerator(api BedrockAPI, trace *telemetry.Trace, conf *config.Configuration) *BedrockGenerator {
	version := conf.Generation.AnthropicVersion
	if version == "" {
		version = defaultAnthropicVersion
	}
	return &BedrockGenerator{
		api:              api,
		trace:            trace,
		modelID:          conf.Generation.ModelID,
		anthropicVersion: version,
	}
}

// Generate 以 Anthropic Messages 格式呼叫 InvokeModel
func (g *BedrockGenerator) Generate(ctx context.Context, req core.GenerationRequest) (_ Output, returnedError error) {
	ctx, span, end := g.trace.WithSpan(ctx, "bedrock.invoke_model")
	defer func() { end(returnedError) }()

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: g.anthropicVersion,
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		Messages: []anthropicMessage{{
			Role:    "user",
			Content: []anthropicContent{{Type: "text", Text: req.Prompt}},
		}},
		StopSequences: req.StopSequences,
	})
	if err != nil {
		return Output{}, fmt.Errorf("marshal bedrock body: %w", err)
	}

	out, err := g.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return Output{}, fmt.Errorf("bedrock invoke model: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return Output{}, fmt.Errorf("decode bedrock response: %w", err)
	}
	if len(resp.Content) == 0 {
		return Output{}, errors.New("bedrock response has no content")
	}

	g.trace.ApplyTraceAttributes(span, core.TraceGenerationMeta{
		UserID:       req.UserID,
		Provider:     string(core.ProviderBedrock),
		Model:        g.modelID,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	return Output{
		Text:         resp.Content[0].Text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		ModelID:      g.modelID,
	}, nil
}
