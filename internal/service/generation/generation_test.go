package generation

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/telemetry"

	"github.com/andybalholm/brotli"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var haiku = core.GenerationRequest{
	Prompt:        "Write a haiku about technology",
	MaxTokens:     200,
	Temperature:   0.5,
	UserID:        "test",
	StopSequences: []string{"END"},
}

func TestMockGenerator(t *testing.T) {
	out, err := NewMockGenerator().Generate(context.Background(), haiku)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.Text, "[MOCK] AI Generated Response for: 'Write a haiku about technology'"))
	assert.Contains(t, out.Text, "- Max tokens: 200")
	assert.Contains(t, out.Text, "- User ID: test")
	assert.Equal(t, 5, out.InputTokens)
	assert.Positive(t, out.OutputTokens)
	assert.Equal(t, core.MockModelID, out.ModelID)
}

type fakeBedrock struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeBedrock) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func testConfig() *config.Configuration {
	conf := config.Default()
	return &conf
}

func TestBedrockGeneratorBuildsAnthropicRequest(t *testing.T) {
	api := &fakeBedrock{body: `{"content":[{"type":"text","text":"Silicon dreams hum"}],"usage":{"input_tokens":14,"output_tokens":9},"stop_reason":"end_turn"}`}
	g := NewBedrockGenerator(api, &telemetry.Trace{}, testConfig())

	out, err := g.Generate(context.Background(), haiku)
	require.NoError(t, err)
	assert.Equal(t, Output{
		Text:         "Silicon dreams hum",
		InputTokens:  14,
		OutputTokens: 9,
		ModelID:      "anthropic.claude-sonnet-4-20250514-v1:0",
	}, out)

	assert.Equal(t, "anthropic.claude-sonnet-4-20250514-v1:0", aws.ToString(api.input.ModelId))
	assert.Equal(t, "application/json", aws.ToString(api.input.ContentType))
	var sent anthropicRequest
	require.NoError(t, json.Unmarshal(api.input.Body, &sent))
	assert.Equal(t, "bedrock-2023-05-31", sent.AnthropicVersion)
	assert.Equal(t, 200, sent.MaxTokens)
	assert.InDelta(t, 0.5, sent.Temperature, 1e-9)
	assert.Equal(t, []string{"END"}, sent.StopSequences)
	require.Len(t, sent.Messages, 1)
	assert.Equal(t, "user", sent.Messages[0].Role)
	assert.Equal(t, "Write a haiku about technology", sent.Messages[0].Content[0].Text)
}

func TestBedrockGeneratorErrors(t *testing.T) {
	g := NewBedrockGenerator(&fakeBedrock{err: errors.New("ThrottlingException")}, &telemetry.Trace{}, testConfig())
	_, err := g.Generate(context.Background(), haiku)
	assert.ErrorContains(t, err, "ThrottlingException")

	g = NewBedrockGenerator(&fakeBedrock{body: `{"content":[]}`}, &telemetry.Trace{}, testConfig())
	_, err = g.Generate(context.Background(), haiku)
	assert.ErrorContains(t, err, "no content")

	g = NewBedrockGenerator(&fakeBedrock{body: `not json`}, &telemetry.Trace{}, testConfig())
	_, err = g.Generate(context.Background(), haiku)
	assert.ErrorContains(t, err, "decode bedrock response")
}

func newOpenAITestGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	conf := testConfig()
	conf.Generation.Provider = string(core.ProviderOpenAI)
	conf.Generation.ModelID = "gpt-4o-mini"
	conf.Generation.OpenAI.BaseURL = srv.URL + "/"
	conf.Generation.OpenAI.APIKey = "sk-test"
	g, err := NewOpenAIGenerator(zap.NewNop(), &telemetry.Trace{}, conf, aws.Config{})
	require.NoError(t, err)
	return g
}

const chatCompletion = `{"model":"gpt-4o-mini-2024-07-18","choices":[{"message":{"role":"assistant","content":"Wires sing at night"},"finish_reason":"stop"}],"usage":{"prompt_tokens":11,"completion_tokens":5}}`

func TestOpenAIGeneratorDecodesCompressedBodies(t *testing.T) {
	encoders := map[string]func([]byte) []byte{
		"gzip": func(b []byte) []byte {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			_, _ = zw.Write(b)
			_ = zw.Close()
			return buf.Bytes()
		},
		"br": func(b []byte) []byte {
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			_, _ = bw.Write(b)
			_ = bw.Close()
			return buf.Bytes()
		},
		"zstd": func(b []byte) []byte {
			enc, _ := zstd.NewWriter(nil)
			defer enc.Close()
			return enc.EncodeAll(b, nil)
		},
		"": func(b []byte) []byte { return b },
	}
	for encoding, encode := range encoders {
		t.Run("encoding="+encoding, func(t *testing.T) {
			var sent chatPayload
			g := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &sent)
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(encode([]byte(chatCompletion)))
			})

			out, err := g.Generate(context.Background(), haiku)
			require.NoError(t, err)
			assert.Equal(t, Output{Text: "Wires sing at night", InputTokens: 11, OutputTokens: 5, ModelID: "gpt-4o-mini-2024-07-18"}, out)
			assert.Equal(t, "gpt-4o-mini", sent.Model)
			assert.Equal(t, 200, sent.MaxCompletionTokens)
			assert.Equal(t, []string{"END"}, sent.Stop)
		})
	}
}

func TestOpenAIGeneratorNon2xx(t *testing.T) {
	g := newOpenAITestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})
	_, err := g.Generate(context.Background(), haiku)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

type stubGenerator struct {
	out Output
	err error
}

func (s stubGenerator) Generate(ctx context.Context, _ core.GenerationRequest) (Output, error) {
	return s.out, s.err
}

func newTestInvoker(provider core.ProviderName, g Generator) *Invoker {
	conf := testConfig()
	conf.Generation.Provider = string(provider)
	registry := NewRegistry()
	registry.Register(provider, g)
	inv := NewInvoker(registry, conf, zap.NewNop(), &telemetry.Metric{})
	ticks := []time.Time{time.Unix(100, 0), time.Unix(100, int64(250*time.Millisecond))}
	inv.now = func() time.Time {
		t := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return t
	}
	return inv
}

func TestInvokerMeasuresLatency(t *testing.T) {
	inv := newTestInvoker(core.ProviderMock, stubGenerator{out: Output{Text: "hi", InputTokens: 1, OutputTokens: 2, ModelID: "m"}})

	result, err := inv.Generate(context.Background(), haiku)
	require.NoError(t, err)
	assert.Equal(t, core.GenerationResult{
		GeneratedText:  "hi",
		InputTokens:    1,
		OutputTokens:   2,
		ResponseTime:   250 * time.Millisecond,
		ResponseTimeMs: 250,
		ModelID:        "m",
	}, result)
	assert.Equal(t, core.ProviderMock, inv.Provider())
}

func TestInvokerWrapsFailures(t *testing.T) {
	cases := map[string]*Invoker{
		"generator error":  newTestInvoker(core.ProviderBedrock, stubGenerator{err: errors.New("AccessDeniedException")}),
		"empty output":     newTestInvoker(core.ProviderBedrock, stubGenerator{out: Output{}}),
		"timeout":          newTestInvoker(core.ProviderBedrock, stubGenerator{err: context.DeadlineExceeded}),
		"unknown provider": NewInvoker(NewRegistry(), testConfig(), zap.NewNop(), &telemetry.Metric{}),
	}
	for name, inv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := inv.Generate(context.Background(), haiku)
			require.Error(t, err)
			appErr := cErr.From(err)
			assert.Equal(t, 500, appErr.HttpCode())
			assert.Equal(t, "Text generation failed", appErr.Error())
			assert.True(t, appErr.IsServerError())
		})
	}
}

func TestProvideRegistryWithGenerators(t *testing.T) {
	registry := ProvideRegistryWithGenerators(&BedrockGenerator{}, &OpenAIGenerator{}, NewMockGenerator())
	for _, provider := range []core.ProviderName{core.ProviderBedrock, core.ProviderOpenAI, core.ProviderMock} {
		_, ok := registry.Get(provider)
		assert.True(t, ok, provider)
	}
	_, ok := registry.Get("gemini")
	assert.False(t, ok)
}
