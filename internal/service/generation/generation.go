package generation

import (
	"context"

	"promptgate/internal/core"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/wire"
)

// Output 單次生成的原始結果，由 Invoker 補上延遲
type Output struct {
	Text         string
	InputTokens  int
	OutputTokens int
	ModelID      string
}

// Generator 生成服務介面，bedrock / openai / mock 各自實作
type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest) (Output, error)
}

type Registry struct {
	generators map[core.ProviderName]Generator
}

func NewRegistry() *Registry {
	return &Registry{generators: make(map[core.ProviderName]Generator)}
}

func (r *Registry) Register(provider core.ProviderName, generator Generator) {
	r.generators[provider] = generator
}

func (r *Registry) Get(provider core.ProviderName) (Generator, bool) {
	g, ok := r.generators[provider]
	return g, ok
}

// ProvideRegistryWithGenerators 這裡只用一個 provider 實例化 Registry 並同時註冊
func ProvideRegistryWithGenerators(
	bedrock *BedrockGenerator,
	openAI *OpenAIGenerator,
	mock *MockGenerator,
) *Registry {
	reg := NewRegistry()
	reg.Register(core.ProviderBedrock, bedrock)
	reg.Register(core.ProviderOpenAI, openAI)
	reg.Register(core.ProviderMock, mock)
	return reg
}

var ProviderSet = wire.NewSet(
	NewBedrockRuntimeClient,
	wire.Bind(new(BedrockAPI), new(*bedrockruntime.Client)),
	NewBedrockGenerator,
	NewOpenAIGenerator,
	NewMockGenerator,
	ProvideRegistryWithGenerators,
	NewInvoker,
)
