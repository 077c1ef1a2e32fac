package core

// ProviderName 生成服務來源
type ProviderName string

const (
	ProviderBedrock ProviderName = "bedrock"
	ProviderOpenAI  ProviderName = "openai"
	ProviderMock    ProviderName = "mock"
)

// ClassifierName 內容分類服務來源
type ClassifierName string

const (
	ClassifierComprehend ClassifierName = "comprehend"
	ClassifierOpenAI     ClassifierName = "openai"
	ClassifierNone       ClassifierName = "none"
)

type OpenAIEndpoint string

const (
	OpenAIAPIBaseURL = "https://api.openai.com"
)
const (
	OpenAiChatEndpoint OpenAIEndpoint = "/chat/completions"
)

const MockModelID = "mock"
