package config

type Generation struct {
	// bedrock / openai / mock
	Provider           string  `mapstructure:"PROVIDER" json:"provider" yaml:"provider"`
	ModelID            string  `mapstructure:"MODEL_ID" json:"modelId" yaml:"modelId"`
	AnthropicVersion   string  `mapstructure:"ANTHROPIC_VERSION" json:"anthropicVersion" yaml:"anthropicVersion"`
	DefaultMaxTokens   int     `mapstructure:"DEFAULT_MAX_TOKENS" json:"defaultMaxTokens" yaml:"defaultMaxTokens"`
	DefaultTemperature float64 `mapstructure:"DEFAULT_TEMPERATURE" json:"defaultTemperature" yaml:"defaultTemperature"`
	TimeoutMs          int64   `mapstructure:"TIMEOUT_MS" json:"timeoutMs" yaml:"timeoutMs"`
	MaxRetries         int     `mapstructure:"MAX_RETRIES" json:"maxRetries" yaml:"maxRetries"`
	OpenAI             struct {
		BaseURL string `mapstructure:"BASE_URL" json:"baseUrl" yaml:"baseUrl"`
		APIKey  string `mapstructure:"API_KEY" json:"-" yaml:"apiKey"`
		// Secrets Manager secret id / ARN，設定後優先於 API_KEY
		APIKeySecretID string `mapstructure:"API_KEY_SECRET_ID" json:"apiKeySecretId" yaml:"apiKeySecretId"`
	} `mapstructure:"OPENAI" json:"openai" yaml:"openai"`
}
