package config

// Default 回傳所有區段的預設值，viper 會以此作為 SetDefault 來源。
func Default() Configuration {
	conf := Configuration{
		App: App{
			Env:     "local",
			Port:    3000,
			Name:    "promptgate",
			Version: "1.0.0",
		},
		Log: Log{Level: "info"},
		Redis: Redis{
			Host: "127.0.0.1",
			Port: 6379,
		},
		MongoDB: MongoDB{
			URI:      "mongodb://127.0.0.1:27017",
			Database: "promptgate",
		},
		SQL: SQL{
			Driver: "sqlite",
			DSN:    "file:promptgate.db?cache=shared",
		},
		AWS: AWS{Region: "us-east-1"},
		Fluentd: Fluentd{
			Host:      "127.0.0.1",
			Port:      24224,
			TagPrefix: "promptgate",
			Timeout:   3000,
			Async:     true,
		},
		Generation: Generation{
			Provider:           "mock",
			ModelID:            "anthropic.claude-sonnet-4-20250514-v1:0",
			AnthropicVersion:   "bedrock-2023-05-31",
			DefaultMaxTokens:   1000,
			DefaultTemperature: 0.7,
			TimeoutMs:          60000,
			MaxRetries:         2,
		},
		Usage: Usage{
			Backend:                "mongodb",
			AnonymousUserID:        "anonymous",
			DefaultDays:            7,
			MaxDays:                365,
			NotFoundForUnknownUser: true,
			WriteTimeoutMs:         3000,
			ProbeSpec:              "*/30 * * * * *",
			DynamoDBTable:          "TextGenerationUsage",
			RedisKeyPrefix:         "promptgate:usage",
		},
	}
	conf.Generation.OpenAI.BaseURL = "https://api.openai.com"
	conf.Filter.Classifier.Provider = "none"
	conf.Filter.Classifier.Threshold = 0.8
	conf.Filter.Classifier.LanguageCode = "en"
	conf.Filter.Classifier.TimeoutMs = 5000
	conf.Filter.Alert.MinSeverity = "HIGH"
	conf.Telemetry.Metric.Enabled = true
	return conf
}
