package config

type Filter struct {
	// 未設定時使用內建規則
	Rules      []FilterRule `mapstructure:"RULES" json:"rules" yaml:"rules"`
	Classifier struct {
		// comprehend / openai / none
		Provider     string  `mapstructure:"PROVIDER" json:"provider" yaml:"provider"`
		Threshold    float64 `mapstructure:"THRESHOLD" json:"threshold" yaml:"threshold"`
		LanguageCode string  `mapstructure:"LANGUAGE_CODE" json:"languageCode" yaml:"languageCode"`
		FailOpen     bool    `mapstructure:"FAIL_OPEN" json:"failOpen" yaml:"failOpen"`
		TimeoutMs    int64   `mapstructure:"TIMEOUT_MS" json:"timeoutMs" yaml:"timeoutMs"`
		OpenAIModel  string  `mapstructure:"OPENAI_MODEL" json:"openaiModel" yaml:"openaiModel"`
	} `mapstructure:"CLASSIFIER" json:"classifier" yaml:"classifier"`
	Alert struct {
		SNSTopicARN string `mapstructure:"SNS_TOPIC_ARN" json:"snsTopicArn" yaml:"snsTopicArn"`
		MinSeverity string `mapstructure:"MIN_SEVERITY" json:"minSeverity" yaml:"minSeverity"`
	} `mapstructure:"ALERT" json:"alert" yaml:"alert"`
}

type FilterRule struct {
	// violence / explicit / discrimination / illegal / toxicity
	Category string `mapstructure:"CATEGORY" json:"category" yaml:"category"`
	Pattern  string `mapstructure:"PATTERN" json:"pattern" yaml:"pattern"`
	Severity string `mapstructure:"SEVERITY" json:"severity" yaml:"severity"`
	Regex    bool   `mapstructure:"REGEX" json:"regex" yaml:"regex"`
}
