package model

// UsageLog 每筆 usage record 的副本，供離線分析
type UsageLog struct {
	RequestID              string `json:"request_id"`
	UserID                 string `json:"user_id"`
	RequestType            string `json:"request_type"`
	Provider               string `json:"provider,omitempty"`
	Model                  string `json:"model,omitempty"`
	InputTokens            int    `json:"input_tokens"`
	OutputTokens           int    `json:"output_tokens"`
	TokensTotal            int    `json:"tokens_total"`
	ResponseTimeMs         int64  `json:"response_time_ms"`
	ContentFilterTriggered bool   `json:"content_filter_triggered"`
	Outcome                string `json:"outcome"`
	Timestamp              string `json:"timestamp"`
	Version                string `json:"version"`
	LoggedAt               string `json:"logged_at"`
}
