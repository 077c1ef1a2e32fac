package core

import "time"

const RequestTypeTextGeneration = "text_generation"

// GenerationRequest 已驗證且套用預設值的生成請求
type GenerationRequest struct {
	Prompt        string   `json:"prompt"`
	MaxTokens     int      `json:"max_tokens"`
	Temperature   float64  `json:"temperature"`
	UserID        string   `json:"user_id"`
	StopSequences []string `json:"stop_sequences,omitempty"`
}

// GenerationResult 一次成功生成的結果
type GenerationResult struct {
	GeneratedText       string        `json:"generated_text"`
	InputTokens         int           `json:"input_tokens"`
	OutputTokens        int           `json:"output_tokens"`
	ResponseTime        time.Duration `json:"-"`
	ResponseTimeMs      int64         `json:"response_time_ms"`
	ModelID             string        `json:"model_id"`
	ContentFilterStatus string        `json:"content_filter_status"`
}

const ContentFilterStatusPassed = "passed"
