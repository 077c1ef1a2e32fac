package dto

import "promptgate/internal/pkg/request"

// GenerateRequest POST /generate；prompt 缺少時接受 message
type GenerateRequest struct {
	Prompt        string   `json:"prompt"`
	Message       string   `json:"message"`
	MaxTokens     *int     `json:"max_tokens" binding:"omitnil,gt=0"`
	Temperature   *float64 `json:"temperature" binding:"omitnil,gte=0,lte=1"`
	UserID        string   `json:"user_id" binding:"omitempty,max=128"`
	StopSequences []string `json:"stop_sequences" binding:"omitempty,max=4,dive,required"`
}

func (GenerateRequest) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"MaxTokens.gt":             "max_tokens must be greater than 0",
		"Temperature.gte":          "temperature must be between 0.0 and 1.0",
		"Temperature.lte":          "temperature must be between 0.0 and 1.0",
		"UserID.max":               "user_id must be at most 128 characters",
		"StopSequences.max":        "stop_sequences accepts at most 4 entries",
		"StopSequences.*.required": "stop_sequences entries must not be empty",
	}
}

type GenerateMetadata struct {
	InputTokens         int    `json:"input_tokens"`
	OutputTokens        int    `json:"output_tokens"`
	ResponseTimeMs      int64  `json:"response_time_ms"`
	ModelID             string `json:"model_id"`
	UserID              string `json:"user_id"`
	ContentFilterStatus string `json:"content_filter_status"`
}

type GenerateResponse struct {
	GeneratedText string           `json:"generated_text"`
	Metadata      GenerateMetadata `json:"metadata"`
}

// ContentPolicyDetails 內容拒絕時的 details 欄位
type ContentPolicyDetails struct {
	Reason    string `json:"reason"`
	Severity  string `json:"severity"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}
