package core

import "time"

// UsageOutcome 請求最終狀態
type UsageOutcome string

const (
	OutcomeCompleted      UsageOutcome = "completed"
	OutcomeInputFiltered  UsageOutcome = "input_filtered"
	OutcomeOutputFiltered UsageOutcome = "output_filtered"
	OutcomeUpstreamError  UsageOutcome = "upstream_error"
)

// UsageRecord 以 (user_id, timestamp) 為鍵，只新增不修改
type UsageRecord struct {
	UserID                 string       `json:"user_id"`
	Timestamp              time.Time    `json:"timestamp"`
	RequestID              string       `json:"request_id"`
	RequestType            string       `json:"request_type"`
	ModelID                string       `json:"model_id,omitempty"`
	InputTokens            int          `json:"input_tokens"`
	OutputTokens           int          `json:"output_tokens"`
	ResponseTimeMs         int64        `json:"response_time_ms"`
	ContentFilterTriggered bool         `json:"content_filter_triggered"`
	Outcome                UsageOutcome `json:"outcome"`
}

const (
	UsageStatusActive   = "active"
	UsageStatusInactive = "inactive"
)

// DailyUsage requests_by_day 的一筆
type DailyUsage struct {
	Date     string `json:"date"`
	Requests int    `json:"requests"`
	Tokens   int    `json:"tokens"`
}

// UsageSummary 查詢時即時計算，不保存
type UsageSummary struct {
	UserID                string       `json:"user_id"`
	PeriodDays            int          `json:"period_days"`
	TotalRequests         int          `json:"total_requests"`
	TotalInputTokens      int          `json:"total_input_tokens"`
	TotalOutputTokens     int          `json:"total_output_tokens"`
	AverageResponseTimeMs float64      `json:"average_response_time_ms"`
	RequestsByDay         []DailyUsage `json:"requests_by_day"`
	ContentFilterEvents   int          `json:"content_filter_events"`
	LastRequest           *string      `json:"last_request,omitempty"`
	Status                string       `json:"status"`
}
