package model

// SecurityEventLog 內容過濾稽核紀錄
type SecurityEventLog struct {
	RequestID string `json:"request_id,omitempty"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`
	Stage     string `json:"stage"`
	Passed    bool   `json:"passed"`
	Reason    string `json:"reason,omitempty"`
	Severity  string `json:"severity"`
	Category  string `json:"category,omitempty"`
	Layer     string `json:"layer,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
	LoggedAt  string `json:"logged_at"`
}
