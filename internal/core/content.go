package core

import (
	"strings"
	"time"
)

// Severity 內容違規嚴重程度
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity 不分大小寫，無法辨識時回傳 false
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityHigh:
		return SeverityHigh, true
	}
	return "", false
}

// Category 規則分類
type Category string

const (
	CategoryViolence       Category = "violence"
	CategoryExplicit       Category = "explicit"
	CategoryDiscrimination Category = "discrimination"
	CategoryIllegal        Category = "illegal"
	CategoryToxicity       Category = "toxicity"
)

var Categories = []Category{CategoryViolence, CategoryExplicit, CategoryDiscrimination, CategoryIllegal, CategoryToxicity}

// FilterStage 過濾發生的位置
type FilterStage string

const (
	FilterStageInput  FilterStage = "input"
	FilterStageOutput FilterStage = "output"
)

// FilterLayer 判定來源
type FilterLayer string

const (
	FilterLayerPattern    FilterLayer = "pattern"
	FilterLayerClassifier FilterLayer = "classifier"
)

// FilterVerdict 單次過濾結果，不落地保存
type FilterVerdict struct {
	Passed    bool        `json:"passed"`
	Reason    string      `json:"reason,omitempty"`
	Severity  Severity    `json:"severity"`
	Category  Category    `json:"category,omitempty"`
	Layer     FilterLayer `json:"layer,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func PassedVerdict(now time.Time) FilterVerdict {
	return FilterVerdict{Passed: true, Severity: SeverityLow, Timestamp: now.Unix()}
}

// SecurityEvent 稽核用，每次過濾都會寫一筆
type SecurityEvent struct {
	RequestID string      `json:"request_id,omitempty"`
	UserID    string      `json:"user_id"`
	Stage     FilterStage `json:"stage"`
	Timestamp int64       `json:"timestamp"`
	Passed    bool        `json:"passed"`
	Reason    string      `json:"reason,omitempty"`
	Severity  Severity    `json:"severity"`
	Category  Category    `json:"category,omitempty"`
	Layer     FilterLayer `json:"layer,omitempty"`
	Error     string      `json:"error,omitempty"`
}
