package usage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"promptgate/config"
	"promptgate/internal/core"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/telemetry"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Aggregator struct {
	store                  Store
	logger                 *zap.Logger
	trace                  *telemetry.Trace
	defaultDays            int
	maxDays                int
	notFoundForUnknownUser bool
	now                    func() time.Time
}

func NewAggregator(store Store, conf *config.Configuration, logger *zap.Logger, trace *telemetry.Trace) *Aggregator {
	defaultDays := conf.Usage.DefaultDays
	if defaultDays <= 0 {
		defaultDays = 7
	}
	maxDays := conf.Usage.MaxDays
	if maxDays <= 0 {
		maxDays = 365
	}
	return &Aggregator{
		store:                  store,
		logger:                 logger,
		trace:                  trace,
		defaultDays:            defaultDays,
		maxDays:                maxDays,
		notFoundForUnknownUser: conf.Usage.NotFoundForUnknownUser,
		now:                    time.Now,
	}
}

// ParseDays 空字串回傳預設天數；非整數或超出 [1, MAX_DAYS] 回傳 ValidationError
func (a *Aggregator) ParseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return a.defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, cErr.ValidatePathParamsErr("days must be an integer")
	}
	if days < 1 || days > a.maxDays {
		return 0, cErr.ValidatePathParamsErr(fmt.Sprintf("days must be between 1 and %d", a.maxDays))
	}
	return days, nil
}

// Summarize 每次查詢即時計算，不快取
func (a *Aggregator) Summarize(ctx context.Context, userID string, days int) (_ core.UsageSummary, returnedError error) {
	ctx, span, end := a.trace.WithSpan(ctx, string(core.SpanUsageSummarize))
	defer func() { end(returnedError) }()

	if strings.TrimSpace(userID) == "" {
		return core.UsageSummary{}, cErr.ValidatePathParamsErr("user_id is required")
	}
	if days < 1 || days > a.maxDays {
		return core.UsageSummary{}, cErr.ValidatePathParamsErr(fmt.Sprintf("days must be between 1 and %d", a.maxDays))
	}

	now := a.now().UTC()
	from := now.Add(-time.Duration(days) * 24 * time.Hour)
	records, err := a.store.ListByUser(ctx, userID, from, now)
	if err != nil {
		a.logger.Error("failed to read usage records", zap.String("userId", userID), zap.Error(err))
		return core.UsageSummary{}, cErr.DatabaseError(err.Error()).WithCause(err)
	}

	if len(records) == 0 && a.notFoundForUnknownUser {
		known, err := a.store.HasRecords(ctx, userID)
		if err != nil {
			a.logger.Error("failed to check usage records", zap.String("userId", userID), zap.Error(err))
			return core.UsageSummary{}, cErr.DatabaseError(err.Error()).WithCause(err)
		}
		if !known {
			return core.UsageSummary{}, cErr.NotFound("User not found")
		}
	}

	summary := BuildSummary(userID, days, records, now)
	a.trace.ApplyTraceAttributes(span, core.TraceUsageSummaryMeta{
		UserID:        userID,
		Days:          days,
		RecordCount:   len(records),
		TotalRequests: summary.TotalRequests,
		Status:        summary.Status,
	})
	return summary, nil
}

// BuildSummary 純計算；records 可為任意順序，[now-days, now] 之外的紀錄會被略過
func BuildSummary(userID string, days int, records []core.UsageRecord, now time.Time) core.UsageSummary {
	summary := core.UsageSummary{
		UserID:        userID,
		PeriodDays:    days,
		RequestsByDay: []core.DailyUsage{},
		Status:        core.UsageStatusInactive,
	}
	now = now.UTC()
	from := now.Add(-time.Duration(days) * 24 * time.Hour)

	byDay := make(map[string]*core.DailyUsage)
	var totalResponseMs int64
	var last time.Time
	for _, record := range records {
		if record.Timestamp.Before(from) || record.Timestamp.After(now) {
			continue
		}
		summary.TotalRequests++
		summary.TotalInputTokens += record.InputTokens
		summary.TotalOutputTokens += record.OutputTokens
		totalResponseMs += record.ResponseTimeMs
		if record.ContentFilterTriggered {
			summary.ContentFilterEvents++
		}
		ts := record.Timestamp.UTC()
		if ts.After(last) {
			last = ts
		}
		date := ts.Format(dateLayout)
		day, ok := byDay[date]
		if !ok {
			day = &core.DailyUsage{Date: date}
			byDay[date] = day
		}
		day.Requests++
		day.Tokens += record.InputTokens + record.OutputTokens
	}
	if summary.TotalRequests == 0 {
		return summary
	}

	dates := make([]string, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		summary.RequestsByDay = append(summary.RequestsByDay, *byDay[date])
	}

	avg := float64(totalResponseMs) / float64(summary.TotalRequests)
	summary.AverageResponseTimeMs = math.Round(avg*100) / 100
	lastRequest := last.Format(time.RFC3339)
	summary.LastRequest = &lastRequest
	summary.Status = core.UsageStatusActive
	return summary
}
