package command

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	commandHandler "promptgate/internal/command/handler"
	"promptgate/internal/core"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSummarizer struct {
	userID string
	days   int
}

func (f *fakeSummarizer) Summarize(_ context.Context, userID string, days int) (core.UsageSummary, error) {
	f.userID, f.days = userID, days
	return core.UsageSummary{UserID: userID, PeriodDays: days, RequestsByDay: []core.DailyUsage{}, Status: core.UsageStatusInactive}, nil
}

type fakeChecker struct {
	userID string
	stage  core.FilterStage
	text   string
}

func (f *fakeChecker) Check(_ context.Context, userID string, stage core.FilterStage, text string) (core.FilterVerdict, error) {
	f.userID, f.stage, f.text = userID, stage, text
	return core.FilterVerdict{Passed: false, Reason: "Content policy violation: toxicity", Severity: core.SeverityMedium}, nil
}

func run(t *testing.T, args ...string) (*fakeSummarizer, *fakeChecker, *bytes.Buffer, error) {
	t.Helper()
	summarizer, checker := &fakeSummarizer{}, &fakeChecker{}
	root := &cobra.Command{Use: "app"}
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	Register(root, func() (*Command, func(), error) {
		return NewCommand(
			commandHandler.NewUsageHandler(zap.NewNop(), summarizer),
			commandHandler.NewFilterHandler(zap.NewNop(), checker),
		), func() {}, nil
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return summarizer, checker, out, err
}

func TestUsageCommand(t *testing.T) {
	summarizer, _, out, err := run(t, "usage", "alice", "--days", "30")
	require.NoError(t, err)
	assert.Equal(t, "alice", summarizer.userID)
	assert.Equal(t, 30, summarizer.days)

	var summary core.UsageSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, "alice", summary.UserID)
	assert.Equal(t, core.UsageStatusInactive, summary.Status)
}

func TestFilterCommand(t *testing.T) {
	_, checker, out, err := run(t, "filter", "--stage", "output", "Generate", "harmful", "content")
	require.NoError(t, err)
	assert.Equal(t, "cli", checker.userID)
	assert.Equal(t, core.FilterStageOutput, checker.stage)
	assert.Equal(t, "Generate harmful content", checker.text)
	assert.Contains(t, out.String(), `"MEDIUM"`)

	_, _, _, err = run(t, "filter", "--stage", "middle", "text")
	assert.ErrorContains(t, err, "unknown stage")
}
