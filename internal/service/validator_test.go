package service

import (
	"testing"

	"promptgate/config"
	cErr "promptgate/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *RequestValidator {
	conf := config.Default()
	return NewRequestValidator(&conf)
}

func assertValidationError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	appErr := cErr.From(err)
	assert.Equal(t, 400, appErr.HttpCode())
	assert.Equal(t, message, appErr.Error())
}

func TestValidateAppliesDefaults(t *testing.T) {
	req, err := newTestValidator().Validate([]byte(`{"prompt":"Write a haiku about the ocean"}`))
	require.NoError(t, err)

	assert.Equal(t, "Write a haiku about the ocean", req.Prompt)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	assert.Equal(t, "anonymous", req.UserID)
	assert.Empty(t, req.StopSequences)
}

func TestValidateKeepsExplicitValues(t *testing.T) {
	body := `{"prompt":"hi","max_tokens":50,"temperature":0,"user_id":"u-1","stop_sequences":["\n\n"]}`
	req, err := newTestValidator().Validate([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, 50, req.MaxTokens)
	assert.Zero(t, req.Temperature)
	assert.Equal(t, "u-1", req.UserID)
	assert.Equal(t, []string{"\n\n"}, req.StopSequences)
}

func TestValidateAcceptsMessageAlias(t *testing.T) {
	req, err := newTestValidator().Validate([]byte(`{"message":"tell me a story"}`))
	require.NoError(t, err)
	assert.Equal(t, "tell me a story", req.Prompt)

	req, err = newTestValidator().Validate([]byte(`{"prompt":"first","message":"second"}`))
	require.NoError(t, err)
	assert.Equal(t, "first", req.Prompt)

	req, err = newTestValidator().Validate([]byte(`{"prompt":"   ","message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", req.Prompt)
}

func TestValidateRejectsInvalidRequests(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", ``, "prompt is required"},
		{"empty object", `{}`, "prompt is required"},
		{"blank prompt", `{"prompt":"   "}`, "prompt is required"},
		{"zero max tokens", `{"prompt":"hi","max_tokens":0}`, "max_tokens must be greater than 0"},
		{"negative max tokens", `{"prompt":"hi","max_tokens":-5}`, "max_tokens must be greater than 0"},
		{"temperature too high", `{"prompt":"hi","temperature":1.5}`, "temperature must be between 0.0 and 1.0"},
		{"temperature negative", `{"prompt":"hi","temperature":-0.1}`, "temperature must be between 0.0 and 1.0"},
		{"too many stop sequences", `{"prompt":"hi","stop_sequences":["a","b","c","d","e"]}`, "stop_sequences accepts at most 4 entries"},
		{"empty stop sequence", `{"prompt":"hi","stop_sequences":[""]}`, "stop_sequences entries must not be empty"},
		{"prompt checked before other fields", `{"max_tokens":0}`, "prompt is required"},
		{"wrong type", `{"prompt":5}`, "prompt has an invalid type"},
		{"malformed json", `{"prompt":`, "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestValidator().Validate([]byte(tc.body))
			assertValidationError(t, err, tc.message)
		})
	}
}
