package service

import (
	"encoding/json"
	"errors"
	"strings"

	"promptgate/config"
	"promptgate/internal/core"
	"promptgate/internal/dto"
	cErr "promptgate/internal/pkg/error"
	"promptgate/internal/pkg/request"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RequestValidator 解析並驗證 /generate 請求，套用預設值；沒有副作用
type RequestValidator struct {
	defaultMaxTokens   int
	defaultTemperature float64
	anonymousUserID    string
}

func NewRequestValidator(conf *config.Configuration) *RequestValidator {
	maxTokens := conf.Generation.DefaultMaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	anonymous := conf.Usage.AnonymousUserID
	if anonymous == "" {
		anonymous = "anonymous"
	}
	return &RequestValidator{
		defaultMaxTokens:   maxTokens,
		defaultTemperature: conf.Generation.DefaultTemperature,
		anonymousUserID:    anonymous,
	}
}

func (v *RequestValidator) Validate(raw []byte) (core.GenerationRequest, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}

	var req dto.GenerateRequest
	if err := binding.JSON.BindBody(raw, &req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return core.GenerationRequest{}, decodeError(err)
		}
		if strings.TrimSpace(promptOf(req)) == "" {
			return core.GenerationRequest{}, cErr.ValidateErr("prompt is required")
		}
		return core.GenerationRequest{}, request.GetError(req, err)
	}

	prompt := promptOf(req)
	if strings.TrimSpace(prompt) == "" {
		return core.GenerationRequest{}, cErr.ValidateErr("prompt is required")
	}

	out := core.GenerationRequest{
		Prompt:        prompt,
		MaxTokens:     v.defaultMaxTokens,
		Temperature:   v.defaultTemperature,
		UserID:        v.anonymousUserID,
		StopSequences: req.StopSequences,
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if userID := strings.TrimSpace(req.UserID); userID != "" {
		out.UserID = userID
	}
	return out, nil
}

func promptOf(req dto.GenerateRequest) string {
	if strings.TrimSpace(req.Prompt) != "" {
		return req.Prompt
	}
	return req.Message
}

// decodeError JSON 型別錯誤時指出欄位，其餘一律視為無效 body
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return cErr.ValidateErr(typeErr.Field + " has an invalid type")
	}
	return cErr.ValidateErr("invalid request body")
}
