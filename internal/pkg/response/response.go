package response

import (
	"errors"
	"net/http"
	cErr "promptgate/internal/pkg/error"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader  = "X-Request-ID"
	AppVersionHeader = "X-App-Version"
)

// ErrorBody 4xx/5xx 統一輸出格式
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success 由 Response middleware 負責寫出
func Success(c *gin.Context, data any) {
	c.Set("data", data)
	c.Abort()
}
func AbortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
}
func Fail(c *gin.Context, requestID string, httpCode int, body ErrorBody) {
	if requestID != "" {
		c.Header(RequestIDHeader, requestID)
	}
	c.JSON(httpCode, body)
	c.Abort()
}

func FailByErr(c *gin.Context, requestID string, err error) {
	var v *cErr.Error
	if !errors.As(err, &v) {
		Fail(c, requestID, http.StatusInternalServerError, ErrorBody{Error: "Internal server error"})
		return
	}
	body := ErrorBody{Error: v.Error()}
	if !v.IsServerError() {
		body.Details = v.Details()
		body.Message = v.ErrorDesc()
	}
	Fail(c, requestID, v.HttpCode(), body)
}
