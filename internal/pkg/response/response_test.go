package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	cErr "promptgate/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func render(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FailByErr(c, "req-1", err)
	return w
}

func TestFailByErrClientError(t *testing.T) {
	w := render(cErr.ContentPolicy(map[string]string{"severity": "HIGH"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{
		"error": "Content policy violation detected",
		"details": {"severity": "HIGH"},
		"message": "Your request contains content that violates our usage policies. Please modify your prompt and try again."
	}`, w.Body.String())
}

func TestFailByErrHidesServerDetails(t *testing.T) {
	w := render(cErr.Upstream("Text generation failed", errors.New("AccessDeniedException: arn:aws:iam::123")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Text generation failed"}`, w.Body.String())
}

func TestFailByErrPlainError(t *testing.T) {
	w := render(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
