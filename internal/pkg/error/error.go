package error

import (
	"errors"
	"net/http"
)

type Error struct {
	httpCode  int
	errorCode int
	errorMsg  string
	errorDesc string
	details   any
	cause     error
}

func New(httpCode, errorCode int, errorMsg string, errorDesc string) *Error {
	return &Error{
		httpCode:  httpCode,
		errorCode: errorCode,
		errorMsg:  errorMsg,
		errorDesc: errorDesc,
	}

}
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalServer(err.Error()).WithCause(err)
}

// ✅ 用戶端錯誤 (400 系列)
func ValidateErr(errorMsg string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_BODY, errorMsg, "")
}
func ValidatePathParamsErr(errorMsg string) *Error {
	return New(http.StatusBadRequest, BAD_REQUEST_PARAMS, errorMsg, "")
}

// ContentPolicy 內容過濾拒絕，details 會原樣輸出給呼叫端
func ContentPolicy(details any) *Error {
	return New(
		http.StatusBadRequest,
		CONTENT_POLICY_VIOLATION,
		"Content policy violation detected",
		"Your request contains content that violates our usage policies. Please modify your prompt and try again.",
	).WithDetails(details)
}

// ✅ 伺服器內部錯誤 (500 系列)
func InternalServer(errorDesc string) *Error {
	return New(http.StatusInternalServerError, INTERNAL_ERROR, "Internal server error", errorDesc)
}

func DatabaseError(errorDesc string) *Error {
	return New(http.StatusInternalServerError, DATABASE_ERROR, "Usage store unavailable", errorDesc)
}

func ServiceUnavailable(errorDesc string) *Error {
	return New(http.StatusServiceUnavailable, SERVICE_UNAVAILABLE, "Service unavailable", errorDesc)
}

// Upstream 生成或分類服務失敗；對外只輸出 errorMsg
func Upstream(errorMsg string, cause error) *Error {
	desc := ""
	if cause != nil {
		desc = cause.Error()
	}
	return New(http.StatusInternalServerError, UPSTREAM_ERROR, errorMsg, desc).WithCause(cause)
}

// ✅ 用戶請求錯誤 (400 系列)
func BadRequest(errorMsg string, errorCode ...int) *Error {
	errCode := BAD_REQUEST_BODY
	if len(errorCode) > 0 {
		errCode = errorCode[0]
	}
	return New(http.StatusBadRequest, errCode, errorMsg, "")
}

// ✅ 權限錯誤 (401, 403)
func Unauthorized(errorDesc string) *Error {
	return New(http.StatusUnauthorized, UNAUTHORIZED, "unauthorized", errorDesc)
}

func Forbidden(errorDesc string) *Error {
	return New(http.StatusForbidden, FORBIDDEN, "forbidden", errorDesc)
}

// ✅ 資源找不到 (404)
func NotFound(errorMsg string) *Error {
	return New(http.StatusNotFound, NOT_FOUND, errorMsg, "")
}

func GatewayTimeout(errorDesc string) *Error {
	return New(http.StatusGatewayTimeout, GATEWAY_TIMEOUT, "gateway-timeout", errorDesc)
}

func (e *Error) WithDetails(details any) *Error {
	e.details = details
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

func (e *Error) HttpCode() int {
	return e.httpCode
}

func (e *Error) ErrorCode() int {
	return e.errorCode
}
func (e *Error) ErrorDesc() string {
	return e.errorDesc
}
func (e *Error) Details() any {
	return e.details
}
func (e *Error) Error() string {
	return e.errorMsg
}
func (e *Error) Unwrap() error {
	return e.cause
}

// IsServerError 5xx 不對外揭露 desc/details
func (e *Error) IsServerError() bool {
	return e.httpCode >= http.StatusInternalServerError
}

func MapHttpStatusToError(status int, desc string) *Error {
	switch status {
	case http.StatusBadRequest:
		return BadRequest(desc)
	case http.StatusUnauthorized:
		return Unauthorized(desc)
	case http.StatusForbidden:
		return Forbidden(desc)
	case http.StatusNotFound:
		return NotFound(desc)
	case http.StatusInternalServerError:
		return InternalServer(desc)
	case http.StatusServiceUnavailable:
		return ServiceUnavailable(desc)
	case http.StatusGatewayTimeout:
		return GatewayTimeout(desc)
	default:
		return InternalServer(desc)
	}
}
