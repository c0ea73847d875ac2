package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeConfigInvalid      ErrorCode = "COMMON_017"
)

// Case Module Error Codes
const (
	ErrCodeCaseFileNotFound   ErrorCode = "CASE_001"
	ErrCodeCaseFileInvalid    ErrorCode = "CASE_002"
	ErrCodeDateInvalid        ErrorCode = "CASE_003"
	ErrCodeRequestEntryActive ErrorCode = "CASE_004"
	ErrCodeCalendarExport     ErrorCode = "CASE_005"
)

// Cache Error Codes
const (
	ErrCodeCacheMiss        ErrorCode = "CACHE_001"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeOK:                 http.StatusOK,
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeConfigInvalid:      http.StatusInternalServerError,

	ErrCodeCaseFileNotFound:   http.StatusNotFound,
	ErrCodeCaseFileInvalid:    http.StatusBadRequest,
	ErrCodeDateInvalid:        http.StatusBadRequest,
	ErrCodeRequestEntryActive: http.StatusConflict,
	ErrCodeCalendarExport:     http.StatusInternalServerError,

	ErrCodeCacheMiss:        http.StatusNotFound,
	ErrCodeCacheUnavailable: http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeConfigInvalid:      "invalid configuration",

	ErrCodeCaseFileNotFound:   "case file not found",
	ErrCodeCaseFileInvalid:    "case file could not be parsed",
	ErrCodeDateInvalid:        "date must use the YYYY-MM-DD format",
	ErrCodeRequestEntryActive: "a request entry is already awaiting a response",
	ErrCodeCalendarExport:     "calendar export failed",

	ErrCodeCacheMiss:        "cache miss",
	ErrCodeCacheUnavailable: "cache unavailable",
}

// HTTPStatusFor returns the HTTP status mapped to code, defaulting to 500.
func HTTPStatusFor(code ErrorCode) int {
	if s, ok := ErrorCodeHTTPStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// DefaultMessage returns the default message for code, or "unknown error".
func DefaultMessage(code ErrorCode) string {
	if m, ok := ErrorCodeMessage[code]; ok {
		return m
	}
	return "unknown error"
}
