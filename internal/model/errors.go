package model

import (
	"errors"
	"fmt"
	"strconv"
)

// Error codes. Per-target codes are reported in-band in TargetResult metadata;
// the others are returned to the caller before any fetch takes place.
const (
	ENETWORK        = "network_error"
	EHTTP           = "http_error"
	ETIMEOUT        = "timeout"
	EPARSE          = "parse_error"
	ETOOSHORT       = "content_too_short"
	ETARGETNOTFOUND = "target_not_found"
	ESTORAGE        = "storage_error"
	EINVALID        = "invalid"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the code of the first *Error in err's chain, or "" if none.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPErrorReason formats the in-band reason for a non-2xx response.
func HTTPErrorReason(statusCode int) string {
	return EHTTP + ":" + strconv.Itoa(statusCode)
}
