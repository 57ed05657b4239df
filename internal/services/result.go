// Package services holds the business operations behind the HTTP handlers.
// Every operation returns a Result instead of an error; store failures are
// reported as 500 results carrying the underlying message.
package services

import (
	"errors"
	"net/http"
)

// Result is the outcome envelope of an operation. Code selects the HTTP status
// and is not serialized.
type Result struct {
	OK      bool `json:"ok"`
	Code    int  `json:"-"`
	Message any  `json:"message"`
	Data    any  `json:"data,omitempty"`
}

func Success(code int, message string, data any) Result {
	return Result{OK: true, Code: code, Message: message, Data: data}
}

// Failure builds a failed result. message is a string or a []string.
func Failure(code int, message any) Result {
	return Result{OK: false, Code: code, Message: message}
}

// InternalError reports a store failure with the message of its root cause.
func InternalError(err error) Result {
	return Failure(http.StatusInternalServerError, "Internal server error: "+rootCause(err).Error())
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
