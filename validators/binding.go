package validators

import (
	"encoding/json"
	"errors"
)

// BindFailure converts a request binding error into a validation failure.
// Type mismatches on known JSON fields use the message registered for that
// field; a string message is reported as-is, a []string as a list.
func BindFailure(err error, typeMessages map[string]any) *Failure {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if msg, ok := typeMessages[typeErr.Field]; ok {
			return &Failure{Code: 400, Message: msg}
		}
		if msg, ok := typeMessages["*"]; ok {
			return &Failure{Code: 400, Message: msg}
		}
	}
	return Fail("Invalid request payload")
}

func blank(s *string) bool {
	return s == nil || *s == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
