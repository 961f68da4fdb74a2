package pagedriver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pagedriver/pagedriver/internal/transport"
)

// Error is a failure reported by the driver. Name distinguishes driver-side
// error classes ("TimeoutError", "TargetClosedError", plain "Error").
type Error struct {
	Name    string
	Message string
	Stack   string
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes driver errors match the package sentinels by name.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Name == "TimeoutError"
	case ErrTargetClosed:
		return e.Name == "TargetClosedError"
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrTimeout      = errors.New("timeout exceeded")
	ErrTargetClosed = errors.New("target page, context or browser has been closed")
)

func newTimeoutError(format string, args ...interface{}) *Error {
	return &Error{Name: "TimeoutError", Message: fmt.Sprintf(format, args...)}
}

func newTargetClosedError(reason string) *Error {
	if reason == "" {
		reason = "Target page, context or browser has been closed"
	}
	return &Error{Name: "TargetClosedError", Message: reason}
}

// parseError converts a reply error payload into an *Error, appending the
// driver's call log when present.
func parseError(payload transport.ErrorPayload, callLog []string) *Error {
	return &Error{
		Name:    payload.Name,
		Message: payload.Message + formatCallLog(callLog),
		Stack:   payload.Stack,
	}
}

func formatCallLog(log []string) string {
	trimmed := make([]string, 0, len(log))
	for _, line := range log {
		if strings.TrimSpace(line) != "" {
			trimmed = append(trimmed, line)
		}
	}
	if len(trimmed) == 0 {
		return ""
	}
	return "\nCall log:\n  - " + strings.Join(trimmed, "\n  - ") + "\n"
}

// serializeError reflects a binding handler failure back to the driver.
func serializeError(err error) map[string]interface{} {
	payload := map[string]interface{}{"message": err.Error(), "name": "Error"}
	var de *Error
	if errors.As(err, &de) {
		payload["name"] = de.Name
		payload["stack"] = de.Stack
	}
	return map[string]interface{}{"error": payload}
}
