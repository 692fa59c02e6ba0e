package roomy

import (
	"errors"
	"fmt"
)

type ErrorStatus string

const (
	ErrorStatusUnknown             ErrorStatus = "unknown"
	ErrorStatusAlreadyExists       ErrorStatus = "already_exists"
	ErrorStatusNotFound            ErrorStatus = "not_found"
	ErrorStatusSlotConflict        ErrorStatus = "slot_conflict"
	ErrorStatusInvalidInput        ErrorStatus = "invalid_input"
	ErrorStatusMethodNotAllowed    ErrorStatus = "method_not_allowed"
	ErrorStatusUpstreamUnavailable ErrorStatus = "upstream_unavailable"
	ErrorStatusActivityNotFound    ErrorStatus = "activity_not_found"
	ErrorStatusRoomUnavailable     ErrorStatus = "room_unavailable"
)

var knownStatuses = map[ErrorStatus]struct{}{
	ErrorStatusUnknown:             {},
	ErrorStatusAlreadyExists:       {},
	ErrorStatusNotFound:            {},
	ErrorStatusSlotConflict:        {},
	ErrorStatusInvalidInput:        {},
	ErrorStatusMethodNotAllowed:    {},
	ErrorStatusUpstreamUnavailable: {},
	ErrorStatusActivityNotFound:    {},
	ErrorStatusRoomUnavailable:     {},
}

// ParseErrorStatus returns the status named by s, or ErrorStatusUnknown when s is not a known status.
func ParseErrorStatus(s string) (ErrorStatus, bool) {
	status := ErrorStatus(s)
	if _, ok := knownStatuses[status]; ok {
		return status, true
	}
	return ErrorStatusUnknown, false
}

type Error struct {
	Status ErrorStatus
	err    error
}

func NewError(status ErrorStatus, err error) *Error {
	return &Error{err: err, Status: status}
}

func Errorf(status ErrorStatus, format string, args ...any) *Error {
	return NewError(status, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	return fmt.Errorf("roomy error(status: %s): %w", e.Status, e.err).Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Message is the human-readable part of the error, without the status prefix.
func (e *Error) Message() string {
	if e.err == nil {
		return string(e.Status)
	}
	return e.err.Error()
}

func ErrorHasStatus(target error, status ErrorStatus) bool {
	return StatusOf(target) == status
}

// StatusOf classifies err. A nil error has no status, anything that is not an *Error is unknown.
func StatusOf(err error) ErrorStatus {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return ErrorStatusUnknown
}

// ErrorMessage returns the message of the outermost *Error in err's chain, or err.Error().
func ErrorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
