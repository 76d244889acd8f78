// Package clierr provides command errors that carry a process exit classification.
package clierr

import (
	"context"
	"errors"
	"fmt"
)

// Code is the process exit status a command error maps to.
type Code int

const (
	ExitOK                   Code = 0
	ExitInvalidConfiguration Code = 3
	ExitCommandFailure       Code = 4
	ExitInvalidCommand       Code = 5
	ExitInvalidParameter     Code = 6
	ExitNetworkError         Code = 7
	ExitPermissionViolation  Code = 8
	ExitTimeout              Code = 9
	ExitAPIError             Code = 10
	ExitUnknownError         Code = 20
)

// Sentinel errors for classification via errors.Is().
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrCommandFailure       = errors.New("command failure")
	ErrInvalidCommand       = errors.New("invalid command")
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrNetwork              = errors.New("network or remote failure")
	ErrPermission           = errors.New("permission violation")
	ErrTimeout              = errors.New("timeout")
	ErrAPI                  = errors.New("api error")
	ErrUnknown              = errors.New("unknown error")
)

var sentinels = map[Code]error{
	ExitInvalidConfiguration: ErrInvalidConfiguration,
	ExitCommandFailure:       ErrCommandFailure,
	ExitInvalidCommand:       ErrInvalidCommand,
	ExitInvalidParameter:     ErrInvalidParameter,
	ExitNetworkError:         ErrNetwork,
	ExitPermissionViolation:  ErrPermission,
	ExitTimeout:              ErrTimeout,
	ExitAPIError:             ErrAPI,
	ExitUnknownError:         ErrUnknown,
}

// String returns the name of the classification.
func (c Code) String() string {
	if s, ok := sentinels[c]; ok {
		return s.Error()
	}
	if c == ExitOK {
		return "ok"
	}
	return fmt.Sprintf("exit %d", int(c))
}

// Error is a classified command failure.
type Error struct {
	Code    Code   // Exit classification
	Message string // Human-readable message, usually from the scheduler
	Cause   error  // Underlying error, if any
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the classification sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// New creates a classified error.
func New(code Code, format string, a ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap classifies an underlying error, prefixing it with message.
func Wrap(code Code, cause error, format string, a ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, a...), Cause: cause}
}

// InvalidParameter classifies malformed caller input.
func InvalidParameter(format string, a ...any) error {
	return New(ExitInvalidParameter, format, a...)
}

// Network classifies a scheduler that was unreachable or refused a call.
func Network(format string, a ...any) error {
	return New(ExitNetworkError, format, a...)
}

// CommandFailure classifies internal aggregation failures.
func CommandFailure(format string, a ...any) error {
	return New(ExitCommandFailure, format, a...)
}

// CodeOf maps any error to the exit code a process should terminate with.
// Errors that wrap a classification sentinel map to that sentinel's code.
func CodeOf(err error) Code {
	if err == nil {
		return ExitOK
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr.Code
	}
	for code, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, context.Canceled):
		return ExitCommandFailure
	}
	return ExitUnknownError
}
