package command

import (
	"errors"
	"fmt"
)

// Error is implemented by every failure produced by the command pipeline:
// checks, argument parsing, conversion, and callback invocation. Transport
// failures and programming errors stay outside the taxonomy so handlers can
// tell user-facing refusals apart from bugs.
type Error interface {
	error
	commandError()
}

// ErrorBase tags a type as part of the command error taxonomy. Embed it in
// custom error types so dispatchers route them through command error
// handling.
type ErrorBase struct{}

func (ErrorBase) commandError() {}

// IsError reports whether any error in err's chain belongs to the command
// error taxonomy.
func IsError(err error) bool {
	var ce Error
	return errors.As(err, &ce)
}

// CheckError is returned when a check vetoes an invocation without supplying
// its own error.
type CheckError struct {
	ErrorBase
	Command string
	Reason  string
}

func (e *CheckError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("the check functions for command %q failed", e.Command)
}

// NotFoundError is reported when no command matches the invoked word.
type NotFoundError struct {
	ErrorBase
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command %q is not found", e.Name)
}

// DisabledError is reported when a command exists but is switched off in the
// current guild.
type DisabledError struct {
	ErrorBase
	Command string
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("command %q is disabled", e.Command)
}

// ArgumentError reports malformed user input that stopped argument parsing,
// such as an unclosed quote.
type ArgumentError struct {
	ErrorBase
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

// MissingArgumentError is returned when a required parameter has no value.
type MissingArgumentError struct {
	ErrorBase
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s is a required argument that is missing", e.Param)
}

// BadArgumentError is returned when a built-in conversion rejects its input.
type BadArgumentError struct {
	ErrorBase
	Param   string
	Value   string
	Message string
}

func (e *BadArgumentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("could not parse %q", e.Value)
}

// ConversionError wraps a failure inside a user-supplied converter. The
// converter and the original error are preserved; Unwrap exposes the cause.
type ConversionError struct {
	ErrorBase
	Converter Converter
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converter %T failed: %v", e.Converter, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// InvokeError wraps an error or recovered panic raised by a command
// callback.
type InvokeError struct {
	ErrorBase
	Command string
	Err     error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("command %q raised an error: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// RegistrationError is returned when a command name or alias is already
// taken in the target registry.
type RegistrationError struct {
	ErrorBase
	Name          string
	AliasConflict bool
}

func (e *RegistrationError) Error() string {
	if e.AliasConflict {
		return fmt.Sprintf("the alias %q is already an existing command or alias", e.Name)
	}
	return fmt.Sprintf("the command %q is already an existing command or alias", e.Name)
}
