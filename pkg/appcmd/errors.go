package appcmd

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ErrTooNested is returned when a group would end up more than one level
// below a top-level group; the platform only materialises two tiers.
var ErrTooNested = errors.New("appcmd: groups can only be nested one level deep")

// Error is implemented by every failure the application-command pipeline
// produces.
type Error interface {
	error
	appCommandError()
}

// ErrorBase tags a type as an application-command error. Embed it to extend
// the taxonomy.
type ErrorBase struct{}

func (ErrorBase) appCommandError() {}

// IsError reports whether any error in err's chain belongs to the
// application-command taxonomy.
func IsError(err error) bool {
	var ae Error
	return errors.As(err, &ae)
}

// CheckError is returned when a check vetoes an invocation.
type CheckError struct {
	ErrorBase
	Command string
	Reason  string
}

func (e *CheckError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("the checks for application command %q failed", e.Command)
}

// NotFoundError is reported when an interaction names a command the tree
// does not hold.
type NotFoundError struct {
	ErrorBase
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("application command %q was not found", e.Name)
}

// AlreadyRegisteredError is returned when a name is already taken in the
// target tree or group.
type AlreadyRegisteredError struct {
	ErrorBase
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("application command %q is already registered", e.Name)
}

// SignatureMismatchError means the received payload does not line up with
// the declared options: the schema registered with the platform is out of
// date. It is a developer error and is never funneled into user-facing
// error handling.
type SignatureMismatchError struct {
	ErrorBase
	Command string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("the payload for %q did not match its registered signature; resync the command definitions", e.Command)
}

// TransformerError wraps a failure while transforming one received option
// value. The raw value and declared option type are preserved; Unwrap
// exposes the cause.
type TransformerError struct {
	ErrorBase
	Value any
	Type  discordgo.ApplicationCommandOptionType
	Err   error
}

func (e *TransformerError) Error() string {
	return fmt.Sprintf("transforming option value %v (type %d) failed: %v", e.Value, e.Type, e.Err)
}

func (e *TransformerError) Unwrap() error { return e.Err }

// InvokeError wraps an error or recovered panic raised by an application
// command handler.
type InvokeError struct {
	ErrorBase
	Command string
	Err     error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("application command %q raised an error: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }
