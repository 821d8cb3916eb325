package hybrid

import (
	"github.com/keshon/hybridkit/pkg/appcmd"
	"github.com/keshon/hybridkit/pkg/command"
)

// ErrTooNested is returned when a group is attached below the platform's
// single allowed level of group nesting.
var ErrTooNested = appcmd.ErrTooNested

// Error wraps a structured-system failure so prefix-side error handlers see
// one taxonomy no matter which surface a command arrived on. The original
// failure stays reachable through Unwrap.
type Error struct {
	command.ErrorBase
	Err error
}

func (e *Error) Error() string {
	return "hybrid command raised an error: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
