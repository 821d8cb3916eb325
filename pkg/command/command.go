// Package command implements the text-prefix command system: commands and
// groups invoked from chat messages, their checks, parameter converters, and
// the error taxonomy shared across invocation surfaces. Adapters (slash
// bridges, dispatchers) build on these types; the package itself never talks
// to the gateway.
package command

import (
	"fmt"
)

// HandlerFunc is the command callback. Parsed arguments are available on the
// context under their parameter names.
type HandlerFunc func(*Context) error

// Check vetoes an invocation. Returning false fails the command with a
// CheckError; returning an error surfaces that error to the dispatch path
// instead.
type Check func(*Context) (bool, error)

// Binding is the container a command is attached to. It groups related
// commands and can contribute checks and error handling to each of them
// through the optional capability interfaces.
type Binding interface {
	BindingName() string
}

// BindingChecker is a binding that applies a local check to every command
// attached to it.
type BindingChecker interface {
	Binding
	BindingCheck(*Context) (bool, error)
}

// BindingErrorHandler is a binding that receives dispatched errors of its
// attached commands.
type BindingErrorHandler interface {
	Binding
	BindingError(*Context, error)
}

// Bot is the slice of the dispatcher the command layer needs at invocation
// time: global checks and the bot-level error event. Implemented by the bot
// package; nil is tolerated so commands stay testable in isolation.
type Bot interface {
	CanRun(ctx *Context, once bool) (bool, error)
	OnCommandError(ctx *Context, err error)
}

// Command is a prefix-invokable command: identity, declared parameters,
// checks, and the user callback. Configure the exported fields before
// registering; they must not be mutated afterwards.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Hidden      bool

	// GuildIDs restricts availability to the listed guilds. Empty means
	// global. Bridged surfaces mirror the same scoping.
	GuildIDs []string

	Params []*Param
	Checks []Check
	Run    HandlerFunc

	// OnError, when set, is the first stop of the error dispatch path.
	OnError func(*Context, error)

	binding Binding
	parent  *Group

	// interactionCanRun and interactionParse, when installed, replace the
	// regular check and parse pipelines for contexts that originate from an
	// interaction rather than a prefixed message.
	interactionCanRun func(*Context) (bool, error)
	interactionParse  func(*Context) error
}

// QualifiedName returns the full invocation path of the command, parent
// groups included.
func (c *Command) QualifiedName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.QualifiedName() + " " + c.Name
}

// Parent returns the group this command belongs to, or nil at top level.
func (c *Command) Parent() *Group { return c.parent }

// Binding returns the binding the command is attached to, or nil.
func (c *Command) Binding() Binding { return c.binding }

// Bind attaches the command to a binding.
func (c *Command) Bind(b Binding) { c.binding = b }

// InstallInteractionHooks routes check evaluation and argument parsing for
// interaction-originated contexts to the given functions. Used by adapters
// that bridge another invocation surface onto this command; both hooks are
// optional.
func (c *Command) InstallInteractionHooks(canRun func(*Context) (bool, error), parse func(*Context) error) {
	c.interactionCanRun = canRun
	c.interactionParse = parse
}

// CanRun evaluates every check that guards this command: the dispatcher's
// global checks, the binding's local check, then the command's own checks,
// short-circuiting on the first refusal. Contexts built from an interaction
// use the installed interaction pipeline when present.
func (c *Command) CanRun(ctx *Context) (bool, error) {
	if ctx.Interaction != nil && c.interactionCanRun != nil {
		return c.interactionCanRun(ctx)
	}
	if ctx.Bot != nil {
		if ok, err := ctx.Bot.CanRun(ctx, false); err != nil || !ok {
			return ok, err
		}
	}
	if bc, ok := c.binding.(BindingChecker); ok {
		if ret, err := bc.BindingCheck(ctx); err != nil || !ret {
			return ret, err
		}
	}
	return runChecks(ctx, c.Checks)
}

func runChecks(ctx *Context, checks []Check) (bool, error) {
	for _, check := range checks {
		ok, err := check(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Prepare runs the pre-invocation pipeline: checks first, then argument
// parsing. A false check result becomes a CheckError carrying the qualified
// command name.
func (c *Command) Prepare(ctx *Context) error {
	ctx.Command = c
	ok, err := c.CanRun(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return &CheckError{Command: c.QualifiedName()}
	}
	return c.parseArguments(ctx)
}

// Invoke prepares the context and runs the callback. Callback errors outside
// the command taxonomy and recovered panics are wrapped into InvokeError.
func (c *Command) Invoke(ctx *Context) error {
	if err := c.Prepare(ctx); err != nil {
		return err
	}
	return c.call(ctx)
}

func (c *Command) call(ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvokeError{Command: c.QualifiedName(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if c.Run == nil {
		return nil
	}
	if err := c.Run(ctx); err != nil {
		if IsError(err) {
			return err
		}
		return &InvokeError{Command: c.QualifiedName(), Err: err}
	}
	return nil
}

// DispatchError funnels a failed invocation through the error handlers:
// command-local, then binding, then the bot-level handler. Every layer that
// exists runs; suppression is up to the handlers themselves.
func (c *Command) DispatchError(ctx *Context, err error) {
	if c.OnError != nil {
		c.OnError(ctx, err)
	}
	if h, ok := c.binding.(BindingErrorHandler); ok {
		h.BindingError(ctx, err)
	}
	if ctx.Bot != nil {
		ctx.Bot.OnCommandError(ctx, err)
	}
}

func (c *Command) parseArguments(ctx *Context) error {
	if ctx.Interaction != nil && c.interactionParse != nil {
		return c.interactionParse(ctx)
	}
	if ctx.Args == nil {
		ctx.Args = make(map[string]any, len(c.Params))
	}
	view := ctx.view
	if view == nil {
		view = NewStringView("")
		ctx.view = view
	}
	for _, p := range c.Params {
		if p.Rest {
			rest := view.Rest()
			if rest == "" {
				if p.Required {
					return &MissingArgumentError{Param: p.Name}
				}
				ctx.Args[p.Name] = p.Default
				continue
			}
			val, err := p.convert(ctx, rest)
			if err != nil {
				return err
			}
			ctx.Args[p.Name] = val
			continue
		}
		if view.Empty() {
			if p.Required {
				return &MissingArgumentError{Param: p.Name}
			}
			ctx.Args[p.Name] = p.Default
			continue
		}
		word, err := view.Word()
		if err != nil {
			return err
		}
		val, err := p.convert(ctx, word)
		if err != nil {
			return err
		}
		ctx.Args[p.Name] = val
	}
	return nil
}
