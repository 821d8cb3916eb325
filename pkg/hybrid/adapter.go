package hybrid

import (
	"errors"

	"github.com/keshon/hybridkit/pkg/appcmd"
	"github.com/keshon/hybridkit/pkg/command"
)

// appInvoke is installed as the structured command's invoker. It acquires a
// unified context, runs the wrapped command's full pipeline through it, and
// funnels failures into the wrapper's error dispatch. Only a signature
// mismatch surfaces back to the structured caller: it means the registered
// definition drifted from this one, which no handler can fix at runtime.
func (w *Command) appInvoke(inv *appcmd.Invocation) error {
	ctx, err := w.newContext(inv)
	if err != nil {
		return err
	}
	ctx.Baton = inv
	inv.Baton = ctx

	err = w.Command.Invoke(ctx)
	if err == nil {
		return nil
	}
	var mismatch *appcmd.SignatureMismatchError
	if errors.As(err, &mismatch) {
		return err
	}
	w.Command.DispatchError(ctx, classify(err))
	return nil
}

func (w *Command) newContext(inv *appcmd.Invocation) (*command.Context, error) {
	if host, ok := inv.Client().(Host); ok {
		return host.NewContext(inv.Session, inv.Interaction)
	}
	return command.NewInteractionContext(inv.Session, inv.Interaction), nil
}

// interactionCanRun evaluates the bridged check chain in its fixed order:
// bot once-checks, bot global checks, the parent group's interaction gate
// (unless the parent doubles as the binding), the binding's interaction
// gate, the binding's local check, the structured side's own checks, and
// finally the prefix side's checks. The first refusal or error wins.
func (w *Command) interactionCanRun(ctx *command.Context) (bool, error) {
	inv := w.invocationFrom(ctx)

	if ctx.Bot != nil {
		if ok, err := ctx.Bot.CanRun(ctx, true); err != nil || !ok {
			return ok, err
		}
		if ok, err := ctx.Bot.CanRun(ctx, false); err != nil || !ok {
			return ok, err
		}
	}

	binding := w.Command.Binding()
	if p := w.App.Parent(); p != nil && any(p) != any(binding) {
		if p.InteractionCheck != nil {
			if ok, err := p.InteractionCheck(inv); err != nil || !ok {
				return ok, err
			}
		}
	}

	if binding != nil {
		if ic, ok := binding.(appcmd.InteractionChecker); ok {
			if ret, err := ic.InteractionCheck(inv); err != nil || !ret {
				return ret, err
			}
		}
		if bc, ok := binding.(command.BindingChecker); ok {
			if ret, err := bc.BindingCheck(ctx); err != nil || !ret {
				return ret, err
			}
		}
	}

	for _, check := range w.App.Checks {
		if ok, err := check(inv); err != nil || !ok {
			return ok, err
		}
	}
	for _, check := range w.Command.Checks {
		if ok, err := check(ctx); err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

// interactionParse binds the structured payload's options and projects them
// into the context's argument map under their declared parameter names.
func (w *Command) interactionParse(ctx *command.Context) error {
	inv := w.invocationFrom(ctx)
	if err := w.App.BindOptions(inv); err != nil {
		return err
	}
	ctx.Args = map[string]any(inv.Namespace)
	return nil
}

// invocationFrom recovers the invocation the adapter parked on the context,
// or synthesizes one for contexts built outside tree dispatch.
func (w *Command) invocationFrom(ctx *command.Context) *appcmd.Invocation {
	if inv, ok := ctx.Baton.(*appcmd.Invocation); ok && inv != nil {
		return inv
	}
	inv := appcmd.NewInvocation(ctx.Session, ctx.Interaction, w.App)
	ctx.Baton = inv
	inv.Baton = ctx
	return inv
}

// classify maps a bridged failure onto the command-side taxonomy: structured
// errors carrying a command-side cause unwrap to it, other structured errors
// are wrapped with the cause preserved, command-side errors pass through
// unchanged, and so does everything else.
func classify(err error) error {
	var te *appcmd.TransformerError
	var ie *appcmd.InvokeError
	if errors.As(err, &te) || errors.As(err, &ie) {
		if cause := firstCommandError(err); cause != nil {
			return cause
		}
		return &Error{Err: err}
	}
	if appcmd.IsError(err) {
		return &Error{Err: err}
	}
	return err
}

// firstCommandError walks the cause chain for the first error that belongs
// to the command-side taxonomy.
func firstCommandError(err error) error {
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		if _, ok := cause.(command.Error); ok {
			return cause
		}
	}
	return nil
}
