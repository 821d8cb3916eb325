package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBot implements Bot and records global check evaluation.
type recordingBot struct {
	trace   *[]string
	allow   bool
	errored []error
}

func (b *recordingBot) CanRun(_ *Context, once bool) (bool, error) {
	label := "bot"
	if once {
		label = "bot-once"
	}
	*b.trace = append(*b.trace, label)
	return b.allow, nil
}

func (b *recordingBot) OnCommandError(_ *Context, err error) {
	b.errored = append(b.errored, err)
}

// traceBinding implements BindingChecker and BindingErrorHandler.
type traceBinding struct {
	trace  *[]string
	allow  bool
	errors []error
}

func (b *traceBinding) BindingName() string { return "trace" }

func (b *traceBinding) BindingCheck(*Context) (bool, error) {
	*b.trace = append(*b.trace, "binding")
	return b.allow, nil
}

func (b *traceBinding) BindingError(_ *Context, err error) {
	b.errors = append(b.errors, err)
}

func textContext(raw string) *Context {
	return NewMessageContext(nil, nil, "!", "test", raw)
}

func TestInvokeParsesAndRuns(t *testing.T) {
	var gotWho string
	var gotCount int64
	var gotReason string

	cmd := &Command{
		Name: "warn",
		Params: []*Param{
			{Name: "who", Required: true},
			{Name: "count", Required: true, Converter: IntConverter{}},
			{Name: "reason", Rest: true, Default: "no reason"},
		},
		Run: func(ctx *Context) error {
			gotWho = ctx.String("who")
			gotCount = ctx.Int("count")
			gotReason = ctx.String("reason")
			return nil
		},
	}

	require.NoError(t, cmd.Invoke(textContext("alice 3 spamming the channel")))
	assert.Equal(t, "alice", gotWho)
	assert.EqualValues(t, 3, gotCount)
	assert.Equal(t, "spamming the channel", gotReason)
}

func TestInvokeAppliesDefaults(t *testing.T) {
	cmd := &Command{
		Name: "roll",
		Params: []*Param{
			{Name: "sides", Converter: IntConverter{}, Default: int64(6)},
		},
		Run: func(ctx *Context) error { return nil },
	}

	ctx := textContext("")
	require.NoError(t, cmd.Invoke(ctx))
	assert.EqualValues(t, 6, ctx.Int("sides"))
}

func TestInvokeMissingRequiredArgument(t *testing.T) {
	cmd := &Command{
		Name:   "ban",
		Params: []*Param{{Name: "who", Required: true}},
		Run:    func(*Context) error { return nil },
	}

	err := cmd.Invoke(textContext(""))
	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "who", missing.Param)
}

func TestCheckOrdering(t *testing.T) {
	var trace []string
	bot := &recordingBot{trace: &trace, allow: true}
	binding := &traceBinding{trace: &trace, allow: true}

	cmd := &Command{
		Name: "audit",
		Checks: []Check{
			func(*Context) (bool, error) {
				trace = append(trace, "local")
				return true, nil
			},
		},
		Run: func(*Context) error {
			trace = append(trace, "run")
			return nil
		},
	}
	cmd.Bind(binding)

	ctx := textContext("")
	ctx.Bot = bot
	require.NoError(t, cmd.Invoke(ctx))
	assert.Equal(t, []string{"bot", "binding", "local", "run"}, trace)
}

func TestCheckRefusalShortCircuits(t *testing.T) {
	var trace []string
	binding := &traceBinding{trace: &trace, allow: false}

	cmd := &Command{
		Name: "audit",
		Checks: []Check{
			func(*Context) (bool, error) {
				trace = append(trace, "local")
				return true, nil
			},
		},
		Run: func(*Context) error { return nil },
	}
	cmd.Bind(binding)

	err := cmd.Invoke(textContext(""))
	var checkErr *CheckError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, "audit", checkErr.Command)
	assert.Equal(t, []string{"binding"}, trace)
}

func TestCheckErrorPropagates(t *testing.T) {
	boom := &CheckError{Reason: "not on tuesdays"}
	cmd := &Command{
		Name:   "party",
		Checks: []Check{func(*Context) (bool, error) { return false, boom }},
		Run:    func(*Context) error { return nil },
	}

	err := cmd.Invoke(textContext(""))
	assert.Same(t, boom, err)
}

func TestConverterFailureWrapping(t *testing.T) {
	cause := errors.New("parse exploded")
	conv := ConverterFunc(func(*Context, string) (any, error) { return nil, cause })
	cmd := &Command{
		Name:   "when",
		Params: []*Param{{Name: "at", Required: true, Converter: conv}},
		Run:    func(*Context) error { return nil },
	}

	err := cmd.Invoke(textContext("tomorrow"))
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.ErrorIs(t, err, cause)
}

func TestConverterCommandErrorPassesThrough(t *testing.T) {
	bad := &BadArgumentError{Value: "x", Message: "no"}
	conv := ConverterFunc(func(*Context, string) (any, error) { return nil, bad })
	cmd := &Command{
		Name:   "when",
		Params: []*Param{{Name: "at", Required: true, Converter: conv}},
		Run:    func(*Context) error { return nil },
	}

	err := cmd.Invoke(textContext("x"))
	assert.Same(t, error(bad), err)
}

func TestCallbackErrorWrappedAsInvokeError(t *testing.T) {
	cause := errors.New("db down")
	cmd := &Command{Name: "save", Run: func(*Context) error { return cause }}

	err := cmd.Invoke(textContext(""))
	var invErr *InvokeError
	require.ErrorAs(t, err, &invErr)
	assert.ErrorIs(t, err, cause)
}

func TestCallbackCommandErrorNotWrapped(t *testing.T) {
	refusal := &CheckError{Reason: "nested refusal"}
	cmd := &Command{Name: "save", Run: func(*Context) error { return refusal }}

	err := cmd.Invoke(textContext(""))
	assert.Same(t, error(refusal), err)
}

func TestCallbackPanicRecovered(t *testing.T) {
	cmd := &Command{Name: "boom", Run: func(*Context) error { panic("oh no") }}

	err := cmd.Invoke(textContext(""))
	var invErr *InvokeError
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Error(), "oh no")
}

func TestDispatchErrorLayers(t *testing.T) {
	var trace []string
	bot := &recordingBot{trace: &trace, allow: true}
	binding := &traceBinding{trace: &trace}
	failure := errors.New("nope")

	var local []error
	cmd := &Command{
		Name:    "x",
		OnError: func(_ *Context, err error) { local = append(local, err) },
	}
	cmd.Bind(binding)

	ctx := textContext("")
	ctx.Bot = bot
	cmd.DispatchError(ctx, failure)

	assert.Equal(t, []error{failure}, local)
	assert.Equal(t, []error{failure}, binding.errors)
	assert.Equal(t, []error{failure}, bot.errored)
}

func TestInteractionHooksRouteChecksAndParsing(t *testing.T) {
	var hookChecks, hookParses int
	cmd := &Command{Name: "hybridish", Run: func(*Context) error { return nil }}
	cmd.InstallInteractionHooks(
		func(*Context) (bool, error) { hookChecks++; return true, nil },
		func(ctx *Context) error {
			hookParses++
			ctx.Args = map[string]any{"via": "hook"}
			return nil
		},
	)

	ctx := interactionContext("hybridish", nil)
	require.NoError(t, cmd.Invoke(ctx))
	assert.Equal(t, 1, hookChecks)
	assert.Equal(t, 1, hookParses)
	assert.Equal(t, "hook", ctx.String("via"))

	// prefix contexts ignore the hooks
	require.NoError(t, cmd.Invoke(textContext("")))
	assert.Equal(t, 1, hookChecks)
	assert.Equal(t, 1, hookParses)
}
