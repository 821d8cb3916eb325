package bot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/hybridkit/pkg/appcmd"
	"github.com/keshon/hybridkit/pkg/command"
	"github.com/keshon/hybridkit/pkg/hybrid"
)

func TestNewInstallsHelp(t *testing.T) {
	b := testBot(t)
	assert.NotNil(t, b.Lookup("help"))

	b = testBot(t, WithoutHelp())
	assert.Nil(t, b.Lookup("help"))
}

func TestAddCommandRegistersBothSurfaces(t *testing.T) {
	b := testBot(t)
	w := hybrid.New(&command.Command{Name: "ping"})
	require.NoError(t, b.AddCommand(w))

	assert.Equal(t, command.Member(w.Command), b.Lookup("ping"))
	assert.Equal(t, w.App, b.Tree().Command("ping"))
}

func TestAddCommandRollsBackStructuredSide(t *testing.T) {
	b := testBot(t)
	require.NoError(t, b.AddTextCommand(&command.Command{Name: "dup"}))

	err := b.AddCommand(hybrid.New(&command.Command{Name: "dup"}))

	var regErr *command.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Nil(t, b.Tree().Command("dup"), "structured side rolled back")
}

func TestAddCommandDuplicateOnTree(t *testing.T) {
	b := testBot(t)
	require.NoError(t, b.AddCommand(hybrid.New(&command.Command{Name: "ping"})))

	err := b.AddCommand(hybrid.New(&command.Command{Name: "ping"}))

	var already *appcmd.AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
	assert.NotNil(t, b.Lookup("ping"), "the first registration stays")
}

func TestAddGroupRollsBackStructuredSide(t *testing.T) {
	b := testBot(t)
	require.NoError(t, b.AddTextCommand(&command.Command{Name: "admin"}))

	err := b.AddGroup(hybrid.NewGroup(&command.Group{Command: command.Command{Name: "admin"}}))

	var regErr *command.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Nil(t, b.Tree().Group("admin"))
}

func TestCommandsListsRegistrationOrder(t *testing.T) {
	b := testBot(t, WithoutHelp())
	require.NoError(t, b.AddTextCommand(&command.Command{Name: "ping"}))
	require.NoError(t, b.AddTextCommand(&command.Command{Name: "echo"}))

	members := b.Commands()
	require.Len(t, members, 2)
	assert.Equal(t, "ping", headOf(members[0]).Name)
	assert.Equal(t, "echo", headOf(members[1]).Name)
}

func TestCanRunSeparatesCheckSets(t *testing.T) {
	var trace []string
	b := testBot(t,
		WithChecks(func(*command.Context) (bool, error) {
			trace = append(trace, "global")
			return true, nil
		}),
		WithOnceChecks(func(*command.Context) (bool, error) {
			trace = append(trace, "once")
			return true, nil
		}),
	)
	ctx := command.NewMessageContext(nil, &discordgo.Message{}, "!", "x", "")

	ok, err := b.CanRun(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"once"}, trace)

	ok, err = b.CanRun(ctx, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"once", "global"}, trace)
}

func TestCanRunShortCircuitsOnRefusal(t *testing.T) {
	ran := false
	b := testBot(t,
		WithChecks(
			func(*command.Context) (bool, error) { return false, nil },
			func(*command.Context) (bool, error) { ran = true; return true, nil },
		),
	)
	ctx := command.NewMessageContext(nil, &discordgo.Message{}, "!", "x", "")

	ok, err := b.CanRun(ctx, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, ran, "later checks must not run")
}

func TestNewContextCarriesBot(t *testing.T) {
	b := testBot(t)
	ctx, err := b.NewContext(b.session, commandInteraction("ping"))
	require.NoError(t, err)
	assert.Same(t, command.Bot(b), ctx.Bot)
	assert.NotNil(t, ctx.Interaction)
}

func TestOnCommandErrorDefaultLogging(t *testing.T) {
	var buf bytes.Buffer
	b := testBot(t, WithLogger(zerolog.New(&buf)))
	ctx := command.NewMessageContext(nil, &discordgo.Message{ChannelID: "chan-1"}, "!", "x", "")

	b.OnCommandError(ctx, &command.NotFoundError{Name: "bogus"})
	assert.Contains(t, buf.String(), "unknown command")
	assert.NotContains(t, buf.String(), "command failed", "typos are not errors")

	buf.Reset()
	b.OnCommandError(ctx, errors.New("boom"))
	assert.Contains(t, buf.String(), "command failed")
}

func TestOnCommandErrorCustomHandlerWins(t *testing.T) {
	var buf bytes.Buffer
	var got error
	b := testBot(t,
		WithLogger(zerolog.New(&buf)),
		WithErrorHandler(func(ctx *command.Context, err error) { got = err }),
	)

	boom := errors.New("boom")
	b.OnCommandError(nil, boom)

	assert.Same(t, boom, got)
	assert.Empty(t, buf.String(), "the default path is fully replaced")
}
