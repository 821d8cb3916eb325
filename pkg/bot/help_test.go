package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/hybridkit/pkg/command"
)

func TestHelpOverview(t *testing.T) {
	b := testBot(t, WithoutHelp())
	require.NoError(t, b.AddTextCommand(&command.Command{Name: "ping", Description: "round trip"}))
	require.NoError(t, b.AddTextCommand(&command.Command{Name: "secret", Hidden: true}))
	group := &command.Group{Command: command.Command{Name: "admin", Description: "guild tools"}}
	require.NoError(t, group.AddCommand(&command.Command{Name: "ban", Description: "remove a user"}))
	require.NoError(t, b.AddTextGroup(group))

	out := b.helpOverview("!")

	assert.Contains(t, out, "!ping - round trip")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "!admin - guild tools")
	assert.Contains(t, out, "admin ban - remove a user")
	assert.Contains(t, out, "!help <command>")
}

func TestHelpEntryCommand(t *testing.T) {
	cmd := &command.Command{
		Name:        "greet",
		Description: "greets a person",
		Aliases:     []string{"hi"},
		Params: []*command.Param{
			{Name: "name", Required: true},
			{Name: "times"},
		},
	}

	out := helpEntry(cmd, "!", "greet")

	assert.Contains(t, out, "!greet <name> [times]")
	assert.Contains(t, out, "greets a person")
	assert.Contains(t, out, "Aliases: hi")
}

func TestHelpEntryUsageOverride(t *testing.T) {
	cmd := &command.Command{Name: "roll", Usage: "<dice>d<sides>"}

	out := helpEntry(cmd, "!", "roll")

	assert.Contains(t, out, "!roll <dice>d<sides>")
}

func TestHelpEntryGroupListsSubcommands(t *testing.T) {
	group := &command.Group{Command: command.Command{Name: "admin", Description: "guild tools"}}
	require.NoError(t, group.AddCommand(&command.Command{Name: "ban", Description: "remove a user"}))
	require.NoError(t, group.AddCommand(&command.Command{Name: "audit", Hidden: true}))

	out := helpEntry(group, "!", "admin")

	assert.Contains(t, out, "Subcommands:")
	assert.Contains(t, out, "ban - remove a user")
	assert.NotContains(t, out, "audit")
}

func TestResolveHelpTarget(t *testing.T) {
	b := testBot(t, WithoutHelp())
	group := &command.Group{Command: command.Command{Name: "admin", Aliases: []string{"adm"}}}
	require.NoError(t, group.AddCommand(&command.Command{Name: "ban"}))
	require.NoError(t, b.AddTextGroup(group))

	m, path := b.resolveHelpTarget("adm ban")
	require.NotNil(t, m)
	assert.Equal(t, "admin ban", path, "aliases render as primary names")

	m, path = b.resolveHelpTarget("admin bogus")
	assert.Nil(t, m)
	assert.Equal(t, "admin bogus", path)

	m, path = b.resolveHelpTarget("nosuch")
	assert.Nil(t, m)
	assert.Equal(t, "nosuch", path)
}
