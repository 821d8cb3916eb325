package appcmd

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *Tree { return NewTree(zerolog.Nop()) }

func appInteraction(name string, opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: opts,
			},
			GuildID:   "guild-1",
			ChannelID: "chan-1",
			Member: &discordgo.Member{
				User: &discordgo.User{ID: "user-1", Username: "tester"},
			},
		},
	}
}

func TestTreeDispatchTopLevelCommand(t *testing.T) {
	tree := testTree()
	var got *Invocation
	cmd := &Command{Name: "ping", Handler: func(inv *Invocation) error {
		got = inv
		return nil
	}}
	require.NoError(t, tree.Add(cmd))

	tree.Dispatch(nil, appInteraction("ping", nil))

	require.NotNil(t, got)
	assert.Equal(t, cmd, got.Command)
	assert.Equal(t, tree, got.Tree())
	assert.Equal(t, "user-1", got.Sender().ID)
}

func TestTreeDispatchNestedSubcommand(t *testing.T) {
	tree := testTree()
	parent := NewGroup("admin", "admin tools")
	child := NewGroup("roles", "role tools")
	require.NoError(t, parent.AddGroup(child))

	var calls []string
	leaf := &Command{Name: "grant", Handler: func(inv *Invocation) error {
		calls = append(calls, inv.Command.QualifiedName())
		return nil
	}}
	require.NoError(t, child.AddCommand(leaf))
	require.NoError(t, tree.AddGroup(parent))

	payload := appInteraction("admin", []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Name: "roles",
			Type: discordgo.ApplicationCommandOptionSubCommandGroup,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "grant", Type: discordgo.ApplicationCommandOptionSubCommand},
			},
		},
	})
	tree.Dispatch(nil, payload)

	assert.Equal(t, []string{"admin roles grant"}, calls)
}

func TestTreeDispatchUnknownUsesFallback(t *testing.T) {
	tree := testTree()
	fallbacks := 0
	tree.Fallback = func(s *discordgo.Session, i *discordgo.InteractionCreate) { fallbacks++ }

	tree.Dispatch(nil, appInteraction("ghost", nil))

	assert.Equal(t, 1, fallbacks)
}

func TestTreeDispatchUnknownReportsNotFound(t *testing.T) {
	tree := testTree()
	var dispatched error
	tree.OnError = func(inv *Invocation, err error) { dispatched = err }

	tree.Dispatch(nil, appInteraction("ghost", nil))

	var nf *NotFoundError
	require.ErrorAs(t, dispatched, &nf)
	assert.Equal(t, "ghost", nf.Name)
}

func TestTreeDispatchRoutesErrorsToOnError(t *testing.T) {
	tree := testTree()
	var dispatched error
	tree.OnError = func(inv *Invocation, err error) { dispatched = err }

	denied := &Command{Name: "locked", Checks: []Check{
		func(*Invocation) (bool, error) { return false, nil },
	}}
	require.NoError(t, tree.Add(denied))

	tree.Dispatch(nil, appInteraction("locked", nil))

	var ce *CheckError
	require.ErrorAs(t, dispatched, &ce)
	assert.Equal(t, "locked", ce.Command)
}

func TestTreeRejectsDuplicateNames(t *testing.T) {
	tree := testTree()
	require.NoError(t, tree.Add(&Command{Name: "ping"}))

	var are *AlreadyRegisteredError
	require.ErrorAs(t, tree.Add(&Command{Name: "ping"}), &are)
	require.ErrorAs(t, tree.AddGroup(NewGroup("ping", "")), &are)
	assert.Equal(t, "ping", are.Name)
}

func TestTreeRemove(t *testing.T) {
	tree := testTree()
	require.NoError(t, tree.Add(&Command{Name: "ping"}))
	require.NoError(t, tree.AddGroup(NewGroup("admin", "")))

	assert.True(t, tree.Remove("ping"))
	assert.False(t, tree.Remove("ping"))
	assert.Nil(t, tree.Command("ping"))

	assert.True(t, tree.Remove("admin"))
	assert.Nil(t, tree.Group("admin"))
}

func TestGroupNestingLimit(t *testing.T) {
	top := NewGroup("a", "")
	mid := NewGroup("b", "")
	require.NoError(t, top.AddGroup(mid))

	deep := NewGroup("c", "")
	require.ErrorIs(t, mid.AddGroup(deep), ErrTooNested)

	// The failed attach must not leave either side changed.
	assert.Nil(t, deep.Parent())
	assert.Nil(t, mid.Subgroup("c"))
}

func TestGroupRejectsDuplicateMemberNames(t *testing.T) {
	g := NewGroup("admin", "")
	require.NoError(t, g.AddCommand(&Command{Name: "ban"}))

	var are *AlreadyRegisteredError
	require.ErrorAs(t, g.AddCommand(&Command{Name: "ban"}), &are)
	require.ErrorAs(t, g.AddGroup(NewGroup("ban", "")), &are)
}

func TestGroupRemoveDetachesMember(t *testing.T) {
	g := NewGroup("admin", "")
	c := &Command{Name: "ban"}
	require.NoError(t, g.AddCommand(c))
	require.Equal(t, g, c.Parent())

	assert.True(t, g.Remove("ban"))
	assert.Nil(t, c.Parent())
	assert.Nil(t, g.Subcommand("ban"))
}

func TestTreeDefinitions(t *testing.T) {
	tree := testTree()
	require.NoError(t, tree.Add(&Command{
		Name:        "ping",
		Description: "round trip latency",
		Options: []*Option{
			{Name: "verbose", Description: "include timings", Type: discordgo.ApplicationCommandOptionBoolean},
		},
	}))

	grp := NewGroup("admin", "")
	grp.GuildIDs = []string{"guild-1"}
	sub := NewGroup("roles", "role management")
	require.NoError(t, grp.AddGroup(sub))
	require.NoError(t, sub.AddCommand(&Command{Name: "grant", Description: "grant a role"}))
	require.NoError(t, tree.AddGroup(grp))

	defs := tree.Definitions()
	require.Len(t, defs[""], 1)
	require.Len(t, defs["guild-1"], 1)

	ping := defs[""][0]
	assert.Equal(t, discordgo.ChatApplicationCommand, ping.Type)
	assert.Equal(t, "round trip latency", ping.Description)
	require.Len(t, ping.Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionBoolean, ping.Options[0].Type)

	admin := defs["guild-1"][0]
	assert.Equal(t, "…", admin.Description, "missing descriptions get the placeholder")
	require.Len(t, admin.Options, 1)
	rolesOpt := admin.Options[0]
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, rolesOpt.Type)
	require.Len(t, rolesOpt.Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, rolesOpt.Options[0].Type)
	assert.Equal(t, "grant", rolesOpt.Options[0].Name)
}
