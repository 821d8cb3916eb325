package command

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntConverter(t *testing.T) {
	v, err := IntConverter{}.Convert(nil, "42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)

	_, err = IntConverter{}.Convert(nil, "forty-two")
	var bad *BadArgumentError
	require.ErrorAs(t, err, &bad)
}

func TestFloatConverter(t *testing.T) {
	v, err := FloatConverter{}.Convert(nil, "3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = FloatConverter{}.Convert(nil, "x")
	assert.Error(t, err)
}

func TestBoolConverter(t *testing.T) {
	for _, raw := range []string{"yes", "TRUE", "1", "on"} {
		v, err := BoolConverter{}.Convert(nil, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, true, v, raw)
	}
	for _, raw := range []string{"no", "False", "0", "off"} {
		v, err := BoolConverter{}.Convert(nil, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, false, v, raw)
	}
	_, err := BoolConverter{}.Convert(nil, "maybe")
	var bad *BadArgumentError
	require.ErrorAs(t, err, &bad)
}

func stateContext(t *testing.T) *Context {
	t.Helper()
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "guild-1"}))
	require.NoError(t, state.MemberAdd(&discordgo.Member{
		GuildID: "guild-1",
		User:    &discordgo.User{ID: "111222333444555666", Username: "alice"},
	}))
	require.NoError(t, state.ChannelAdd(&discordgo.Channel{ID: "222333444555666777", GuildID: "guild-1", Name: "general"}))
	require.NoError(t, state.RoleAdd("guild-1", &discordgo.Role{ID: "333444555666777888", Name: "mods"}))

	s := &discordgo.Session{State: state}
	m := &discordgo.Message{ID: "m", ChannelID: "222333444555666777", GuildID: "guild-1", Author: &discordgo.User{ID: "u"}}
	return NewMessageContext(s, m, "!", "x", "")
}

func TestUserConverterMention(t *testing.T) {
	ctx := stateContext(t)

	v, err := UserConverter{}.Convert(ctx, "<@111222333444555666>")
	require.NoError(t, err)
	u, ok := v.(*discordgo.User)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	// nickname mention form
	v, err = UserConverter{}.Convert(ctx, "<@!111222333444555666>")
	require.NoError(t, err)
	assert.Equal(t, "alice", v.(*discordgo.User).Username)
}

func TestUserConverterRejectsGarbage(t *testing.T) {
	ctx := stateContext(t)
	_, err := UserConverter{}.Convert(ctx, "not-a-user")
	var bad *BadArgumentError
	require.ErrorAs(t, err, &bad)
}

func TestMemberConverter(t *testing.T) {
	ctx := stateContext(t)

	v, err := MemberConverter{}.Convert(ctx, "111222333444555666")
	require.NoError(t, err)
	m, ok := v.(*discordgo.Member)
	require.True(t, ok)
	assert.Equal(t, "alice", m.User.Username)
}

func TestChannelConverter(t *testing.T) {
	ctx := stateContext(t)

	v, err := ChannelConverter{}.Convert(ctx, "<#222333444555666777>")
	require.NoError(t, err)
	ch, ok := v.(*discordgo.Channel)
	require.True(t, ok)
	assert.Equal(t, "general", ch.Name)
}

func TestRoleConverter(t *testing.T) {
	ctx := stateContext(t)

	v, err := RoleConverter{}.Convert(ctx, "<@&333444555666777888>")
	require.NoError(t, err)
	r, ok := v.(*discordgo.Role)
	require.True(t, ok)
	assert.Equal(t, "mods", r.Name)
}
