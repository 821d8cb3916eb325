package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndLookup(t *testing.T) {
	r := NewRegistry()
	cmd := &Command{Name: "ping", Aliases: []string{"p", "pong"}}

	require.NoError(t, r.Add(cmd))

	assert.Same(t, cmd, r.Get("ping").head())
	assert.Same(t, cmd, r.Get("p").head())
	assert.Same(t, cmd, r.Get("pong").head())
	assert.Nil(t, r.Get("nope"))
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Command{Name: "ping"}))

	err := r.Add(&Command{Name: "ping"})
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "ping", regErr.Name)
	assert.False(t, regErr.AliasConflict)
}

func TestRegistryAliasConflictRollsBack(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Command{Name: "ping", Aliases: []string{"p"}}))

	err := r.Add(&Command{Name: "pong", Aliases: []string{"po", "p"}})
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "p", regErr.Name)
	assert.True(t, regErr.AliasConflict)

	// nothing of the failed registration survives
	assert.Nil(t, r.Get("pong"))
	assert.Nil(t, r.Get("po"))
	// and the existing owner of the alias is untouched
	assert.Equal(t, "ping", r.Get("p").head().Name)
}

func TestRegistryRemovePrimaryStripsAliases(t *testing.T) {
	r := NewRegistry()
	cmd := &Command{Name: "ping", Aliases: []string{"p"}}
	require.NoError(t, r.Add(cmd))

	removed := r.Remove("ping")
	require.NotNil(t, removed)
	assert.Same(t, cmd, removed.head())
	assert.Nil(t, r.Get("ping"))
	assert.Nil(t, r.Get("p"))
}

func TestRegistryRemoveAliasKeepsPrimary(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Command{Name: "ping", Aliases: []string{"p"}}))

	removed := r.Remove("p")
	require.NotNil(t, removed)
	assert.Nil(t, r.Get("p"))
	assert.NotNil(t, r.Get("ping"))
}

func TestRegistryAllKeepsOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(&Command{Name: "zeta"}))
	require.NoError(t, r.Add(&Command{Name: "alpha", Aliases: []string{"a"}}))
	require.NoError(t, r.Add(&Command{Name: "mid"}))

	names := make([]string, 0, 3)
	for _, m := range r.All() {
		names = append(names, m.head().Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestGroupAddSetsParent(t *testing.T) {
	g := &Group{Command: Command{Name: "settings"}}
	sub := &Command{Name: "show"}

	require.NoError(t, g.AddCommand(sub))
	assert.Same(t, g, sub.Parent())
	assert.Equal(t, "settings show", sub.QualifiedName())

	// a failed add must not leave a parent behind
	dup := &Command{Name: "show"}
	require.Error(t, g.AddCommand(dup))
	assert.Nil(t, dup.Parent())
}

func TestGroupRemoveClearsParent(t *testing.T) {
	g := &Group{Command: Command{Name: "settings"}}
	sub := &Command{Name: "show", Aliases: []string{"s"}}
	require.NoError(t, g.AddCommand(sub))

	// removing by alias keeps the command attached
	g.Remove("s")
	assert.Same(t, g, sub.Parent())

	g.Remove("show")
	assert.Nil(t, sub.Parent())
	assert.Nil(t, g.Lookup("show"))
}

func TestNestedGroups(t *testing.T) {
	top := &Group{Command: Command{Name: "settings"}}
	mid := &Group{Command: Command{Name: "prefix"}}
	leaf := &Command{Name: "set"}

	require.NoError(t, top.AddGroup(mid))
	require.NoError(t, mid.AddCommand(leaf))

	assert.Equal(t, "settings prefix set", leaf.QualifiedName())

	found, ok := top.Lookup("prefix").(*Group)
	require.True(t, ok)
	assert.Same(t, mid, found)
}
