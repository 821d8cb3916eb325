// Package appcmd models structured application commands: declared options,
// one level of group nesting, payload binding and check gates. A Tree holds
// the top-level commands and groups, routes incoming interactions to the
// resolved leaf, and serializes definitions for registration.
package appcmd

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Tree is the top level of the structured command system. Registration and
// dispatch are safe for concurrent use.
type Tree struct {
	mu       sync.RWMutex
	commands map[string]*Command
	groups   map[string]*Group
	order    []string

	client any
	log    zerolog.Logger

	// OnError receives every error produced while dispatching an
	// invocation. When nil, errors are logged and dropped.
	OnError func(*Invocation, error)

	// Fallback handles application-command interactions that match no
	// registered command. When nil, a NotFoundError goes through OnError.
	Fallback func(s *discordgo.Session, i *discordgo.InteractionCreate)
}

// NewTree builds an empty tree.
func NewTree(log zerolog.Logger) *Tree {
	return &Tree{
		commands: make(map[string]*Command),
		groups:   make(map[string]*Group),
		log:      log,
	}
}

// BindClient attaches the owning dispatcher. Invocations expose it through
// Client so adapters can reach host capabilities.
func (t *Tree) BindClient(client any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.client = client
}

// Client returns the bound dispatcher, or nil.
func (t *Tree) Client() any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client
}

// Add registers a top-level command. The name must be free among both
// commands and groups.
func (t *Tree) Add(c *Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.taken(c.Name) {
		return &AlreadyRegisteredError{Name: c.Name}
	}
	t.commands[c.Name] = c
	t.order = append(t.order, c.Name)
	return nil
}

// AddGroup registers a top-level group.
func (t *Tree) AddGroup(g *Group) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.taken(g.Name) {
		return &AlreadyRegisteredError{Name: g.Name}
	}
	t.groups[g.Name] = g
	t.order = append(t.order, g.Name)
	return nil
}

// Remove unregisters the named top-level command or group. It reports
// whether anything was removed.
func (t *Tree) Remove(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.commands[name]; ok {
		delete(t.commands, name)
		t.dropOrder(name)
		return true
	}
	if _, ok := t.groups[name]; ok {
		delete(t.groups, name)
		t.dropOrder(name)
		return true
	}
	return false
}

// Command returns the named top-level command, or nil.
func (t *Tree) Command(name string) *Command {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.commands[name]
}

// Group returns the named top-level group, or nil.
func (t *Tree) Group(name string) *Group {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.groups[name]
}

func (t *Tree) taken(name string) bool {
	if _, ok := t.commands[name]; ok {
		return true
	}
	_, ok := t.groups[name]
	return ok
}

func (t *Tree) dropOrder(name string) {
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// Dispatch resolves an application-command interaction to its leaf command
// and invokes it. Interactions of other types are ignored.
func (t *Tree) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	leaf, rawOptions := t.resolve(data)
	if leaf == nil {
		if t.Fallback != nil {
			t.Fallback(s, i)
			return
		}
		inv := &Invocation{Session: s, Interaction: i, tree: t}
		t.dispatchError(inv, &NotFoundError{Name: data.Name})
		return
	}

	inv := &Invocation{
		Session:     s,
		Interaction: i,
		Command:     leaf,
		tree:        t,
		rawOptions:  rawOptions,
	}
	if err := leaf.Invoke(inv); err != nil {
		t.dispatchError(inv, err)
	}
}

// resolve walks the payload's subcommand levels down to the invoked leaf and
// returns it together with the leaf's raw options.
func (t *Tree) resolve(data discordgo.ApplicationCommandInteractionData) (*Command, []*discordgo.ApplicationCommandInteractionDataOption) {
	t.mu.RLock()
	top, isCommand := t.commands[data.Name]
	grp := t.groups[data.Name]
	t.mu.RUnlock()

	if isCommand {
		return top, data.Options
	}
	if grp == nil {
		return nil, nil
	}

	opts := data.Options
	for g := grp; ; {
		if len(opts) == 0 {
			return nil, nil
		}
		raw := opts[0]
		switch raw.Type {
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			g = g.Subgroup(raw.Name)
			if g == nil {
				return nil, nil
			}
			opts = raw.Options
		case discordgo.ApplicationCommandOptionSubCommand:
			leaf := g.Subcommand(raw.Name)
			if leaf == nil {
				return nil, nil
			}
			return leaf, raw.Options
		default:
			return nil, nil
		}
	}
}

func (t *Tree) dispatchError(inv *Invocation, err error) {
	if t.OnError != nil {
		t.OnError(inv, err)
		return
	}
	name := ""
	if inv.Command != nil {
		name = inv.Command.QualifiedName()
	}
	t.log.Error().Err(err).Str("command", name).Msg("application command failed")
}

// Definitions serializes every registered command and group for
// registration, bucketed by guild. The empty key holds global definitions.
// Buckets keep registration order.
func (t *Tree) Definitions() map[string][]*discordgo.ApplicationCommand {
	t.mu.RLock()
	defer t.mu.RUnlock()

	defs := make(map[string][]*discordgo.ApplicationCommand)
	add := func(guildIDs []string, def *discordgo.ApplicationCommand) {
		if len(guildIDs) == 0 {
			defs[""] = append(defs[""], def)
			return
		}
		for _, gid := range guildIDs {
			defs[gid] = append(defs[gid], def)
		}
	}
	for _, name := range t.order {
		if c, ok := t.commands[name]; ok {
			add(c.GuildIDs, c.asDefinition())
			continue
		}
		if g, ok := t.groups[name]; ok {
			add(g.GuildIDs, g.asDefinition())
		}
	}
	return defs
}
