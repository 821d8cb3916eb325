package appcmd

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Group is an application command with subcommands instead of a handler. The
// platform allows one level of group nesting, so a group may hold commands
// and groups, but a nested group may only hold commands.
type Group struct {
	Name        string
	Description string

	GuildIDs                 []string
	NSFW                     bool
	DMPermission             *bool
	DefaultMemberPermissions *int64

	// InteractionCheck gates every invocation routed through this group.
	InteractionCheck Check

	// Binding is the object this group was attached from, if any.
	Binding any

	parent *Group

	mu       sync.RWMutex
	commands map[string]*Command
	groups   map[string]*Group
	order    []string
}

// NewGroup builds an empty group.
func NewGroup(name, description string) *Group {
	return &Group{
		Name:        name,
		Description: description,
		commands:    make(map[string]*Command),
		groups:      make(map[string]*Group),
	}
}

// Parent returns the group this group is nested under, or nil.
func (g *Group) Parent() *Group { return g.parent }

// QualifiedName returns the full space-separated path of the group.
func (g *Group) QualifiedName() string {
	if g.parent == nil {
		return g.Name
	}
	return g.parent.QualifiedName() + " " + g.Name
}

// AddCommand attaches a subcommand. The name must be free among both
// subcommands and nested groups.
func (g *Group) AddCommand(c *Command) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.taken(c.Name) {
		return &AlreadyRegisteredError{Name: c.Name}
	}
	if g.commands == nil {
		g.commands = make(map[string]*Command)
	}
	c.parent = g
	g.commands[c.Name] = c
	g.order = append(g.order, c.Name)
	return nil
}

// AddGroup nests a child group. Fails with ErrTooNested when this group is
// itself nested, before any state changes.
func (g *Group) AddGroup(child *Group) error {
	if g.parent != nil {
		return ErrTooNested
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.taken(child.Name) {
		return &AlreadyRegisteredError{Name: child.Name}
	}
	if g.groups == nil {
		g.groups = make(map[string]*Group)
	}
	child.parent = g
	g.groups[child.Name] = child
	g.order = append(g.order, child.Name)
	return nil
}

// Remove detaches the named subcommand or nested group. It reports whether
// anything was removed.
func (g *Group) Remove(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.commands[name]; ok {
		c.parent = nil
		delete(g.commands, name)
		g.dropOrder(name)
		return true
	}
	if child, ok := g.groups[name]; ok {
		child.parent = nil
		delete(g.groups, name)
		g.dropOrder(name)
		return true
	}
	return false
}

// Subcommand returns the named direct subcommand, or nil.
func (g *Group) Subcommand(name string) *Command {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.commands[name]
}

// Subgroup returns the named nested group, or nil.
func (g *Group) Subgroup(name string) *Group {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.groups[name]
}

// Walk visits the group's members in attachment order.
func (g *Group) Walk(fn func(c *Command, child *Group)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, name := range g.order {
		if c, ok := g.commands[name]; ok {
			fn(c, nil)
			continue
		}
		if child, ok := g.groups[name]; ok {
			fn(nil, child)
		}
	}
}

func (g *Group) taken(name string) bool {
	if _, ok := g.commands[name]; ok {
		return true
	}
	_, ok := g.groups[name]
	return ok
}

func (g *Group) dropOrder(name string) {
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			return
		}
	}
}

// asOption serializes a nested group as a subcommand-group option.
func (g *Group) asOption() *discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(g.order))
	g.Walk(func(c *Command, child *Group) {
		if c != nil {
			opts = append(opts, c.asOption())
		}
	})
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        g.Name,
		Description: fallbackDescription(g.Description),
		Options:     opts,
	}
}

// asDefinition serializes a top-level group for registration.
func (g *Group) asDefinition() *discordgo.ApplicationCommand {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(g.order))
	g.Walk(func(c *Command, child *Group) {
		if c != nil {
			opts = append(opts, c.asOption())
			return
		}
		opts = append(opts, child.asOption())
	})
	def := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     g.Name,
		Description:              fallbackDescription(g.Description),
		Options:                  opts,
		DMPermission:             g.DMPermission,
		DefaultMemberPermissions: g.DefaultMemberPermissions,
	}
	if g.NSFW {
		nsfw := true
		def.NSFW = &nsfw
	}
	return def
}
