// Package hybrid pairs the two command surfaces: one definition serves both
// a text-prefix command and a structured application command. The prefix
// side owns the callback, parameters and checks; the structured side is
// derived from it at construction time and kept in lockstep through every
// attach and detach. Invocations from either surface end up in the same
// callback with the same parsed arguments and the same error funnel.
package hybrid

import (
	"sync"

	"github.com/keshon/hybridkit/pkg/appcmd"
	"github.com/keshon/hybridkit/pkg/command"
)

// Member is a hybrid command or hybrid group attached to a Group.
type Member interface {
	hybridMember()
}

// Command pairs a prefix command with its derived application command. Build
// one with New; both sides share one callback, one parameter list and one
// error dispatch path.
type Command struct {
	*command.Command

	// App is the derived structured side. Its name, description and guild
	// scoping mirror the prefix side.
	App *appcmd.Command
}

func (*Command) hybridMember() {}

// New derives a hybrid command from a prefix command definition. Each
// declared parameter becomes a structured option: converters with a native
// option type map directly, anything else rides a string option through the
// converter. The structured side delegates its whole invocation flow back to
// the wrapper.
func New(inner *command.Command, opts ...Option) *Command {
	s := applySettings(opts)
	app := &appcmd.Command{
		Name:                     inner.Name,
		Description:              describe(inner.Description),
		GuildIDs:                 inner.GuildIDs,
		NSFW:                     s.nsfw,
		DMPermission:             s.dmPermission,
		DefaultMemberPermissions: s.defaultMemberPermissions,
		Checks:                   s.appChecks,
	}
	for _, p := range inner.Params {
		app.Options = append(app.Options, optionForParam(p))
	}
	w := &Command{Command: inner, App: app}
	app.SetInvoker(w.appInvoke)
	inner.InstallInteractionHooks(w.interactionCanRun, w.interactionParse)
	return w
}

// Bind attaches both sides to the binding.
func (w *Command) Bind(b command.Binding) {
	w.Command.Bind(b)
	w.App.Binding = b
}

// Group pairs a prefix group with its derived application group. Children
// attach and detach on both sides atomically.
type Group struct {
	*command.Group

	// App is the derived structured side.
	App *appcmd.Group

	fallback string

	mu      sync.Mutex
	members map[string]Member
	order   []string
}

func (*Group) hybridMember() {}

// NewGroup derives a hybrid group from a prefix group definition. A group's
// own callback is prefix-only unless WithFallback names the structured
// subcommand that should expose it.
func NewGroup(inner *command.Group, opts ...Option) *Group {
	s := applySettings(opts)
	app := appcmd.NewGroup(inner.Name, describe(inner.Description))
	app.GuildIDs = inner.GuildIDs
	app.NSFW = s.nsfw
	app.DMPermission = s.dmPermission
	app.DefaultMemberPermissions = s.defaultMemberPermissions
	app.InteractionCheck = s.interactionCheck

	g := &Group{Group: inner, App: app, members: make(map[string]Member)}
	if s.fallback != "" {
		g.installFallback(s.fallback)
	}
	return g
}

// installFallback exposes the group's own callback as a structured
// subcommand, since a bare group cannot be invoked on that surface.
func (g *Group) installFallback(name string) {
	head := &g.Group.Command
	fb := &appcmd.Command{
		Name:        name,
		Description: describe(head.Description),
	}
	for _, p := range head.Params {
		fb.Options = append(fb.Options, optionForParam(p))
	}
	w := &Command{Command: head, App: fb}
	fb.SetInvoker(w.appInvoke)
	head.InstallInteractionHooks(w.interactionCanRun, w.interactionParse)
	_ = g.App.AddCommand(fb)
	g.fallback = name
}

// Fallback returns the name of the structured subcommand that carries the
// group's own callback, or "".
func (g *Group) Fallback() string { return g.fallback }

// Bind attaches both sides to the binding.
func (g *Group) Bind(b command.Binding) {
	g.Group.Bind(b)
	g.App.Binding = b
}

// AddCommand attaches a hybrid command to both sides. The structured side is
// added first; a prefix-side conflict, name or alias, rolls it back so no
// orphaned structured registration survives.
func (g *Group) AddCommand(c *Command) error {
	if err := g.App.AddCommand(c.App); err != nil {
		return err
	}
	if err := g.Group.AddCommand(c.Command); err != nil {
		g.App.Remove(c.App.Name)
		return err
	}
	g.track(c.Command.Name, c)
	return nil
}

// AddGroup nests a hybrid group under this one. Nesting is capped at one
// level; the guard runs before any state changes on either side.
func (g *Group) AddGroup(child *Group) error {
	if g.Group.Parent() != nil {
		return ErrTooNested
	}
	if err := g.App.AddGroup(child.App); err != nil {
		return err
	}
	if err := g.Group.AddGroup(child.Group); err != nil {
		g.App.Remove(child.App.Name)
		return err
	}
	g.track(child.Group.Name, child)
	return nil
}

// Remove detaches the named child from both sides and returns it. Removing
// an alias only drops that alias on the prefix side; the structured side
// keys primary names, so its removal is a no-op then.
func (g *Group) Remove(name string) Member {
	inner := g.Group.Remove(name)
	g.App.Remove(name)
	if inner == nil {
		return nil
	}
	primary := primaryName(inner)
	g.mu.Lock()
	m := g.members[primary]
	g.mu.Unlock()
	if name == primary {
		g.untrack(primary)
	}
	return m
}

// Member resolves an attached hybrid child by name or alias.
func (g *Group) Member(name string) Member {
	inner := g.Group.Lookup(name)
	if inner == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[primaryName(inner)]
}

// Members lists attached hybrid children in attachment order.
func (g *Group) Members() []Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Member, 0, len(g.order))
	for _, name := range g.order {
		if m, ok := g.members[name]; ok {
			out = append(out, m)
		}
	}
	return out
}

// SubCommand derives a hybrid command from inner and attaches it.
func (g *Group) SubCommand(inner *command.Command, opts ...Option) (*Command, error) {
	w := New(inner, opts...)
	if err := g.AddCommand(w); err != nil {
		return nil, err
	}
	return w, nil
}

// SubGroup derives a nested hybrid group from inner and attaches it.
func (g *Group) SubGroup(inner *command.Group, opts ...Option) (*Group, error) {
	child := NewGroup(inner, opts...)
	if err := g.AddGroup(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (g *Group) track(name string, m Member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[name] = m
	g.order = append(g.order, name)
}

func (g *Group) untrack(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.members[name]; !ok {
		return
	}
	delete(g.members, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func primaryName(m command.Member) string {
	switch v := m.(type) {
	case *command.Command:
		return v.Name
	case *command.Group:
		return v.Name
	}
	return ""
}

// describe substitutes the structured side's placeholder description. The
// platform rejects empty descriptions; the prefix side keeps the empty
// string untouched.
func describe(s string) string {
	if s == "" {
		return "…"
	}
	return s
}
