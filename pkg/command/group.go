package command

import (
	"sync"
)

// Member is an entry in a command registry: a *Command or a *Group.
type Member interface {
	head() *Command
}

func (c *Command) head() *Command { return c }

// Group is a command that owns subcommands. Dispatchers descend into it word
// by word; when no subcommand matches, the group's own callback runs.
type Group struct {
	Command

	registry Registry
}

func (g *Group) head() *Command { return &g.Command }

// AddCommand registers a leaf subcommand under its name and aliases.
func (g *Group) AddCommand(c *Command) error {
	c.parent = g
	if err := g.registry.Add(c); err != nil {
		c.parent = nil
		return err
	}
	return nil
}

// AddGroup registers a subgroup under its name and aliases.
func (g *Group) AddGroup(sub *Group) error {
	sub.parent = g
	if err := g.registry.Add(sub); err != nil {
		sub.parent = nil
		return err
	}
	return nil
}

// Remove drops the named entry. Removing a primary name also drops its
// aliases; removing an alias drops only that alias. Returns the removed
// member, or nil.
func (g *Group) Remove(name string) Member {
	m := g.registry.Remove(name)
	if m != nil && m.head().Name == name {
		m.head().parent = nil
	}
	return m
}

// Lookup resolves a subcommand by name or alias.
func (g *Group) Lookup(name string) Member { return g.registry.Get(name) }

// Subcommands lists direct children in registration order, primaries only.
func (g *Group) Subcommands() []Member { return g.registry.All() }

// Registry stores command tree members by name and alias, preserving
// registration order for listings. The zero value is ready to use. Safe for
// concurrent reads once registration is done; Add/Remove take the write
// lock so late mutation is tolerated too.
type Registry struct {
	mu      sync.RWMutex
	members map[string]Member
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[string]Member)}
}

// Add registers a member under its primary name, then its aliases. A name
// collision returns RegistrationError; an alias collision rolls the primary
// name and the already-inserted aliases back out before returning
// RegistrationError with AliasConflict set, so no partial registration
// survives.
func (r *Registry) Add(m Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members == nil {
		r.members = make(map[string]Member)
	}
	c := m.head()
	if _, exists := r.members[c.Name]; exists {
		return &RegistrationError{Name: c.Name}
	}
	r.members[c.Name] = m
	r.order = append(r.order, c.Name)
	for _, alias := range c.Aliases {
		if _, exists := r.members[alias]; exists {
			r.remove(c.Name)
			return &RegistrationError{Name: alias, AliasConflict: true}
		}
		r.members[alias] = m
	}
	return nil
}

// Remove drops the named entry and returns it, or nil when absent. Removing
// by primary name also strips the member's aliases that still point at it.
func (r *Registry) Remove(name string) Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(name)
}

func (r *Registry) remove(name string) Member {
	m, ok := r.members[name]
	if !ok {
		return nil
	}
	delete(r.members, name)
	c := m.head()
	if c.Name != name {
		// name was an alias; the primary entry stays
		return m
	}
	for _, alias := range c.Aliases {
		if other, ok := r.members[alias]; ok && other == m {
			delete(r.members, alias)
		}
	}
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return m
}

// Get resolves a member by name or alias, or nil.
func (r *Registry) Get(name string) Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[name]
}

// All lists members in registration order, primary names only.
func (r *Registry) All() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Member, 0, len(r.order))
	for _, name := range r.order {
		if m, ok := r.members[name]; ok {
			list = append(list, m)
		}
	}
	return list
}
