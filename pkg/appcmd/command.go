package appcmd

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Check gates an invocation before its handler runs. Returning false without
// an error turns into a CheckError naming the command.
type Check func(*Invocation) (bool, error)

// InteractionChecker is implemented by bindings that want to veto every
// invocation of the commands bound to them.
type InteractionChecker interface {
	InteractionCheck(*Invocation) (bool, error)
}

// Command is a single application command or subcommand leaf.
type Command struct {
	Name        string
	Description string

	// GuildIDs restricts registration to the listed guilds. Empty means
	// global.
	GuildIDs []string

	NSFW                     bool
	DMPermission             *bool
	DefaultMemberPermissions *int64

	// Options declares the command's parameters in payload order.
	Options []*Option

	Checks  []Check
	Handler func(*Invocation) error

	// Binding is the object this command was attached from, if any. A
	// binding that implements InteractionChecker gates every invocation.
	Binding any

	parent *Group
	invoke func(*Invocation) error
}

// Parent returns the group this command is nested under, or nil.
func (c *Command) Parent() *Group { return c.parent }

// QualifiedName returns the full space-separated path of the command.
func (c *Command) QualifiedName() string {
	if c.parent == nil {
		return c.Name
	}
	parts := []string{c.Name}
	for g := c.parent; g != nil; g = g.parent {
		parts = append(parts, g.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}

// SetInvoker replaces the command's whole invocation flow. Adapters that
// bridge another command surface install their own flow here; checks, option
// binding and the handler are then the adapter's responsibility.
func (c *Command) SetInvoker(f func(*Invocation) error) { c.invoke = f }

// Invoke runs the command for the given invocation: checks, option binding,
// then the handler. An installed invoker replaces all three.
func (c *Command) Invoke(inv *Invocation) error {
	inv.Command = c
	if c.invoke != nil {
		return c.invoke(inv)
	}
	ok, err := c.runChecks(inv)
	if err != nil {
		return err
	}
	if !ok {
		return &CheckError{Command: c.QualifiedName()}
	}
	if err := c.BindOptions(inv); err != nil {
		return err
	}
	return c.call(inv)
}

// runChecks evaluates enclosing group gates, the binding gate, and then the
// command's own checks, stopping at the first refusal or error. A parent
// group that is itself the binding is consulted once, through the binding
// gate.
func (c *Command) runChecks(inv *Invocation) (bool, error) {
	for g := c.parent; g != nil; g = g.parent {
		if c.Binding != nil && any(g) == c.Binding {
			continue
		}
		if g.InteractionCheck == nil {
			continue
		}
		allowed, err := g.InteractionCheck(inv)
		if err != nil || !allowed {
			return false, err
		}
	}
	if g, ok := c.Binding.(*Group); ok {
		if g.InteractionCheck != nil {
			allowed, err := g.InteractionCheck(inv)
			if err != nil || !allowed {
				return false, err
			}
		}
	} else if ic, ok := c.Binding.(InteractionChecker); ok {
		allowed, err := ic.InteractionCheck(inv)
		if err != nil || !allowed {
			return false, err
		}
	}
	for _, check := range c.Checks {
		allowed, err := check(inv)
		if err != nil || !allowed {
			return false, err
		}
	}
	return true, nil
}

// BindOptions decodes the interaction's raw options against the declared
// ones and fills inv.Namespace. A required option missing from the payload,
// or a payload value of the wrong shape, means the registered definition no
// longer matches this one.
func (c *Command) BindOptions(inv *Invocation) error {
	ns := make(Namespace, len(c.Options))
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(inv.rawOptions))
	for _, raw := range inv.rawOptions {
		byName[raw.Name] = raw
	}
	for _, o := range c.Options {
		raw, ok := byName[o.Name]
		if !ok {
			if o.Required {
				return &SignatureMismatchError{Command: c.QualifiedName()}
			}
			ns[o.Name] = o.Default
			continue
		}
		v, err := o.transform(inv, raw)
		if err != nil {
			return err
		}
		ns[o.Name] = v
	}
	inv.Namespace = ns
	return nil
}

func (c *Command) call(inv *Invocation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvokeError{Command: c.QualifiedName(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if c.Handler == nil {
		return &InvokeError{Command: c.QualifiedName(), Err: fmt.Errorf("command has no handler")}
	}
	if err := c.Handler(inv); err != nil {
		if IsError(err) {
			return err
		}
		return &InvokeError{Command: c.QualifiedName(), Err: err}
	}
	return nil
}

// asOption serializes the command as a subcommand option of its group.
func (c *Command) asOption() *discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(c.Options))
	for _, o := range c.Options {
		opts = append(opts, o.definition())
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        c.Name,
		Description: fallbackDescription(c.Description),
		Options:     opts,
	}
}

// asDefinition serializes a top-level command for registration.
func (c *Command) asDefinition() *discordgo.ApplicationCommand {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(c.Options))
	for _, o := range c.Options {
		opts = append(opts, o.definition())
	}
	def := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     c.Name,
		Description:              fallbackDescription(c.Description),
		Options:                  opts,
		DMPermission:             c.DMPermission,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
	}
	if c.NSFW {
		nsfw := true
		def.NSFW = &nsfw
	}
	return def
}

// fallbackDescription substitutes the placeholder the platform accepts for
// commands declared without one.
func fallbackDescription(s string) string {
	if s == "" {
		return "…"
	}
	return s
}
