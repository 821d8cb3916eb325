package hybrid

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/hybridkit/pkg/appcmd"
	"github.com/keshon/hybridkit/pkg/command"
)

// optionForParam resolves the wire shape of a declared parameter once, at
// construction time. Converters with a native option type map directly; a
// converter that is itself a transformer keeps its declared type; anything
// else is declared as a string option and funneled through the converter at
// bind time.
func optionForParam(p *command.Param) *appcmd.Option {
	opt := &appcmd.Option{
		Name:        p.Name,
		Description: p.Description,
		Required:    p.Required,
		Default:     p.Default,
	}
	switch conv := p.Converter.(type) {
	case nil:
		opt.Type = discordgo.ApplicationCommandOptionString
	case appcmd.Transformer:
		opt.Type = conv.Type()
		opt.Transformer = conv
	case command.IntConverter:
		opt.Type = discordgo.ApplicationCommandOptionInteger
	case command.FloatConverter:
		opt.Type = discordgo.ApplicationCommandOptionNumber
	case command.BoolConverter:
		opt.Type = discordgo.ApplicationCommandOptionBoolean
	case command.UserConverter:
		opt.Type = discordgo.ApplicationCommandOptionUser
	case command.MemberConverter:
		opt.Type = discordgo.ApplicationCommandOptionUser
		opt.Transformer = memberTransformer{}
	case command.ChannelConverter:
		opt.Type = discordgo.ApplicationCommandOptionChannel
	case command.RoleConverter:
		opt.Type = discordgo.ApplicationCommandOptionRole
	default:
		opt.Type = discordgo.ApplicationCommandOptionString
		opt.Transformer = converterTransformer{conv: conv}
	}
	return opt
}

// converterTransformer runs a prefix-side converter against the raw string
// value of a bridged option. Failures outside the command taxonomy become
// ConversionError so both surfaces report conversion problems identically.
type converterTransformer struct {
	conv command.Converter
}

func (converterTransformer) Type() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionString
}

func (t converterTransformer) Transform(inv *appcmd.Invocation, value any) (any, error) {
	ctx := contextFrom(inv)
	arg, ok := value.(string)
	if !ok {
		arg = fmt.Sprint(value)
	}
	out, err := t.conv.Convert(ctx, arg)
	if err != nil {
		if command.IsError(err) {
			return nil, err
		}
		return nil, &command.ConversionError{Converter: t.conv, Err: err}
	}
	return out, nil
}

// memberTransformer keeps the member converter's result type on the bridged
// surface: the option is a native user picker, but the bound value is the
// resolved guild member, matching what the prefix path produces.
type memberTransformer struct{}

func (memberTransformer) Type() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionUser
}

func (memberTransformer) Transform(inv *appcmd.Invocation, value any) (any, error) {
	id, _ := value.(string)
	if m := inv.ResolvedMember(id); m != nil {
		return m, nil
	}
	if u := inv.ResolvedUser(id); u != nil {
		return &discordgo.Member{User: u}, nil
	}
	return nil, &command.BadArgumentError{Value: id, Message: fmt.Sprintf("member %q not found", id)}
}

// contextFrom recovers the bridged context the adapter parked on the
// invocation, or synthesizes a bare one for standalone use.
func contextFrom(inv *appcmd.Invocation) *command.Context {
	if ctx, ok := inv.Baton.(*command.Context); ok && ctx != nil {
		return ctx
	}
	return command.NewInteractionContext(inv.Session, inv.Interaction)
}
