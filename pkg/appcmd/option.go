package appcmd

import (
	"github.com/bwmarrin/discordgo"
)

// Transformer converts one received option value into the handler-facing
// value. Implementations declare the wire type they consume; converters from
// other invocation surfaces are adapted onto this interface.
type Transformer interface {
	Type() discordgo.ApplicationCommandOptionType
	Transform(inv *Invocation, value any) (any, error)
}

// Option declares one parameter of an application command.
type Option struct {
	Name        string
	Description string
	Type        discordgo.ApplicationCommandOptionType
	Required    bool

	// Default is stored under the option name when the payload carries no
	// value and Required is false.
	Default any

	Choices      []*discordgo.ApplicationCommandOptionChoice
	ChannelTypes []discordgo.ChannelType
	MinValue     *float64
	MaxValue     float64
	MinLength    *int
	MaxLength    int
	Autocomplete bool

	// Transformer overrides the built-in decoding for Type.
	Transformer Transformer
}

// transform decodes one received option. Failures outside the
// application-command taxonomy are wrapped into TransformerError with the
// cause preserved.
func (o *Option) transform(inv *Invocation, raw *discordgo.ApplicationCommandInteractionDataOption) (any, error) {
	if o.Transformer != nil {
		v, err := o.Transformer.Transform(inv, raw.Value)
		if err != nil {
			if IsError(err) {
				return nil, err
			}
			return nil, &TransformerError{Value: raw.Value, Type: o.Type, Err: err}
		}
		return v, nil
	}
	return decodeOption(inv, o, raw)
}

// definition serialises the option for the registration API.
func (o *Option) definition() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         o.Type,
		Name:         o.Name,
		Description:  o.Description,
		Required:     o.Required,
		Choices:      o.Choices,
		ChannelTypes: o.ChannelTypes,
		MinValue:     o.MinValue,
		MaxValue:     o.MaxValue,
		MinLength:    o.MinLength,
		MaxLength:    o.MaxLength,
		Autocomplete: o.Autocomplete,
	}
}
