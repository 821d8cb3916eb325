package appcmd

import "github.com/bwmarrin/discordgo"

// decodeOption turns a raw interaction option into the Go value its declared
// type implies. Interaction payloads arrive JSON-decoded, so numbers are
// float64 and snowflakes are strings; entities come from the resolved maps,
// never from REST. A payload that does not match the declared type means the
// registered definition drifted from the local one.
func decodeOption(inv *Invocation, o *Option, raw *discordgo.ApplicationCommandInteractionDataOption) (any, error) {
	mismatch := func() (any, error) {
		name := ""
		if inv != nil && inv.Command != nil {
			name = inv.Command.QualifiedName()
		}
		return nil, &SignatureMismatchError{Command: name}
	}

	switch o.Type {
	case discordgo.ApplicationCommandOptionString:
		s, ok := raw.Value.(string)
		if !ok {
			return mismatch()
		}
		return s, nil

	case discordgo.ApplicationCommandOptionInteger:
		f, ok := raw.Value.(float64)
		if !ok {
			return mismatch()
		}
		return int64(f), nil

	case discordgo.ApplicationCommandOptionNumber:
		f, ok := raw.Value.(float64)
		if !ok {
			return mismatch()
		}
		return f, nil

	case discordgo.ApplicationCommandOptionBoolean:
		b, ok := raw.Value.(bool)
		if !ok {
			return mismatch()
		}
		return b, nil

	case discordgo.ApplicationCommandOptionUser:
		id, ok := raw.Value.(string)
		if !ok {
			return mismatch()
		}
		if u := resolvedUser(inv, id); u != nil {
			return u, nil
		}
		return mismatch()

	case discordgo.ApplicationCommandOptionChannel:
		id, ok := raw.Value.(string)
		if !ok {
			return mismatch()
		}
		if r := resolved(inv); r != nil {
			if ch, ok := r.Channels[id]; ok {
				return ch, nil
			}
		}
		return mismatch()

	case discordgo.ApplicationCommandOptionRole:
		id, ok := raw.Value.(string)
		if !ok {
			return mismatch()
		}
		if r := resolved(inv); r != nil {
			if role, ok := r.Roles[id]; ok {
				return role, nil
			}
		}
		return mismatch()

	case discordgo.ApplicationCommandOptionMentionable:
		id, ok := raw.Value.(string)
		if !ok {
			return mismatch()
		}
		if u := resolvedUser(inv, id); u != nil {
			return u, nil
		}
		if r := resolved(inv); r != nil {
			if role, ok := r.Roles[id]; ok {
				return role, nil
			}
		}
		return mismatch()

	case discordgo.ApplicationCommandOptionAttachment:
		id, ok := raw.Value.(string)
		if !ok {
			return mismatch()
		}
		if r := resolved(inv); r != nil {
			if att, ok := r.Attachments[id]; ok {
				return att, nil
			}
		}
		return mismatch()
	}
	return raw.Value, nil
}

func resolved(inv *Invocation) *discordgo.ApplicationCommandInteractionDataResolved {
	if inv == nil || inv.Interaction == nil || inv.Interaction.Type != discordgo.InteractionApplicationCommand {
		return nil
	}
	return inv.Data().Resolved
}

func resolvedUser(inv *Invocation, id string) *discordgo.User {
	r := resolved(inv)
	if r == nil {
		return nil
	}
	if u, ok := r.Users[id]; ok {
		return u
	}
	if m, ok := r.Members[id]; ok && m.User != nil {
		return m.User
	}
	return nil
}
