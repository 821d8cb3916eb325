package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Converter transforms one raw string argument into a typed value. Converters
// run with the full invocation context so they can resolve users, channels,
// and other platform entities. Errors outside the command taxonomy are
// wrapped into ConversionError by the parser.
type Converter interface {
	Convert(ctx *Context, arg string) (any, error)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(ctx *Context, arg string) (any, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx *Context, arg string) (any, error) { return f(ctx, arg) }

var (
	userMention    = regexp.MustCompile(`^<@!?(\d+)>$`)
	channelMention = regexp.MustCompile(`^<#(\d+)>$`)
	roleMention    = regexp.MustCompile(`^<@&(\d+)>$`)
	snowflake      = regexp.MustCompile(`^\d{15,21}$`)
)

// IntConverter parses a signed integer into an int64.
type IntConverter struct{}

func (IntConverter) Convert(_ *Context, arg string) (any, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("%q is not a valid integer", arg)}
	}
	return n, nil
}

// FloatConverter parses a number into a float64.
type FloatConverter struct{}

func (FloatConverter) Convert(_ *Context, arg string) (any, error) {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("%q is not a valid number", arg)}
	}
	return f, nil
}

// BoolConverter accepts the usual yes/no spellings.
type BoolConverter struct{}

func (BoolConverter) Convert(_ *Context, arg string) (any, error) {
	switch strings.ToLower(arg) {
	case "yes", "y", "true", "t", "1", "enable", "on":
		return true, nil
	case "no", "n", "false", "f", "0", "disable", "off":
		return false, nil
	}
	return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("%q is not a recognised boolean", arg)}
}

// UserConverter resolves a user mention or ID to a *discordgo.User.
type UserConverter struct{}

func (UserConverter) Convert(ctx *Context, arg string) (any, error) {
	id := extractID(arg, userMention)
	if id == "" {
		return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("user %q not found", arg)}
	}
	if ctx.Session != nil {
		if gid := ctx.GuildID(); gid != "" {
			if m, err := ctx.Session.State.Member(gid, id); err == nil && m.User != nil {
				return m.User, nil
			}
		}
		if u, err := ctx.Session.User(id); err == nil {
			return u, nil
		}
	}
	return &discordgo.User{ID: id}, nil
}

// MemberConverter resolves a user mention or ID to a *discordgo.Member of
// the current guild.
type MemberConverter struct{}

func (MemberConverter) Convert(ctx *Context, arg string) (any, error) {
	gid := ctx.GuildID()
	if gid == "" {
		return nil, &BadArgumentError{Value: arg, Message: "member lookup requires a guild"}
	}
	id := extractID(arg, userMention)
	if id == "" {
		return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("member %q not found", arg)}
	}
	if ctx.Session != nil {
		if m, err := ctx.Session.State.Member(gid, id); err == nil {
			return m, nil
		}
		if m, err := ctx.Session.GuildMember(gid, id); err == nil {
			return m, nil
		}
	}
	return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("member %q not found", arg)}
}

// ChannelConverter resolves a channel mention or ID to a *discordgo.Channel.
type ChannelConverter struct{}

func (ChannelConverter) Convert(ctx *Context, arg string) (any, error) {
	id := extractID(arg, channelMention)
	if id == "" {
		return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("channel %q not found", arg)}
	}
	if ctx.Session != nil {
		if ch, err := ctx.Session.State.Channel(id); err == nil {
			return ch, nil
		}
		if ch, err := ctx.Session.Channel(id); err == nil {
			return ch, nil
		}
	}
	return &discordgo.Channel{ID: id}, nil
}

// RoleConverter resolves a role mention or ID to a *discordgo.Role of the
// current guild.
type RoleConverter struct{}

func (RoleConverter) Convert(ctx *Context, arg string) (any, error) {
	gid := ctx.GuildID()
	if gid == "" {
		return nil, &BadArgumentError{Value: arg, Message: "role lookup requires a guild"}
	}
	id := extractID(arg, roleMention)
	if id == "" {
		return nil, &BadArgumentError{Value: arg, Message: fmt.Sprintf("role %q not found", arg)}
	}
	if ctx.Session != nil {
		if r, err := ctx.Session.State.Role(gid, id); err == nil {
			return r, nil
		}
	}
	return &discordgo.Role{ID: id}, nil
}

// extractID pulls the snowflake out of a mention matched by re, or accepts a
// bare snowflake.
func extractID(arg string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(arg); m != nil {
		return m[1]
	}
	if snowflake.MatchString(arg) {
		return arg
	}
	return ""
}
