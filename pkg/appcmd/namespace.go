package appcmd

import "github.com/bwmarrin/discordgo"

// Namespace holds decoded option values keyed by option name. Values carry
// the Go type the option's transformer produced; the typed getters below
// return the zero value when the key is absent or the type does not match.
type Namespace map[string]any

func (n Namespace) Get(name string) (any, bool) {
	v, ok := n[name]
	return v, ok
}

func (n Namespace) String(name string) string {
	v, _ := n[name].(string)
	return v
}

func (n Namespace) Int(name string) int64 {
	v, _ := n[name].(int64)
	return v
}

func (n Namespace) Float(name string) float64 {
	v, _ := n[name].(float64)
	return v
}

func (n Namespace) Bool(name string) bool {
	v, _ := n[name].(bool)
	return v
}

func (n Namespace) User(name string) *discordgo.User {
	v, _ := n[name].(*discordgo.User)
	return v
}

func (n Namespace) Channel(name string) *discordgo.Channel {
	v, _ := n[name].(*discordgo.Channel)
	return v
}

func (n Namespace) Role(name string) *discordgo.Role {
	v, _ := n[name].(*discordgo.Role)
	return v
}

func (n Namespace) Attachment(name string) *discordgo.MessageAttachment {
	v, _ := n[name].(*discordgo.MessageAttachment)
	return v
}
