package hybrid

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/hybridkit/pkg/command"
)

// Host builds invocation contexts for bridged interactions. The dispatcher
// that owns both command systems implements it and binds itself to the
// structured tree as its client; adapters reach it through the invocation.
// Without a host, adapters fall back to a bare interaction context.
type Host interface {
	NewContext(s *discordgo.Session, i *discordgo.InteractionCreate) (*command.Context, error)
}
