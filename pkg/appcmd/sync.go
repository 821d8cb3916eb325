package appcmd

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/datastore"
	"github.com/rs/zerolog"

	"github.com/keshon/hybridkit/pkg/retrylimit"
)

var (
	listCommands = func(s *discordgo.Session, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
		return s.ApplicationCommands(appID, guildID)
	}
	createCommand = func(s *discordgo.Session, appID, guildID string, def *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
		return s.ApplicationCommandCreate(appID, guildID, def)
	}
	deleteCommand = func(s *discordgo.Session, appID, guildID, commandID string) error {
		return s.ApplicationCommandDelete(appID, guildID, commandID)
	}
	bulkOverwriteCommands = func(s *discordgo.Session, appID, guildID string, defs []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
		return s.ApplicationCommandBulkOverwrite(appID, guildID, defs)
	}
)

// Syncer reconciles the tree's definitions with the commands registered on
// Discord: obsolete remote commands are deleted, new or changed local ones
// are upserted. Definition hashes persist across runs so an unchanged
// command costs no REST call. Without a cache there is nothing to diff
// against, so each scope is replaced wholesale with a single bulk overwrite.
type Syncer struct {
	tree    *Tree
	session *discordgo.Session
	cache   *datastore.DataStore
	limiter *retrylimit.AdaptiveLimiter
	log     zerolog.Logger
}

// NewSyncer builds a syncer for the tree. cachePath names the JSON file
// holding definition hashes between runs; an empty path disables the cache
// and switches every scope to the bulk overwrite path.
func NewSyncer(tree *Tree, session *discordgo.Session, cachePath string, log zerolog.Logger) (*Syncer, error) {
	var cache *datastore.DataStore
	if cachePath != "" {
		var err error
		cache, err = datastore.New(cachePath)
		if err != nil {
			return nil, fmt.Errorf("open command hash cache: %w", err)
		}
	}
	return &Syncer{
		tree:    tree,
		session: session,
		cache:   cache,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		log:     log,
	}, nil
}

// Close persists and releases the hash cache.
func (sy *Syncer) Close() error {
	if sy.cache == nil {
		return nil
	}
	return sy.cache.Close()
}

// Sync walks every registration scope the tree produces, global plus each
// guild, and reconciles it with the platform.
func (sy *Syncer) Sync(ctx context.Context) error {
	appID, err := sy.appID()
	if err != nil {
		return err
	}

	buckets := sy.tree.Definitions()
	scopes := make([]string, 0, len(buckets))
	for gid := range buckets {
		scopes = append(scopes, gid)
	}
	sort.Strings(scopes)

	for _, gid := range scopes {
		if err := ctx.Err(); err != nil {
			return err
		}
		sy.syncScope(ctx, appID, gid, buckets[gid])
	}

	if sy.cache != nil {
		if err := sy.cache.SaveToFile(); err != nil {
			sy.log.Warn().Err(err).Msg("failed to persist command hash cache")
		}
	}
	return nil
}

func (sy *Syncer) syncScope(ctx context.Context, appID, guildID string, local []*discordgo.ApplicationCommand) {
	if sy.cache == nil {
		sy.overwriteScope(ctx, appID, guildID, local)
		return
	}

	remote, err := listCommands(sy.session, appID, guildID)
	if err != nil {
		// Without the remote listing obsolete commands cannot be
		// cleaned up, but registration can still proceed.
		sy.log.Warn().Err(err).Str("scope", scopeName(guildID)).Msg("failed to list remote commands")
		remote = nil
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByName[rc.Name] = rc
	}

	sy.deleteObsolete(ctx, appID, guildID, remoteByName, local)
	sy.upsertChanged(ctx, appID, guildID, local)
}

// overwriteScope replaces a scope's entire registration in one call. The
// bulk endpoint also drops remote commands absent from defs, so no separate
// delete pass is needed.
func (sy *Syncer) overwriteScope(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) {
	err := retrylimit.WithRetryMax(ctx, func() error {
		_, err := bulkOverwriteCommands(sy.session, appID, guildID, defs)
		return err
	}, sy.limiter, 3)
	if err != nil {
		sy.log.Error().Err(err).Str("scope", scopeName(guildID)).Msg("failed to overwrite commands")
		return
	}
	sy.log.Info().Str("scope", scopeName(guildID)).Int("count", len(defs)).Msg("overwrote commands")
}

// deleteObsolete removes remote commands that no longer exist locally.
func (sy *Syncer) deleteObsolete(ctx context.Context, appID, guildID string, remote map[string]*discordgo.ApplicationCommand, local []*discordgo.ApplicationCommand) {
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	for name, rc := range remote {
		if _, exists := localNames[name]; exists {
			continue
		}
		sy.log.Info().Str("scope", scopeName(guildID)).Str("command", name).Msg("deleting obsolete command")
		err := retrylimit.WithRetryMax(ctx, func() error {
			return deleteCommand(sy.session, appID, guildID, rc.ID)
		}, sy.limiter, 3)
		if err != nil {
			sy.log.Error().Err(err).Str("scope", scopeName(guildID)).Str("command", name).Msg("failed to delete command")
			continue
		}
		sy.dropHash(guildID, name)
	}
}

// upsertChanged registers commands whose definition hash differs from the
// cached value.
func (sy *Syncer) upsertChanged(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand) {
	var changed []*discordgo.ApplicationCommand
	for _, d := range defs {
		if sy.cachedHash(guildID, d.Name) != hashDefinition(d) {
			changed = append(changed, d)
		}
	}
	if len(changed) == 0 {
		return
	}

	sy.log.Info().Str("scope", scopeName(guildID)).Int("count", len(changed)).Msg("registering changed commands")
	for _, d := range changed {
		def := d
		err := retrylimit.WithRetryMax(ctx, func() error {
			_, err := createCommand(sy.session, appID, guildID, def)
			return err
		}, sy.limiter, 3)
		if err != nil {
			sy.log.Error().Err(err).Str("scope", scopeName(guildID)).Str("command", def.Name).Msg("failed to register command")
			continue
		}
		sy.storeHash(guildID, def.Name, hashDefinition(def))
		sy.log.Info().Str("scope", scopeName(guildID)).Str("command", def.Name).Msg("registered command")
	}
}

// appID returns the bot's application ID, fetching it from the API when the
// gateway has not populated session state yet.
func (sy *Syncer) appID() (string, error) {
	if st := sy.session.State; st != nil && st.User != nil && st.User.ID != "" {
		return st.User.ID, nil
	}
	u, err := sy.session.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

// --- Definition hash cache ---

func scopeName(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return guildID
}

func hashKey(guildID, name string) string {
	return "hash:" + scopeName(guildID) + ":" + name
}

func (sy *Syncer) cachedHash(guildID, name string) string {
	if sy.cache == nil {
		return ""
	}
	v, ok := sy.cache.Get(hashKey(guildID, name))
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (sy *Syncer) storeHash(guildID, name, hash string) {
	if sy.cache != nil {
		sy.cache.Add(hashKey(guildID, name), hash)
	}
}

func (sy *Syncer) dropHash(guildID, name string) {
	if sy.cache != nil {
		sy.cache.Delete(hashKey(guildID, name))
	}
}

// --- Definition hashing ---

// hashDefinition returns a deterministic SHA-1 of a definition's stable
// fields. Used to skip re-registration when nothing has changed.
func hashDefinition(c *discordgo.ApplicationCommand) string {
	stable := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if c.DefaultMemberPermissions != nil {
		stable["default_member_permissions"] = *c.DefaultMemberPermissions
	}
	if c.DMPermission != nil {
		stable["dm_permission"] = *c.DMPermission
	}
	if c.NSFW != nil && *c.NSFW {
		stable["nsfw"] = true
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.ChannelTypes) > 0 {
			entry["channel_types"] = o.ChannelTypes
		}
		if o.MinValue != nil {
			entry["min_value"] = *o.MinValue
		}
		if o.MaxValue != 0 {
			entry["max_value"] = o.MaxValue
		}
		if o.MinLength != nil {
			entry["min_length"] = *o.MinLength
		}
		if o.MaxLength != 0 {
			entry["max_length"] = o.MaxLength
		}
		if o.Autocomplete {
			entry["autocomplete"] = true
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
