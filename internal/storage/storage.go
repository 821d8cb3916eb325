// Package storage persists per-guild bot settings in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store keeps guild prefix overrides and disabled-command flags. It
// implements the dispatcher's Settings interface; both lookups run on the
// event path, so queries stay single-row.
type Store struct {
	db *sqlx.DB
}

// Open opens the SQLite database at path, applying pending migrations
// first. The file is created when missing.
func Open(path string) (*Store, error) {
	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate %q: %w", path, err)
	}

	dsn := "file:" + filepath.Clean(path) + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GuildPrefix returns the guild's prefix override, or "" when the guild
// keeps the default.
func (s *Store) GuildPrefix(guildID string) (string, error) {
	var prefix string
	err := s.db.Get(&prefix, `SELECT prefix FROM guild_settings WHERE guild_id = ?`, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("guild prefix: %w", err)
	}
	return prefix, nil
}

// SetGuildPrefix stores a prefix override. An empty prefix clears the
// override back to the default.
func (s *Store) SetGuildPrefix(guildID, prefix string) error {
	if prefix == "" {
		_, err := s.db.Exec(`DELETE FROM guild_settings WHERE guild_id = ?`, guildID)
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO guild_settings (guild_id, prefix) VALUES (?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET prefix = excluded.prefix`,
		guildID, prefix,
	)
	return err
}

// CommandDisabled reports whether the named top-level command is switched
// off in the guild.
func (s *Store) CommandDisabled(guildID, name string) (bool, error) {
	var n int
	err := s.db.Get(&n,
		`SELECT COUNT(*) FROM disabled_commands WHERE guild_id = ? AND command = ?`,
		guildID, name,
	)
	if err != nil {
		return false, fmt.Errorf("command disabled: %w", err)
	}
	return n > 0, nil
}

// SetCommandDisabled switches a top-level command on or off for a guild.
func (s *Store) SetCommandDisabled(guildID, name string, disabled bool) error {
	if disabled {
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO disabled_commands (guild_id, command) VALUES (?, ?)`,
			guildID, name,
		)
		return err
	}
	_, err := s.db.Exec(
		`DELETE FROM disabled_commands WHERE guild_id = ? AND command = ?`,
		guildID, name,
	)
	return err
}

// DisabledCommands lists every command switched off in the guild, sorted
// by name.
func (s *Store) DisabledCommands(guildID string) ([]string, error) {
	var names []string
	err := s.db.Select(&names,
		`SELECT command FROM disabled_commands WHERE guild_id = ? ORDER BY command`,
		guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("disabled commands: %w", err)
	}
	return names, nil
}
