package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// GuildSettings holds the per-guild moderation settings
type GuildSettings struct {
	// LogChannelID receives the log copy of every action taken in this guild.
	LogChannelID string `yaml:"log_channel"`
	// Mirror makes LogChannelID also receive non-hidden actions from every other guild.
	Mirror bool `yaml:"mirror"`
	// LevelChannelID receives level-up notices; empty means the channel of the message.
	LevelChannelID string `yaml:"level_channel"`
	// LevelingDisabled turns XP tracking off for the guild.
	LevelingDisabled bool `yaml:"leveling_disabled"`
}

// GuildDirectory is the parsed guild settings file
type GuildDirectory struct {
	Guilds map[string]GuildSettings `yaml:"guilds"`

	mu sync.RWMutex
}

// ParseGuilds parses guild settings from YAML bytes
func ParseGuilds(data []byte) (*GuildDirectory, error) {
	dir := &GuildDirectory{}
	if err := yaml.Unmarshal(data, dir); err != nil {
		return nil, fmt.Errorf("parse guild settings: %w", err)
	}
	if dir.Guilds == nil {
		dir.Guilds = make(map[string]GuildSettings)
	}
	return dir, nil
}

// LoadGuilds reads the guild settings file. A missing file yields an empty directory.
func LoadGuilds(path string) (*GuildDirectory, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &GuildDirectory{Guilds: make(map[string]GuildSettings)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read guild settings %s: %w", path, err)
	}
	return ParseGuilds(data)
}

// Guild returns the settings of a guild
func (d *GuildDirectory) Guild(guildID string) (GuildSettings, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.Guilds[guildID]
	return g, ok
}

// Set replaces the settings of a guild
func (d *GuildDirectory) Set(guildID string, settings GuildSettings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Guilds == nil {
		d.Guilds = make(map[string]GuildSettings)
	}
	d.Guilds[guildID] = settings
}

// LogChannels returns the channels that should hold a copy of an action taken in
// originGuildID. Hidden actions only go to the origin guild.
func (d *GuildDirectory) LogChannels(originGuildID string, hidden bool) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var channels []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		channels = append(channels, id)
	}

	if g, ok := d.Guilds[originGuildID]; ok {
		add(g.LogChannelID)
	}
	if hidden {
		return channels
	}
	for id, g := range d.Guilds {
		if id != originGuildID && g.Mirror {
			add(g.LogChannelID)
		}
	}
	return channels
}
