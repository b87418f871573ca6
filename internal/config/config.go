// Package config loads the TOML configuration file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"anan/internal/chat"
	"anan/internal/conversation"
	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/server"
	"anan/internal/textseg"
	"anan/internal/tts"
)

// EnvChatAPIKey overrides chat.api_key when set.
const EnvChatAPIKey = "ANAN_CHAT_API_KEY"

// Config represents the TOML configuration file.
type Config struct {
	Server       server.Config        `toml:"server"`
	Backend      tts.HTTPEngineOption `toml:"backend"`
	Chat         chat.Config          `toml:"chat"`
	Conversation conversation.Options `toml:"conversation"`
	Sync         highlight.Config     `toml:"sync"`
	Weights      textseg.WeightConfig `toml:"weights"`
	Audio        AudioConfig          `toml:"audio"`
	Cache        CacheConfig          `toml:"cache"`
	Log          LogConfig            `toml:"log"`
}

// AudioConfig maps local playback settings.
type AudioConfig struct {
	tts.SpeakerOption
	// Silent drives the highlight from a wall clock instead of a sound card.
	Silent bool `toml:"silent"`
}

// CacheConfig maps cache sizes and lifetimes.
type CacheConfig struct {
	AudioTTL   time.Duration `toml:"audio_ttl"`
	Utterances int           `toml:"utterances"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:       server.DefaultConfig(),
		Backend:      tts.DefaultHTTPEngineOption(),
		Chat:         chat.DefaultConfig(),
		Conversation: conversation.DefaultOptions(),
		Sync:         highlight.DefaultConfig(),
		Weights:      textseg.DefaultWeightConfig(),
		Audio:        AudioConfig{SpeakerOption: tts.DefaultSpeakerOption()},
		Cache: CacheConfig{
			AudioTTL:   30 * time.Minute,
			Utterances: textseg.DefaultCacheSize,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultPath returns the default TOML config path.
func DefaultPath() string {
	return filepath.Join(XDGConfigHome(), "anan", "config.toml")
}

// Load reads a TOML config from the given path over the defaults. Missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return Config{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to stat config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if key := os.Getenv(EnvChatAPIKey); key != "" {
		cfg.Chat.APIKey = key
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	l, err := lang.Parse(string(c.Conversation.Language))
	if err != nil {
		return fmt.Errorf("conversation.language: %w", err)
	}
	c.Conversation.Language = l

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Cache.Utterances <= 0 {
		c.Cache.Utterances = textseg.DefaultCacheSize
	}
	return nil
}
