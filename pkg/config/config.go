/*
Package config manages the TOML config for autofill front ends.
*/
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/NazishAyoob/AutoCompleteInput/internal/utils"
	"github.com/NazishAyoob/AutoCompleteInput/pkg/autofill"
	"github.com/charmbracelet/log"
)

// AppName names the config directory.
const AppName = "autofill"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds the entire config structure
type Config struct {
	Widget  WidgetConfig  `toml:"widget"`
	Dataset DatasetConfig `toml:"dataset"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// WidgetConfig mirrors autofill.Options.
type WidgetConfig struct {
	DebounceDelayMs int    `toml:"debounce_delay_ms"`
	CacheCapacity   int    `toml:"cache_capacity"`
	BlurGraceMs     int    `toml:"blur_grace_ms"`
	Matcher         string `toml:"matcher"`
}

// DatasetConfig points at the candidate data. An empty path selects the built-in sample.
type DatasetConfig struct {
	Path string `toml:"path"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	Codec                string `toml:"codec"`
	MaxRequestsPerSecond int    `toml:"max_requests_per_second"`
	Burst                int    `toml:"burst"`
}

// CliConfig holds debug CLI options.
type CliConfig struct {
	Sync bool `toml:"sync"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Widget: WidgetConfig{
			DebounceDelayMs: int(autofill.DefaultDebounceDelay / time.Millisecond),
			CacheCapacity:   autofill.DefaultCacheCapacity,
			BlurGraceMs:     int(autofill.DefaultBlurGrace / time.Millisecond),
			Matcher:         string(autofill.MatcherScan),
		},
		Server: ServerConfig{
			Codec: "json",
			Burst: 16,
		},
	}
}

// Validate checks every field. The first problem found is returned.
func (c *Config) Validate() error {
	if err := c.WidgetOptions().Validate(); err != nil {
		return fmt.Errorf("%w: [widget]: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Server.Codec) {
	case "json", "msgpack":
	default:
		return fmt.Errorf("%w: [server] codec %q must be json or msgpack", ErrInvalidConfig, c.Server.Codec)
	}
	if c.Server.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("%w: [server] max_requests_per_second %d must not be negative", ErrInvalidConfig, c.Server.MaxRequestsPerSecond)
	}
	if c.Server.MaxRequestsPerSecond > 0 && c.Server.Burst <= 0 {
		return fmt.Errorf("%w: [server] burst %d must be positive when rate limiting", ErrInvalidConfig, c.Server.Burst)
	}
	return nil
}

// WidgetOptions converts the [widget] section. Candidates and Clock are left for the caller.
func (c *Config) WidgetOptions() autofill.Options {
	opts := autofill.DefaultOptions()
	opts.DebounceDelay = time.Duration(c.Widget.DebounceDelayMs) * time.Millisecond
	opts.CacheCapacity = c.Widget.CacheCapacity
	opts.BlurGrace = time.Duration(c.Widget.BlurGraceMs) * time.Millisecond
	opts.Matcher = autofill.MatcherKind(strings.ToLower(c.Widget.Matcher))
	return opts
}

// DefaultConfigPath returns the path of config.toml in the first writable config location.
func DefaultConfigPath() (string, error) {
	path, ok := utils.NewPathResolver(AppName).ConfigPath("config.toml")
	if !ok {
		return "", errors.New("config: no writable config directory")
	}
	return path, nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [UserConfigDir]/autofill/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customPath string) (*Config, string, error) {
	if customPath != "" {
		if utils.FileExists(customPath) {
			cfg, err := LoadConfig(customPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customPath)
				return cfg, customPath, nil
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customPath)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}
	cfg, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at %s: %v. Using built-in defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return cfg, defaultPath, nil
}

// InitConfig loads config from path, writing the defaults there first if the file is missing.
func InitConfig(path string) (*Config, error) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		log.Warnf("Failed to create config directory for %s: %v. Using built-in defaults...", path, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(path) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, path); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", path, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", path)
		return cfg, nil
	}
	return LoadConfig(path)
}

// LoadConfig reads a TOML file over the defaults. A file that does not decode
// into Config is salvaged key by key; values of the wrong type keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	unknown, err := utils.LoadTOMLFile(path, cfg)
	if err != nil {
		return tryPartialParse(path)
	}
	if len(unknown) > 0 {
		log.Warnf("Ignoring unknown config keys in %s: %s", path, strings.Join(unknown, ", "))
	}
	return cfg, nil
}

func tryPartialParse(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := utils.ParseTOMLWithRecovery(path)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", path, err)
		return cfg, nil
	}

	if section, ok := utils.ExtractSection(raw, "widget"); ok {
		extractWidgetConfig(section, &cfg.Widget)
	}
	if section, ok := utils.ExtractSection(raw, "dataset"); ok {
		if val, ok := utils.ExtractString(section, "path"); ok {
			cfg.Dataset.Path = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &cfg.Server)
	}
	if section, ok := utils.ExtractSection(raw, "cli"); ok {
		if val, ok := utils.ExtractBool(section, "sync"); ok {
			cfg.CLI.Sync = val
		}
	}
	return cfg, nil
}

func extractWidgetConfig(data map[string]any, w *WidgetConfig) {
	if val, ok := utils.ExtractInt(data, "debounce_delay_ms"); ok {
		w.DebounceDelayMs = val
	}
	if val, ok := utils.ExtractInt(data, "cache_capacity"); ok {
		w.CacheCapacity = val
	}
	if val, ok := utils.ExtractInt(data, "blur_grace_ms"); ok {
		w.BlurGraceMs = val
	}
	if val, ok := utils.ExtractString(data, "matcher"); ok {
		w.Matcher = val
	}
}

func extractServerConfig(data map[string]any, s *ServerConfig) {
	if val, ok := utils.ExtractString(data, "codec"); ok {
		s.Codec = val
	}
	if val, ok := utils.ExtractInt(data, "max_requests_per_second"); ok {
		s.MaxRequestsPerSecond = val
	}
	if val, ok := utils.ExtractInt(data, "burst"); ok {
		s.Burst = val
	}
}

// RebuildConfigFile overwrites the default config file with the built-in defaults.
func RebuildConfigFile() (string, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	return path, SaveConfig(DefaultConfig(), path)
}

// ActiveConfigPath returns the absolute path of the loaded config file.
func ActiveConfigPath(path string) string {
	if path == "" {
		return "built-in defaults"
	}
	return utils.AbsolutePath(path)
}

// SaveConfig saves into a TOML file
func SaveConfig(cfg *Config, path string) error {
	return utils.SaveTOMLFile(cfg, path)
}
