// Package config loads and saves the user-facing TOML configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// FileName is the TOML config file for user preferences
const FileName = "config.toml"

// DirName is the per-user data directory under $HOME
const DirName = ".omnidex"

// Config represents user-facing configuration in TOML format
type Config struct {
	// Indexer configures the in-process file indexer
	Indexer IndexerSettings `toml:"indexer"`

	// Engines defines custom web search engines, keyed by trigger keyword
	// Example:
	// [engines.rs]
	// name = "docs.rs"
	// url = "https://docs.rs/releases/search?query={query}"
	Engines map[string]EngineDef `toml:"engines"`

	// Frecency configures usage-history persistence
	Frecency FrecencySettings `toml:"frecency"`

	// Logging configures the debug log
	Logging LogSettings `toml:"logging"`
}

// IndexerSettings configures directory scanning and watching
type IndexerSettings struct {
	// Roots is the list of directories to index and watch
	// Paths can be absolute or ~ for home. Empty = no in-process indexing.
	Roots []string `toml:"roots"`

	// MaxDepth is the maximum scan depth below each root (default: 10)
	MaxDepth int `toml:"max_depth"`

	// ExcludeGlobs are gitignore-style patterns skipped during scans
	// Defaults cover node_modules/, .git/, build output and OS junk dirs
	ExcludeGlobs []string `toml:"exclude_globs"`

	// ExcludeExts are file extensions (without dot) never indexed
	ExcludeExts []string `toml:"exclude_exts"`

	// IncludeHidden indexes dot-files and dot-directories (default: false)
	IncludeHidden bool `toml:"include_hidden"`

	// MaxFileSizeMB skips files larger than this many MB (default: 0 = no limit)
	MaxFileSizeMB int `toml:"max_file_size_mb"`
}

// EngineDef defines a custom web search engine
type EngineDef struct {
	// Name is the display name shown in results
	Name string `toml:"name"`

	// URL is the search template; {query} is replaced with the
	// percent-encoded query text
	URL string `toml:"url"`
}

// FrecencySettings configures usage-history persistence
type FrecencySettings struct {
	// DBPath is the SQLite file for the access log
	// Default: ~/.omnidex/frecency.db. Set to "memory" to disable persistence.
	DBPath string `toml:"db_path"`
}

// LogSettings configures the debug log file
type LogSettings struct {
	// Level sets the minimum log level: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `toml:"level"`

	// Format sets the log format: "json" (default) or "text"
	Format string `toml:"format"`

	// MaxMB is the max size in MB for omnidex.log before rotation
	// Default: 10
	MaxMB int `toml:"max_mb"`

	// Backups is the number of rotated log files to keep
	// Default: 5
	Backups int `toml:"backups"`

	// RetentionDays is the number of days to keep rotated logs
	// Default: 10
	RetentionDays int `toml:"retention_days"`

	// Compress enables gzip compression for rotated logs
	// Default: true
	Compress bool `toml:"compress"`

	// AggregateIntervalS is the event aggregation flush interval in seconds
	// Default: 30
	AggregateIntervalS int `toml:"aggregate_interval_secs"`
}

var defaultConfig = Config{
	Engines: make(map[string]EngineDef),
}

// Cache for config (loaded once per process)
var (
	configCache   *Config
	configCacheMu sync.RWMutex
)

// Dir returns the omnidex data directory, creating it if needed.
func Dir() (string, error) {
	if override := os.Getenv("OMNIDEX_HOME"); override != "" {
		if err := os.MkdirAll(override, 0o700); err != nil {
			return "", err
		}
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// Path returns the path to the config file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load loads the configuration from the TOML file.
// Returns cached config after first load.
func Load() (*Config, error) {
	configCacheMu.RLock()
	if configCache != nil {
		defer configCacheMu.RUnlock()
		return configCache, nil
	}
	configCacheMu.RUnlock()

	configCacheMu.Lock()
	defer configCacheMu.Unlock()

	// Double-check after acquiring write lock
	if configCache != nil {
		return configCache, nil
	}

	configPath, err := Path()
	if err != nil {
		configCache = &defaultConfig
		return configCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configCache = &defaultConfig
		return configCache, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		// Cache the default so a broken file is not re-parsed on every call
		configCache = &defaultConfig
		return configCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	if cfg.Engines == nil {
		cfg.Engines = make(map[string]EngineDef)
	}

	configCache = &cfg
	return configCache, nil
}

// Reload forces a reload of the config
func Reload() (*Config, error) {
	configCacheMu.Lock()
	configCache = nil
	configCacheMu.Unlock()
	return Load()
}

// ClearCache clears the cached config, allowing tests to reset state
func ClearCache() {
	configCacheMu.Lock()
	configCache = nil
	configCacheMu.Unlock()
}

// Save writes the config to config.toml using an atomic write:
// temp file, fsync, rename. The cache is cleared so the next Load()
// reads fresh values.
func Save(cfg *Config) error {
	configPath, err := Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Omnidex Configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if f, err := os.Open(tmpPath); err == nil {
		_ = f.Sync()
		f.Close()
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}

	ClearCache()
	return nil
}

// GetIndexerSettings returns indexer settings with defaults applied
func GetIndexerSettings() IndexerSettings {
	cfg, err := Load()
	if err != nil || cfg == nil {
		return IndexerSettings{MaxDepth: 10}
	}

	settings := cfg.Indexer
	if settings.MaxDepth <= 0 {
		settings.MaxDepth = 10
	}
	for i, root := range settings.Roots {
		settings.Roots[i] = expandTilde(root)
	}
	return settings
}

// GetLogSettings returns logging settings with defaults applied
func GetLogSettings() LogSettings {
	defaults := LogSettings{
		Level:              "info",
		Format:             "json",
		MaxMB:              10,
		Backups:            5,
		RetentionDays:      10,
		Compress:           true,
		AggregateIntervalS: 30,
	}
	cfg, err := Load()
	if err != nil || cfg == nil {
		return defaults
	}

	settings := cfg.Logging
	if settings.Level == "" {
		settings.Level = defaults.Level
	}
	if settings.Format == "" {
		settings.Format = defaults.Format
	}
	if settings.MaxMB <= 0 {
		settings.MaxMB = defaults.MaxMB
	}
	if settings.Backups <= 0 {
		settings.Backups = defaults.Backups
	}
	if settings.RetentionDays <= 0 {
		settings.RetentionDays = defaults.RetentionDays
	}
	if settings.AggregateIntervalS <= 0 {
		settings.AggregateIntervalS = defaults.AggregateIntervalS
	}
	// Compress defaults to true; detect an unset section by the other zeros
	if cfg.Logging.MaxMB == 0 && cfg.Logging.Backups == 0 {
		settings.Compress = true
	}
	return settings
}

// GetFrecencyDBPath returns the frecency database path with the default
// applied. Returns "" when persistence is disabled.
func GetFrecencyDBPath() string {
	cfg, err := Load()
	if err == nil && cfg != nil && cfg.Frecency.DBPath != "" {
		if cfg.Frecency.DBPath == "memory" {
			return ""
		}
		return expandTilde(cfg.Frecency.DBPath)
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "frecency.db")
}

// GetEngineDefs returns custom engine definitions sorted by keyword.
// Definitions whose URL lacks the {query} placeholder are dropped.
func GetEngineDefs() []KeywordEngine {
	cfg, err := Load()
	if err != nil || cfg == nil || len(cfg.Engines) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(cfg.Engines))
	for kw := range cfg.Engines {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	var out []KeywordEngine
	for _, kw := range keywords {
		def := cfg.Engines[kw]
		if !strings.Contains(def.URL, "{query}") {
			continue
		}
		out = append(out, KeywordEngine{Keyword: kw, Name: def.Name, URL: def.URL})
	}
	return out
}

// KeywordEngine is one resolved custom engine definition.
type KeywordEngine struct {
	Keyword string
	Name    string
	URL     string
}

func expandTilde(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		if p == "~" {
			return home
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
