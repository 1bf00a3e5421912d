/*
Package config manages the TOML config for DestServe.
*/
package config

import (
	"path/filepath"
	"time"

	"github.com/bastiangx/destserve/internal/utils"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// FileName is the config file created in the user config dir.
const FileName = "destserve.toml"

// Config holds the entire config structure
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Search   SearchConfig   `toml:"search"`
	Debounce DebounceConfig `toml:"debounce"`
	Cache    CacheConfig    `toml:"cache"`
	CLI      CliConfig      `toml:"cli"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	EnableReload bool `toml:"enable_reload"`
}

// SearchConfig tunes matching and fuzzy ranking.
type SearchConfig struct {
	MinQueryLen    int      `toml:"min_query_len"`
	MaxExact       int      `toml:"max_exact"`
	FuzzyThreshold int      `toml:"fuzzy_threshold"`
	PopularTop     int      `toml:"popular_top"`
	GeneralTop     int      `toml:"general_top"`
	GeneralPoolCap int      `toml:"general_pool_cap"`
	MaxFuzzy       int      `toml:"max_fuzzy"`
	MaxDistance    int      `toml:"max_distance"`
	Popular        []string `toml:"popular"`
}

// DebounceConfig holds the quiet window.
type DebounceConfig struct {
	QuietMs int `toml:"quiet_ms"`
}

// CacheConfig sizes the result cache; 0 disables it.
type CacheConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowRegion bool `toml:"show_region"`
	ShowScores bool `toml:"show_scores"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	opts := suggest.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			EnableReload: true,
		},
		Search: SearchConfig{
			MinQueryLen:    opts.MinQueryLen,
			MaxExact:       opts.MaxExact,
			FuzzyThreshold: opts.FuzzyThreshold,
			PopularTop:     opts.PopularTop,
			GeneralTop:     opts.GeneralTop,
			GeneralPoolCap: opts.GeneralPoolCap,
			MaxFuzzy:       opts.MaxFuzzy,
			MaxDistance:    opts.MaxDistance,
			Popular:        opts.PopularTerms,
		},
		Debounce: DebounceConfig{
			QuietMs: 300,
		},
		Cache: CacheConfig{
			MaxEntries: opts.CacheSize,
		},
		CLI: CliConfig{
			ShowRegion: true,
			ShowScores: false,
		},
	}
}

// SearchOptions converts the config into engine options.
func (c *Config) SearchOptions() suggest.Options {
	return suggest.Options{
		MinQueryLen:    c.Search.MinQueryLen,
		MaxExact:       c.Search.MaxExact,
		FuzzyThreshold: c.Search.FuzzyThreshold,
		PopularTop:     c.Search.PopularTop,
		GeneralTop:     c.Search.GeneralTop,
		GeneralPoolCap: c.Search.GeneralPoolCap,
		MaxFuzzy:       c.Search.MaxFuzzy,
		MaxDistance:    c.Search.MaxDistance,
		PopularTerms:   append([]string(nil), c.Search.Popular...),
		CacheSize:      c.Cache.MaxEntries,
	}
}

// DebounceWindow returns the quiet window, falling back to 300ms.
func (c *Config) DebounceWindow() time.Duration {
	if c.Debounce.QuietMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Debounce.QuietMs) * time.Millisecond
}

// GetDefaultConfigPath returns the default path for destserve.toml
func GetDefaultConfigPath(pr *utils.PathResolver) string {
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [UserConfigDir]/destserve/destserve.toml
// 3. Builtin defaults
func LoadConfigWithPriority(pr *utils.PathResolver, customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}
	if pr == nil {
		return DefaultConfig(), ""
	}

	defaultPath := GetDefaultConfigPath(pr)
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Keys missing from the file keep their
// defaults; a file that fails to decode is recovered section by section.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config.normalized(), nil
}

// tryPartialParse keeps every key that still has the right type.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	raw, err := utils.ParseTOMLLoose(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(raw, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(raw, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(raw, "debounce"); ok {
		if val, ok := utils.ExtractInt(section, "quiet_ms"); ok {
			config.Debounce.QuietMs = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "cache"); ok {
		if val, ok := utils.ExtractInt(section, "max_entries"); ok {
			config.Cache.MaxEntries = val
		}
	}
	if section, ok := utils.ExtractSection(raw, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config.normalized(), nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractBool(data, "enable_reload"); ok {
		server.EnableReload = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	ints := map[string]*int{
		"min_query_len":    &search.MinQueryLen,
		"max_exact":        &search.MaxExact,
		"fuzzy_threshold":  &search.FuzzyThreshold,
		"popular_top":      &search.PopularTop,
		"general_top":      &search.GeneralTop,
		"general_pool_cap": &search.GeneralPoolCap,
		"max_fuzzy":        &search.MaxFuzzy,
		"max_distance":     &search.MaxDistance,
	}
	for key, dst := range ints {
		if val, ok := utils.ExtractInt(data, key); ok {
			*dst = val
		}
	}
	if val, ok := utils.ExtractStringSlice(data, "popular"); ok {
		search.Popular = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_region"); ok {
		cli.ShowRegion = val
	}
	if val, ok := utils.ExtractBool(data, "show_scores"); ok {
		cli.ShowScores = val
	}
}

// normalized replaces out of range values with defaults.
func (c *Config) normalized() *Config {
	d := DefaultConfig()
	fix := func(name string, v *int, def, lo int) {
		if *v < lo {
			log.Warnf("Config value %s=%d out of range, using %d", name, *v, def)
			*v = def
		}
	}
	fix("search.min_query_len", &c.Search.MinQueryLen, d.Search.MinQueryLen, 1)
	fix("search.max_exact", &c.Search.MaxExact, d.Search.MaxExact, 1)
	fix("search.fuzzy_threshold", &c.Search.FuzzyThreshold, d.Search.FuzzyThreshold, 0)
	fix("search.popular_top", &c.Search.PopularTop, d.Search.PopularTop, 0)
	fix("search.general_top", &c.Search.GeneralTop, d.Search.GeneralTop, 0)
	fix("search.general_pool_cap", &c.Search.GeneralPoolCap, d.Search.GeneralPoolCap, 1)
	fix("search.max_fuzzy", &c.Search.MaxFuzzy, d.Search.MaxFuzzy, 1)
	fix("search.max_distance", &c.Search.MaxDistance, d.Search.MaxDistance, 1)
	fix("debounce.quiet_ms", &c.Debounce.QuietMs, d.Debounce.QuietMs, 1)
	fix("cache.max_entries", &c.Cache.MaxEntries, d.Cache.MaxEntries, 0)
	return c
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the search tuning and saves to file. Nil arguments keep
// their current value.
func (c *Config) Update(configPath string, maxExact, fuzzyThreshold, quietMs *int) error {
	if maxExact != nil {
		c.Search.MaxExact = *maxExact
	}
	if fuzzyThreshold != nil {
		c.Search.FuzzyThreshold = *fuzzyThreshold
	}
	if quietMs != nil {
		c.Debounce.QuietMs = *quietMs
	}
	c.normalized()
	return SaveConfig(c, configPath)
}
