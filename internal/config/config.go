package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the dashboard configuration.
type Config struct {
	// Input files
	Data DataConfig `toml:"data"`

	// Web UI server
	Server ServerConfig `toml:"server"`

	// Prepared-data cache
	Cache CacheConfig `toml:"cache"`

	// Normalization and chart parameters
	Analysis AnalysisConfig `toml:"analysis"`
}

// DataConfig locates the input files.
type DataConfig struct {
	CatalogPath   string `toml:"catalog_path"`    // Card catalog JSON
	DeckTablePath string `toml:"deck_table_path"` // Deck table CSV
	EventsPath    string `toml:"events_path"`     // Optional YAML event calendar
}

// ServerConfig contains web UI settings.
type ServerConfig struct {
	Port        int     `toml:"port"`
	OpenBrowser bool    `toml:"open_browser"`
	RenderRate  float64 `toml:"render_rate"`  // Chart and export requests per second; 0 disables the limit
	RenderBurst int     `toml:"render_burst"` // Requests allowed above RenderRate in a burst
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	Enabled bool `toml:"enabled"` // Keep prepared data between requests
	Watch   bool `toml:"watch"`   // Invalidate on file system events
}

// AnalysisConfig contains normalization rules and chart defaults.
type AnalysisConfig struct {
	ExcludedDeckTypes []string `toml:"excluded_deck_types"`
	ReservedNameParts []string `toml:"reserved_name_parts"` // Names containing these are not deck-eligible
	DeckSize          int      `toml:"deck_size"`
	ValidateDeckSize  bool     `toml:"validate_deck_size"` // Drop rows whose card counts don't sum to DeckSize
	RarityWindow      int      `toml:"rarity_window"`
	PopularityWindow  int      `toml:"popularity_window"`
	HistogramBins     int      `toml:"histogram_bins"`
	HistogramMaxCost  int      `toml:"histogram_max_cost"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			CatalogPath:   "allcards.json",
			DeckTablePath: "DataTable.csv",
			EventsPath:    "",
		},
		Server: ServerConfig{
			Port:        8501,
			OpenBrowser: false,
			RenderRate:  20,
			RenderBurst: 40,
		},
		Cache: CacheConfig{
			Enabled: true,
			Watch:   true,
		},
		Analysis: AnalysisConfig{
			ExcludedDeckTypes: []string{"Arena", "PvE Adventure"},
			ReservedNameParts: []string{"Rank 2", "Rank 3"},
			DeckSize:          30,
			ValidateDeckSize:  false,
			RarityWindow:      30,
			PopularityWindow:  20,
			HistogramBins:     100,
			HistogramMaxCost:  15000,
		},
	}
}

// Load loads the configuration from path. Returns default config if the file doesn't exist.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Data.CatalogPath == "" {
		return fmt.Errorf("catalog path is required")
	}
	if c.Data.DeckTablePath == "" {
		return fmt.Errorf("deck table path is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RenderRate < 0 {
		return fmt.Errorf("render rate must not be negative: %g", c.Server.RenderRate)
	}
	if c.Server.RenderRate > 0 && c.Server.RenderBurst <= 0 {
		return fmt.Errorf("render burst must be positive: %d", c.Server.RenderBurst)
	}

	if c.Analysis.DeckSize <= 0 {
		return fmt.Errorf("deck size must be positive: %d", c.Analysis.DeckSize)
	}
	if c.Analysis.RarityWindow <= 0 {
		return fmt.Errorf("rarity window must be positive: %d", c.Analysis.RarityWindow)
	}
	if c.Analysis.PopularityWindow <= 0 {
		return fmt.Errorf("popularity window must be positive: %d", c.Analysis.PopularityWindow)
	}
	if c.Analysis.HistogramBins <= 0 {
		return fmt.Errorf("histogram bins must be positive: %d", c.Analysis.HistogramBins)
	}
	if c.Analysis.HistogramMaxCost <= 0 {
		return fmt.Errorf("histogram max cost must be positive: %d", c.Analysis.HistogramMaxCost)
	}

	return nil
}
