package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Analysis.DeckSize)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[data]
catalog_path = "cards.json"

[analysis]
rarity_window = 7
validate_deck_size = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cards.json", cfg.Data.CatalogPath)
	assert.Equal(t, "DataTable.csv", cfg.Data.DeckTablePath)
	assert.Equal(t, 7, cfg.Analysis.RarityWindow)
	assert.True(t, cfg.Analysis.ValidateDeckSize)
	assert.Equal(t, 20, cfg.Analysis.PopularityWindow)
	assert.Equal(t, []string{"Arena", "PvE Adventure"}, cfg.Analysis.ExcludedDeckTypes)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[data\ncatalog_path = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Analysis.ExcludedDeckTypes = []string{"Arena"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "no catalog", mutate: func(c *Config) { c.Data.CatalogPath = "" }, wantErr: true},
		{name: "no deck table", mutate: func(c *Config) { c.Data.DeckTablePath = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "negative render rate", mutate: func(c *Config) { c.Server.RenderRate = -1 }, wantErr: true},
		{name: "rate without burst", mutate: func(c *Config) { c.Server.RenderBurst = 0 }, wantErr: true},
		{name: "unlimited rendering", mutate: func(c *Config) { c.Server.RenderRate, c.Server.RenderBurst = 0, 0 }, wantErr: false},
		{name: "zero deck size", mutate: func(c *Config) { c.Analysis.DeckSize = 0 }, wantErr: true},
		{name: "zero rarity window", mutate: func(c *Config) { c.Analysis.RarityWindow = 0 }, wantErr: true},
		{name: "negative popularity window", mutate: func(c *Config) { c.Analysis.PopularityWindow = -1 }, wantErr: true},
		{name: "zero bins", mutate: func(c *Config) { c.Analysis.HistogramBins = 0 }, wantErr: true},
		{name: "zero max cost", mutate: func(c *Config) { c.Analysis.HistogramMaxCost = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
