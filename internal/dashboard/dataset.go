package dashboard

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/catalog"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/config"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/decks"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/features"
)

// Dataset is the prepared, read-only state every chart is computed from.
type Dataset struct {
	Catalog   *catalog.Catalog
	Table     *decks.Table
	Groups    []features.Group
	LoadStats decks.LoadStats
}

// Prepare loads the catalog and the deck table and derives the group columns.
func Prepare(cfg *config.Config, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := catalog.Load(cfg.Data.CatalogPath, cfg.Analysis.ReservedNameParts)
	if err != nil {
		return nil, err
	}
	logger.Named("catalog").Info("catalog loaded",
		zap.String("path", cfg.Data.CatalogPath),
		zap.Int("cards", cat.Len()),
		zap.Int("eligible", len(cat.EligibleNames())),
		zap.Int("collapsed", cat.Duplicates()),
		zap.Int("unnamed", cat.Unnamed()),
	)

	loader := decks.NewLoader(decks.Options{
		CardNames:         cat.EligibleNames(),
		ExcludedDeckTypes: cfg.Analysis.ExcludedDeckTypes,
		DeckSize:          cfg.Analysis.DeckSize,
		ValidateDeckSize:  cfg.Analysis.ValidateDeckSize,
	}, logger.Named("decks"))

	table, loadStats, err := loader.Load(cfg.Data.DeckTablePath)
	if err != nil {
		return nil, err
	}

	groups := features.BuildGroups(cat, nil)
	if err := features.Derive(table, groups, cfg.Analysis.DeckSize); err != nil {
		return nil, fmt.Errorf("failed to derive features: %w", err)
	}

	return &Dataset{
		Catalog:   cat,
		Table:     table,
		Groups:    groups,
		LoadStats: loadStats,
	}, nil
}
