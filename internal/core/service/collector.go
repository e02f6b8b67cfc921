package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ports"
)

// DefaultBatchSize bounds one repository write.
const DefaultBatchSize = 2000

// CollectAlerts runs every source in order and concatenates their alerts.
// A failing source contributes nothing and does not affect the others.
func CollectAlerts(ctx context.Context, sources []ports.AlertSource, logger zerolog.Logger) domain.IngestionSummary {
	c := domain.IngestionSummary{Sources: make([]domain.SourceTotal, 0, len(sources)), Alerts: []domain.RegulatoryAlert{}}

	for _, src := range sources {
		logger.Info().Str("source", src.Name()).Msg("fetching source")

		alerts := src.Run(ctx)
		c.Alerts = append(c.Alerts, alerts...)
		c.Sources = append(c.Sources, domain.SourceTotal{Source: src.Name(), Alerts: len(alerts)})

		logger.Info().Str("source", src.Name()).Int("alerts", len(alerts)).Msg("source finished")
	}

	logger.Info().Int("total", len(c.Alerts)).Int("sources", len(sources)).Msg("collection finished")
	return c
}

// StoreAlerts writes alerts to repo in batches of at most batchSize and
// returns how many were saved before the first failure.
func StoreAlerts(ctx context.Context, repo ports.AlertRepository, alerts []domain.RegulatoryAlert, batchSize int, logger zerolog.Logger) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	saved := 0
	for start := 0; start < len(alerts); start += batchSize {
		end := min(start+batchSize, len(alerts))
		if err := repo.SaveBatch(ctx, alerts[start:end]); err != nil {
			return saved, fmt.Errorf("failed to save alerts %d-%d: %w", start, end, err)
		}
		saved += end - start
		logger.Debug().Int("batch", end-start).Int("total", saved).Msg("batch saved")
	}

	return saved, nil
}
