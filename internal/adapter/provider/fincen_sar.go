package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const fincenSARDefaultURL = "https://www.fincen.gov/sites/default/files/shared/SAR_Stats_2_FINAL.pdf"

// FinCENSARSource reads the FinCEN SAR statistics PDF. Every data row of
// every table becomes one alert: the first cell names the suspicious
// activity and the second holds the filing count.
type FinCENSARSource struct {
	base
	endpoint string
}

func NewFinCENSARSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *FinCENSARSource {
	return &FinCENSARSource{
		base:     newBase(domain.SourceFinCEN, cfg, client, logger),
		endpoint: cfg.Endpoint(fincenSARDefaultURL),
	}
}

func (s *FinCENSARSource) Name() string {
	return domain.SourceFinCEN
}

// Fetch downloads the PDF and returns its tables as rows of cells.
func (s *FinCENSARSource) Fetch(ctx context.Context) ([][][]string, error) {
	body, err := s.get(ctx, s.endpoint, nil)
	if err != nil {
		return nil, err
	}
	tables, err := pdfTables(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract fincen sar tables: %w", err)
	}
	s.logger.Debug().Int("tables", len(tables)).Msg("extracted sar tables")
	return tables, nil
}

func (s *FinCENSARSource) Parse(tables [][][]string) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}

	for _, table := range tables {
		// header plus at least one data row
		if len(table) < 2 {
			continue
		}

		for _, row := range table[1:] {
			if len(row) == 0 {
				continue
			}
			label := collapseSpace(row[0])
			if label == "" {
				continue
			}

			summary := "FinCEN SAR statistics"
			if len(row) > 1 {
				if n, err := strconv.ParseInt(digitsOnly(row[1]), 10, 64); err == nil {
					summary = fmt.Sprintf("FinCEN SAR statistics: %d filings", n)
				}
			}

			tpIDs := s.MapCategoryToTPs(label)
			alerts = append(alerts, domain.RegulatoryAlert{
				Source:      s.Name(),
				AlertID:     domain.DigestID("fincen-sar", label),
				Title:       "FinCEN SAR Statistics: " + label,
				Category:    label,
				MappedTPIDs: tpIDs,
				URL:         s.endpoint,
				Severity:    domain.SeverityForMapping(tpIDs, domain.SeverityHigh, domain.SeverityMedium),
				Summary:     summary,
			})
		}
	}

	return dedupeByTitle(alerts)
}

func (s *FinCENSARSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[[][][]string](ctx, s, s.logger)
}
