package provider

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const ic3ReportDefaultURL = "https://www.ic3.gov/AnnualReport/Reports/2024_IC3Report.pdf"

// ic3ReportLine matches "crime type    victims    $losses" rows of the
// annual report. Only spaces and tabs separate the columns so a match never
// spans two lines.
var ic3ReportLine = regexp.MustCompile(`(?m)^([\w/ \t]+?)[ \t]{2,}([\d,]+)[ \t]+\$?([\d,]+)`)

// IC3ReportSource reads the crime type table of the FBI IC3 annual report.
type IC3ReportSource struct {
	base
	endpoint string
}

func NewIC3ReportSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *IC3ReportSource {
	return &IC3ReportSource{
		base:     newBase(domain.SourceFBIIC3, cfg, client, logger),
		endpoint: cfg.Endpoint(ic3ReportDefaultURL),
	}
}

func (s *IC3ReportSource) Name() string {
	return domain.SourceFBIIC3
}

// Fetch downloads the report and returns the text of all pages.
func (s *IC3ReportSource) Fetch(ctx context.Context) (string, error) {
	body, err := s.get(ctx, s.endpoint, nil)
	if err != nil {
		return "", err
	}
	text, err := pdfText(body)
	if err != nil {
		return "", fmt.Errorf("failed to extract ic3 report text: %w", err)
	}
	return text, nil
}

func (s *IC3ReportSource) Parse(text string) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}

	for _, m := range ic3ReportLine.FindAllStringSubmatch(text, -1) {
		label := collapseSpace(m[1])
		if label == "" {
			continue
		}

		victims, errV := strconv.ParseInt(digitsOnly(m[2]), 10, 64)
		losses, errL := strconv.ParseInt(digitsOnly(m[3]), 10, 64)
		summary := "FBI IC3 annual report"
		if errV == nil && errL == nil {
			summary = fmt.Sprintf("FBI IC3 annual report: %d victims, $%d losses", victims, losses)
		}

		tpIDs := s.MapCategoryToTPs(label)
		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     domain.DigestID("ic3-report", label),
			Title:       "FBI IC3 Report: " + label,
			Category:    label,
			MappedTPIDs: tpIDs,
			URL:         s.endpoint,
			Severity:    domain.SeverityForMapping(tpIDs, domain.SeverityHigh, domain.SeverityMedium),
			Summary:     summary,
		})
	}

	return dedupeByTitle(alerts)
}

func (s *IC3ReportSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[string](ctx, s, s.logger)
}
