package provider

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const (
	fincenDefaultURL = "https://www.fincen.gov/resources/advisoriesbulletinsfact-sheets/advisories"
	fincenSiteURL    = "https://www.fincen.gov"
	fincenCategory   = "Advisory"
	fincenSummary    = "FinCEN Advisory Notification"
)

// FinCENSource scrapes the FinCEN advisories listing. Each advisory is a
// table row whose first cell holds the date and second cell the link.
type FinCENSource struct {
	base
}

func NewFinCENSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *FinCENSource {
	return &FinCENSource{base: newBase(domain.SourceFinCEN, cfg, client, logger)}
}

func (s *FinCENSource) Name() string {
	return domain.SourceFinCEN
}

func (s *FinCENSource) Fetch(ctx context.Context) (string, error) {
	body, err := s.get(ctx, s.cfg.Endpoint(fincenDefaultURL), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *FinCENSource) Parse(raw string) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	doc := parseHTML(raw)
	if doc == nil {
		return alerts
	}

	tpIDs := s.MapCategoryToTPs(fincenCategory)
	severity := domain.SeverityForMapping(tpIDs, domain.SeverityHigh, domain.SeverityMedium)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}

		dateCell := cells.Eq(0)
		dateText := dateCell.Find("time").First().Text()
		if dateText == "" {
			dateText = dateCell.Text()
		}
		dateText = collapseSpace(dateText)
		if dateText == "" {
			return
		}

		link := cells.Eq(1).Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		title := collapseSpace(link.Text())
		href := domain.AbsoluteURL(fincenSiteURL, link.AttrOr("href", ""))
		if title == "" || href == "" {
			return
		}

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     domain.DigestID(s.Name(), href),
			Title:       title,
			Date:        domain.ParseAlertDate(dateText),
			Category:    fincenCategory,
			MappedTPIDs: append([]string{}, tpIDs...),
			URL:         href,
			Severity:    severity,
			Summary:     fincenSummary,
		})
	})

	return dedupeByTitle(alerts)
}

func (s *FinCENSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[string](ctx, s, s.logger)
}
