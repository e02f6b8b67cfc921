package provider

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const (
	ic3DefaultURL = "https://www.ic3.gov/Home/IndustryAlerts"
	ic3SiteURL    = "https://www.ic3.gov"
	ic3Category   = "Industry Alert"
	ic3Summary    = "FBI IC3 Notification"
)

// ic3DatePattern matches the "Thu, 19 Feb 2026" dates printed next to each
// alert link.
var ic3DatePattern = regexp.MustCompile(`[A-Z][a-z]{2}, \d{1,2} [A-Z][a-z]{2} \d{4}`)

// IC3Source scrapes the FBI IC3 industry alert (CSA) listing.
type IC3Source struct {
	base
}

func NewIC3Source(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *IC3Source {
	return &IC3Source{base: newBase(domain.SourceFBIIC3, cfg, client, logger)}
}

func (s *IC3Source) Name() string {
	return domain.SourceFBIIC3
}

func (s *IC3Source) Fetch(ctx context.Context) (string, error) {
	body, err := s.get(ctx, s.cfg.Endpoint(ic3DefaultURL), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Parse keeps links to /CSA/ PDF documents and reads the date from the
// text surrounding each link.
func (s *IC3Source) Parse(raw string) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	doc := parseHTML(raw)
	if doc == nil {
		return alerts
	}

	tpIDs := s.MapCategoryToTPs(ic3Category)
	severity := domain.SeverityForMapping(tpIDs, domain.SeverityHigh, domain.SeverityMedium)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if !strings.Contains(href, "/CSA/") || !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}

		title := collapseSpace(link.Text())
		if title == "" {
			return
		}

		surrounding := link.Parent().Text()
		if surrounding == "" {
			surrounding = title
		}
		date := domain.ParseAlertDate(ic3DatePattern.FindString(surrounding))
		absolute := domain.AbsoluteURL(ic3SiteURL, href)

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     domain.DigestID("ic3", absolute),
			Title:       title,
			Date:        date,
			Category:    ic3Category,
			MappedTPIDs: append([]string{}, tpIDs...),
			URL:         absolute,
			Severity:    severity,
			Summary:     ic3Summary,
		})
	})

	return dedupeByTitle(alerts)
}

func (s *IC3Source) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[string](ctx, s, s.logger)
}
