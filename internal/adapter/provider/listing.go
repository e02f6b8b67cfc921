package provider

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// FormatHTML selects the scraped listing variant of the occ and sec sources.
const FormatHTML = "html"

const (
	occListingURL = "https://www.occ.gov/news-issuances/bulletins/index-bulletins.html"
	occSiteURL    = "https://www.occ.gov"
	secListingURL = "https://www.sec.gov/enforcement-litigation/litigation-releases"
	secSiteURL    = "https://www.sec.gov"

	// secReleaseMarker prefixes the link text of every release row.
	secReleaseMarker = "release no."
)

// OCCListingSource scrapes the OCC bulletin index. Items are list entries
// carrying a <time> element and a titled link.
type OCCListingSource struct {
	base
}

func NewOCCListingSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *OCCListingSource {
	return &OCCListingSource{base: newBase(domain.SourceOCC, cfg, client, logger)}
}

func (s *OCCListingSource) Name() string {
	return domain.SourceOCC
}

func (s *OCCListingSource) Fetch(ctx context.Context) (string, error) {
	body, err := s.get(ctx, s.cfg.Endpoint(occListingURL), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *OCCListingSource) Parse(raw string) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	doc := parseHTML(raw)
	if doc == nil {
		return alerts
	}

	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		when := collapseSpace(item.Find("time").First().Text())
		if when == "" {
			return
		}

		link := item.Find("a[href]").First()
		title := collapseSpace(link.Text())
		if title == "" {
			return
		}
		href := domain.AbsoluteURL(occSiteURL, link.AttrOr("href", ""))
		if href == "" {
			return
		}

		category := occRule.fallbackCategory
		if strings.Contains(strings.ToLower(title), occRule.keyword) {
			category = occRule.keywordCategory
		}
		tpIDs := s.MapCategoryToTPs(category)

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     domain.DigestID(s.Name(), href),
			Title:       title,
			Date:        domain.ParseAlertDate(when),
			Category:    category,
			MappedTPIDs: tpIDs,
			URL:         href,
			Severity:    domain.SeverityForMapping(tpIDs, occRule.mapped, occRule.unmapped),
		})
	})

	return dedupeByTitle(alerts)
}

func (s *OCCListingSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[string](ctx, s, s.logger)
}

// SECListingSource scrapes the SEC litigation release table. A row counts
// only when its second cell links a "Release No." document.
type SECListingSource struct {
	base
}

func NewSECListingSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *SECListingSource {
	return &SECListingSource{base: newBase(domain.SourceSEC, cfg, client, logger)}
}

func (s *SECListingSource) Name() string {
	return domain.SourceSEC
}

func (s *SECListingSource) Fetch(ctx context.Context) (string, error) {
	body, err := s.get(ctx, s.cfg.Endpoint(secListingURL), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *SECListingSource) Parse(raw string) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	doc := parseHTML(raw)
	if doc == nil {
		return alerts
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}

		link := cells.Eq(1).Find("a[href]").First()
		release := collapseSpace(link.Text())
		href := domain.AbsoluteURL(secSiteURL, link.AttrOr("href", ""))
		if href == "" || !strings.HasPrefix(strings.ToLower(release), secReleaseMarker) {
			return
		}

		headline := release
		if cells.Length() > 2 {
			if v := collapseSpace(cells.Eq(2).Text()); v != "" {
				headline = v
			}
		}

		// classified by the release label, not the headline
		category := secRule.fallbackCategory
		if strings.Contains(strings.ToLower(release), secRule.keyword) {
			category = secRule.keywordCategory
		}
		tpIDs := s.MapCategoryToTPs(category)

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     domain.DigestID(s.Name(), href),
			Title:       "SEC Litigation: " + headline,
			Date:        domain.ParseAlertDate(collapseSpace(cells.Eq(0).Text())),
			Category:    category,
			MappedTPIDs: tpIDs,
			URL:         href,
			Severity:    domain.SeverityForMapping(tpIDs, secRule.mapped, secRule.unmapped),
			Summary:     release,
		})
	})

	return dedupeByTitle(alerts)
}

func (s *SECListingSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[string](ctx, s, s.logger)
}
