package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const (
	occDefaultFeedURL = "https://www.occ.gov/rss/occ_bulletins.xml"
	secDefaultFeedURL = "https://www.sec.gov/rss/litigation/litreleases.xml"
)

// feedRule describes how one syndication feed turns into alerts.
type feedRule struct {
	name string
	// keyword found in a lower-cased title selects keywordCategory,
	// otherwise fallbackCategory is used. Item categories win over both.
	keyword          string
	keywordCategory  string
	fallbackCategory string
	mapped           domain.Severity
	unmapped         domain.Severity
}

var (
	occRule = feedRule{
		name:             domain.SourceOCC,
		keyword:          "enforcement",
		keywordCategory:  "Enforcement Action",
		fallbackCategory: "Bulletin",
		mapped:           domain.SeverityMedium,
		unmapped:         domain.SeverityLow,
	}
	secRule = feedRule{
		name:             domain.SourceSEC,
		keyword:          "administrative",
		keywordCategory:  "Administrative Proceeding",
		fallbackCategory: "Litigation Release",
		mapped:           domain.SeverityHigh,
		unmapped:         domain.SeverityMedium,
	}
)

// FeedSource reads an RSS or Atom feed. OCC bulletins and SEC litigation
// releases only differ in their feedRule.
type FeedSource struct {
	base
	rule     feedRule
	endpoint string
}

func NewOCCSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *FeedSource {
	return &FeedSource{
		base:     newBase(domain.SourceOCC, cfg, client, logger),
		rule:     occRule,
		endpoint: cfg.Endpoint(occDefaultFeedURL),
	}
}

func NewSECSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *FeedSource {
	return &FeedSource{
		base:     newBase(domain.SourceSEC, cfg, client, logger),
		rule:     secRule,
		endpoint: cfg.Endpoint(secDefaultFeedURL),
	}
}

func (s *FeedSource) Name() string {
	return s.rule.name
}

func (s *FeedSource) Fetch(ctx context.Context) (*gofeed.Feed, error) {
	header := http.Header{}
	header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	body, err := s.get(ctx, s.endpoint, header)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s feed: %w", s.rule.name, err)
	}
	return feed, nil
}

func (s *FeedSource) Parse(feed *gofeed.Feed) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	if feed == nil {
		return alerts
	}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		category := s.rule.category(item)
		tpIDs := s.MapCategoryToTPs(category)

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.rule.name,
			AlertID:     domain.DigestID(s.rule.name, itemKey(item)),
			Title:       strings.TrimSpace(item.Title),
			Date:        itemDate(item),
			Category:    category,
			MappedTPIDs: tpIDs,
			URL:         item.Link,
			Severity:    domain.SeverityForMapping(tpIDs, s.rule.mapped, s.rule.unmapped),
			Summary:     strings.TrimSpace(item.Description),
		})
	}

	return alerts
}

func (s *FeedSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[*gofeed.Feed](ctx, s, s.logger)
}

func (r feedRule) category(item *gofeed.Item) string {
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	if strings.Contains(strings.ToLower(item.Title), r.keyword) {
		return r.keywordCategory
	}
	return r.fallbackCategory
}

// itemKey is the stable identity of an entry: GUID, then permalink, then
// title.
func itemKey(item *gofeed.Item) string {
	for _, k := range []string{item.GUID, item.Link, item.Title} {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	return ""
}

func itemDate(item *gofeed.Item) domain.AlertDate {
	switch {
	case item.PublishedParsed != nil:
		return domain.DateOf(*item.PublishedParsed)
	case item.UpdatedParsed != nil:
		return domain.DateOf(*item.UpdatedParsed)
	case item.Published != "":
		return domain.ParseAlertDate(item.Published)
	}
	return domain.ParseAlertDate(item.Updated)
}
