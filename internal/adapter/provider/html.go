package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// parseHTML returns nil for blank input or markup goquery cannot read.
func parseHTML(raw string) *goquery.Document {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	return doc
}

// dedupeByTitle keeps the first alert for every title, in order.
func dedupeByTitle(alerts []domain.RegulatoryAlert) []domain.RegulatoryAlert {
	seen := make(map[string]struct{}, len(alerts))
	out := make([]domain.RegulatoryAlert, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := seen[a.Title]; ok {
			continue
		}
		seen[a.Title] = struct{}{}
		out = append(out, a)
	}
	return out
}

// collapseSpace folds runs of whitespace in scraped text.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
