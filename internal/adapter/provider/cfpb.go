package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const (
	cfpbDefaultURL      = "https://www.consumerfinance.gov/data-research/consumer-complaints/search/api/v1/"
	cfpbDefaultPageSize = 100
)

// CFPBSource reads the CFPB consumer complaint search API.
type CFPBSource struct {
	base
}

func NewCFPBSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *CFPBSource {
	return &CFPBSource{base: newBase(domain.SourceCFPB, cfg, client, logger)}
}

func (s *CFPBSource) Name() string {
	return domain.SourceCFPB
}

type CFPBResponse struct {
	Hits struct {
		Hits []cfpbHit `json:"hits"`
	} `json:"hits"`
}

type cfpbHit struct {
	Source cfpbComplaint `json:"_source"`
}

type cfpbComplaint struct {
	ComplaintID  json.RawMessage `json:"complaint_id"`
	Product      string          `json:"product"`
	DateReceived string          `json:"date_received"`
	Issue        string          `json:"issue"`
	WhatHappened string          `json:"complaint_what_happened"`
}

// Fetch pages through the API newest first. It stops after max_pages
// (default 1) or on the first short page.
func (s *CFPBSource) Fetch(ctx context.Context) (*CFPBResponse, error) {
	endpoint := s.cfg.Endpoint(cfpbDefaultURL)

	size := s.cfg.PageSize
	if size <= 0 {
		size = cfpbDefaultPageSize
	}
	pages := s.cfg.MaxPages
	if pages <= 0 {
		pages = 1
	}

	merged := &CFPBResponse{}
	for page := 0; page < pages; page++ {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid cfpb url %q: %w", endpoint, err)
		}
		q := u.Query()
		q.Set("size", strconv.Itoa(size))
		q.Set("sort", "created_date_desc")
		if page > 0 {
			q.Set("frm", strconv.Itoa(page*size))
		}
		u.RawQuery = q.Encode()

		body, err := s.get(ctx, u.String(), nil)
		if err != nil {
			return nil, err
		}

		var resp CFPBResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode cfpb json: %w", err)
		}

		merged.Hits.Hits = append(merged.Hits.Hits, resp.Hits.Hits...)
		s.logger.Debug().Int("page", page).Int("hits", len(resp.Hits.Hits)).Msg("fetched cfpb page")

		if len(resp.Hits.Hits) < size {
			break
		}
	}

	return merged, nil
}

func (s *CFPBSource) Parse(raw *CFPBResponse) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	if raw == nil {
		return alerts
	}

	for _, hit := range raw.Hits.Hits {
		c := hit.Source
		tpIDs := s.MapCategoryToTPs(c.Product)

		alertID := "cfpb-" + complaintID(c.ComplaintID)
		if alertID == "cfpb-" {
			// no upstream id: digest the complaint content instead
			alertID = domain.DigestID(s.Name(), strings.Join([]string{c.Product, c.DateReceived, c.Issue, c.WhatHappened}, "|"))
		}

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     alertID,
			Title:       c.Issue,
			Date:        domain.ParseAlertDate(c.DateReceived),
			Category:    c.Product,
			MappedTPIDs: tpIDs,
			Severity:    domain.SeverityForMapping(tpIDs, domain.SeverityHigh, domain.SeverityMedium),
			Summary:     c.WhatHappened,
		})
	}

	return alerts
}

func (s *CFPBSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[*CFPBResponse](ctx, s, s.logger)
}

// complaintID accepts the id as either a JSON string or number.
func complaintID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
