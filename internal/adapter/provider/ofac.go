package provider

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const (
	ofacDefaultURL  = "https://www.treasury.gov/ofac/downloads/sdn.xml"
	ofacSDNCategory = "SDN List Addition"
)

// OFACSource reads the OFAC Specially Designated Nationals XML list.
type OFACSource struct {
	base
}

func NewOFACSource(cfg config.SourceConfig, client Doer, logger zerolog.Logger) *OFACSource {
	return &OFACSource{base: newBase(domain.SourceOFAC, cfg, client, logger)}
}

func (s *OFACSource) Name() string {
	return domain.SourceOFAC
}

// Fetch returns the raw XML document.
func (s *OFACSource) Fetch(ctx context.Context) ([]byte, error) {
	return s.get(ctx, s.cfg.Endpoint(ofacDefaultURL), nil)
}

// Element names are matched on local name only by encoding/xml; the
// namespace is kept so that Parse can require it to match the root's.
type sdnList struct {
	XMLName     xml.Name     `xml:"sdnList"`
	PublishInfo []sdnPubInfo `xml:"publshInformation"`
	Entries     []sdnEntry   `xml:"sdnEntry"`
}

type sdnPubInfo struct {
	XMLName     xml.Name
	PublishDate []sdnText `xml:"Publish_Date"`
}

type sdnEntry struct {
	XMLName   xml.Name
	UID       []sdnText       `xml:"uid"`
	FirstName []sdnText       `xml:"firstName"`
	LastName  []sdnText       `xml:"lastName"`
	SDNType   []sdnText       `xml:"sdnType"`
	Programs  []sdnProgramSet `xml:"programList"`
}

type sdnProgramSet struct {
	XMLName  xml.Name
	Programs []sdnText `xml:"program"`
}

type sdnText struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Parse accepts the list with or without a default namespace. Whatever
// namespace the root element carries, every child is looked up in that
// same namespace and foreign elements are ignored.
func (s *OFACSource) Parse(raw []byte) []domain.RegulatoryAlert {
	alerts := []domain.RegulatoryAlert{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return alerts
	}

	var doc sdnList
	if err := xml.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode sdn xml")
		return alerts
	}
	ns := doc.XMLName.Space

	publishDate := ""
	for _, info := range doc.PublishInfo {
		if info.XMLName.Space == ns {
			publishDate = textIn(info.PublishDate, ns)
			break
		}
	}
	date := domain.ParseAlertDate(publishDate)
	tpIDs := s.MapCategoryToTPs(ofacSDNCategory)

	for _, entry := range doc.Entries {
		if entry.XMLName.Space != ns {
			continue
		}

		var programs []string
		for _, set := range entry.Programs {
			if set.XMLName.Space != ns {
				continue
			}
			for _, p := range set.Programs {
				if v := strings.TrimSpace(p.Value); v != "" && p.XMLName.Space == ns {
					programs = append(programs, v)
				}
			}
		}

		sdnType := textIn(entry.SDNType, ns)
		name := strings.TrimSpace(textIn(entry.FirstName, ns) + " " + textIn(entry.LastName, ns))

		alerts = append(alerts, domain.RegulatoryAlert{
			Source:      s.Name(),
			AlertID:     "ofac-" + textIn(entry.UID, ns),
			Title:       fmt.Sprintf("OFAC SDN: %s (%s)", name, sdnType),
			Date:        date,
			Category:    ofacSDNCategory,
			MappedTPIDs: append([]string{}, tpIDs...),
			Severity:    domain.SeverityHigh,
			Summary:     fmt.Sprintf("SDN entry type: %s, programs: %s", sdnType, strings.Join(programs, ", ")),
		})
	}

	return alerts
}

func (s *OFACSource) Run(ctx context.Context) []domain.RegulatoryAlert {
	return Run[[]byte](ctx, s, s.logger)
}

// textIn returns the trimmed text of the first element in ns.
func textIn(elems []sdnText, ns string) string {
	for _, e := range elems {
		if e.XMLName.Space == ns {
			return strings.TrimSpace(e.Value)
		}
	}
	return ""
}
