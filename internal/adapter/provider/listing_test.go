package provider

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const occListingFixture = `
<ul>
  <li>
    <time>Jan 15, 2026</time>
    <a href="/news-issuances/bulletins/2026/bulletin-2026-01.html">OCC Bulletin 2026-01: BSA/AML Compliance</a>
  </li>
  <li>
    <div>Feb 01, 2026</div>
    <a href="/news-issuances/enforcement-2026-01.html">Enforcement Action Against National Bank</a>
  </li>
  <li>
    <time>Feb 03, 2026</time>
    <a href="/news-issuances/enforcement-2026-02.html">Enforcement Actions for February</a>
  </li>
  <li>
    <time>Feb 04, 2026</time>
    <a href="ignore.html"><img src="icon.png"/></a>
  </li>
</ul>`

const secListingFixture = `
<table>
  <tr>
    <td>2026-01-20</td>
    <td><a href="/litigation/lr/2026-001.htm">Release No. LR-26495</a></td>
    <td>SEC Charges XYZ Corp with Securities Fraud</td>
  </tr>
  <tr>
    <td>2026-02-05</td>
    <td><a href="/litigation/ap/2026-002.htm">Release No. 34-12345</a></td>
    <td>Administrative Proceeding Against ABC Fund</td>
  </tr>
  <tr>
    <td>2026-02-06</td>
    <td><a href="/about">About the SEC</a></td>
  </tr>
  <tr>
    <td>Irrelevant Row</td>
  </tr>
</table>`

func TestOCCListingSource_Parse(t *testing.T) {
	src := NewOCCListingSource(config.SourceConfig{
		CategoryMapping: map[string][]string{"Bulletin": {"TP-0001"}},
	}, nil, zerolog.Nop())
	assert.Equal(t, "occ", src.Name())

	alerts := src.Parse(occListingFixture)
	require.Len(t, alerts, 2)

	a0 := alerts[0]
	assert.Equal(t, "OCC Bulletin 2026-01: BSA/AML Compliance", a0.Title)
	assert.Equal(t, "2026-01-15", a0.Date.String())
	assert.Equal(t, "https://www.occ.gov/news-issuances/bulletins/2026/bulletin-2026-01.html", a0.URL)
	assert.Equal(t, "Bulletin", a0.Category)
	assert.Equal(t, []string{"TP-0001"}, a0.MappedTPIDs)
	assert.Equal(t, domain.SeverityMedium, a0.Severity)

	a1 := alerts[1]
	assert.Equal(t, "Enforcement Action", a1.Category)
	assert.Equal(t, domain.SeverityLow, a1.Severity)
}

func TestSECListingSource_Parse(t *testing.T) {
	src := NewSECListingSource(config.SourceConfig{
		CategoryMapping: map[string][]string{"Litigation Release": {"TP-0031"}},
	}, nil, zerolog.Nop())
	assert.Equal(t, "sec", src.Name())

	alerts := src.Parse(secListingFixture)
	require.Len(t, alerts, 2)

	a0 := alerts[0]
	assert.Equal(t, "SEC Litigation: SEC Charges XYZ Corp with Securities Fraud", a0.Title)
	assert.Equal(t, "2026-01-20", a0.Date.String())
	assert.Equal(t, "Litigation Release", a0.Category)
	assert.Equal(t, "https://www.sec.gov/litigation/lr/2026-001.htm", a0.URL)
	assert.Equal(t, "Release No. LR-26495", a0.Summary)
	assert.Equal(t, domain.SeverityHigh, a0.Severity)

	a1 := alerts[1]
	assert.Equal(t, "SEC Litigation: Administrative Proceeding Against ABC Fund", a1.Title)
	assert.Equal(t, "Litigation Release", a1.Category)
	assert.Equal(t, domain.SeverityHigh, a1.Severity)
	assert.Equal(t, domain.DigestID("sec", "https://www.sec.gov/litigation/ap/2026-002.htm"), a1.AlertID)
}

func TestSECListingSource_ParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		release  string
		headline string
		want     string
	}{
		{"administrative headline", "Release No. 34-12345", "Administrative Proceeding Against ABC Fund", "Litigation Release"},
		{"administrative release label", "Release No. Administrative 33-1", "Order Against DEF LLC", "Administrative Proceeding"},
		{"plain release", "Release No. LR-26495", "SEC Charges XYZ Corp", "Litigation Release"},
	}

	src := NewSECListingSource(config.SourceConfig{}, nil, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<table><tr><td>2026-02-05</td><td><a href="/litigation/ap/x.htm">` +
				tt.release + `</a></td><td>` + tt.headline + `</td></tr></table>`

			alerts := src.Parse(raw)
			require.Len(t, alerts, 1)
			assert.Equal(t, tt.want, alerts[0].Category)
		})
	}
}

func TestListingSources_ParseEmpty(t *testing.T) {
	assert.Empty(t, NewOCCListingSource(config.SourceConfig{}, nil, zerolog.Nop()).Parse(""))
	assert.Empty(t, NewSECListingSource(config.SourceConfig{}, nil, zerolog.Nop()).Parse(" \n "))
}
