package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elchacal801/flame-fraud/internal/config"
	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const fincenFixture = `
<table>
  <tr>
    <td><time>2026-02-15</time></td>
    <td><a href="/advisory/fake.pdf">FinCEN Advisory on Money Laundering</a></td>
  </tr>
  <tr>
    <td>2026-02-10</td>
    <td><a href="/advisory/fake2.pdf">FinCEN Advisory on Ransomware</a></td>
  </tr>
  <tr>
    <td><time>Invalid Date</time></td>
    <td>No Link Here</td>
  </tr>
  <tr>
    <td>2026-01-02</td>
    <td><a href="https://www.fincen.gov/advisory/fake.pdf">FinCEN Advisory on Money Laundering</a></td>
  </tr>
</table>`

const fincenReordered = `
<table>
  <tr>
    <td>2026-02-10</td>
    <td><a href="/advisory/fake2.pdf">FinCEN Advisory on Ransomware</a></td>
  </tr>
  <tr>
    <td><time>2026-02-15</time></td>
    <td><a href="/advisory/fake.pdf">FinCEN Advisory on Money Laundering</a></td>
  </tr>
</table>`

func TestFinCENSource_Parse(t *testing.T) {
	src := NewFinCENSource(config.SourceConfig{}, nil, zerolog.Nop())
	assert.Equal(t, "fincen", src.Name())

	alerts := src.Parse(fincenFixture)
	require.Len(t, alerts, 2)

	assert.Equal(t, "FinCEN Advisory on Money Laundering", alerts[0].Title)
	assert.Equal(t, "2026-02-15", alerts[0].Date.String())
	assert.Equal(t, "https://www.fincen.gov/advisory/fake.pdf", alerts[0].URL)
	assert.Equal(t, "Advisory", alerts[0].Category)
	assert.Equal(t, domain.SeverityMedium, alerts[0].Severity)

	assert.Equal(t, "FinCEN Advisory on Ransomware", alerts[1].Title)
	assert.Equal(t, "2026-02-10", alerts[1].Date.String())
	assert.Equal(t, "https://www.fincen.gov/advisory/fake2.pdf", alerts[1].URL)
}

func TestFinCENSource_IDsSurviveReordering(t *testing.T) {
	src := NewFinCENSource(config.SourceConfig{}, nil, zerolog.Nop())

	ids := map[string]string{}
	for _, a := range src.Parse(fincenFixture) {
		ids[a.Title] = a.AlertID
	}
	for _, a := range src.Parse(fincenReordered) {
		assert.Equal(t, ids[a.Title], a.AlertID, a.Title)
	}
	assert.NotEqual(t, ids["FinCEN Advisory on Ransomware"], ids["FinCEN Advisory on Money Laundering"])
}

func TestFinCENSource_SeverityWhenMapped(t *testing.T) {
	src := NewFinCENSource(config.SourceConfig{
		CategoryMapping: map[string][]string{"Advisory": {"TP-0001"}},
	}, nil, zerolog.Nop())

	alerts := src.Parse(fincenFixture)
	require.NotEmpty(t, alerts)
	assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, []string{"TP-0001"}, alerts[0].MappedTPIDs)
}

func TestFinCENSource_ParseEmpty(t *testing.T) {
	src := NewFinCENSource(config.SourceConfig{}, nil, zerolog.Nop())
	assert.Empty(t, src.Parse(""))
	assert.Empty(t, src.Parse("<p>no table here</p>"))
}

func TestFinCENSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		fmt.Fprint(w, fincenFixture)
	}))
	defer srv.Close()

	src := NewFinCENSource(config.SourceConfig{URL: srv.URL}, srv.Client(), zerolog.Nop())
	raw, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fincenFixture, raw)
}

func TestFinCENSARSource_Parse(t *testing.T) {
	src := NewFinCENSARSource(config.SourceConfig{
		URL:             "https://www.fincen.gov/sar.pdf",
		CategoryMapping: map[string][]string{"Check Fraud": {"TP-0020"}},
	}, nil, zerolog.Nop())
	assert.Equal(t, "fincen", src.Name())

	tables := [][][]string{
		{
			{"Suspicious Activity", "Count"},
			{"Check Fraud", "12,345"},
			{"Identity Theft", "n/a"},
		},
		{
			{"Header only", "Count"},
		},
		{
			{"Activity", "Filings"},
			{"Wire Transfer Fraud", "1,002"},
			{"Check Fraud", "7"},
		},
	}

	alerts := src.Parse(tables)
	require.Len(t, alerts, 3)

	check := alerts[0]
	assert.Equal(t, "FinCEN SAR Statistics: Check Fraud", check.Title)
	assert.Equal(t, "Check Fraud", check.Category)
	assert.Equal(t, "FinCEN SAR statistics: 12345 filings", check.Summary)
	assert.Equal(t, domain.SeverityHigh, check.Severity)
	assert.Equal(t, "https://www.fincen.gov/sar.pdf", check.URL)

	assert.Equal(t, "FinCEN SAR statistics", alerts[1].Summary, "non-numeric count is omitted")
	assert.Equal(t, domain.SeverityMedium, alerts[1].Severity)
	assert.Equal(t, "Wire Transfer Fraud", alerts[2].Category)

	assert.Empty(t, src.Parse(nil))
}
