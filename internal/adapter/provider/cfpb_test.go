package provider

import (
	"context"
	"encoding/json"
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

const cfpbFixture = `{
  "hits": {
    "hits": [
      {"_source": {
        "complaint_id": "12345",
        "product": "Credit reporting",
        "date_received": "2026-02-01",
        "issue": "Incorrect information on your report",
        "complaint_what_happened": "My credit report shows an account that is not mine."
      }},
      {"_source": {
        "complaint_id": 67890,
        "product": "Mortgage",
        "date_received": "2026-02-10",
        "issue": "Applying for a mortgage or refinancing an existing mortgage",
        "complaint_what_happened": ""
      }}
    ]
  }
}`

func TestCFPBSource_Parse(t *testing.T) {
	src := NewCFPBSource(config.SourceConfig{
		CategoryMapping: map[string][]string{"Credit reporting": {"TP-0051"}},
	}, nil, zerolog.Nop())
	assert.Equal(t, "cfpb", src.Name())

	var raw CFPBResponse
	require.NoError(t, json.Unmarshal([]byte(cfpbFixture), &raw))

	alerts := src.Parse(&raw)
	require.Len(t, alerts, 2)

	a0 := alerts[0]
	assert.Equal(t, "cfpb", a0.Source)
	assert.Equal(t, "cfpb-12345", a0.AlertID)
	assert.Equal(t, "Incorrect information on your report", a0.Title)
	assert.Equal(t, "2026-02-01", a0.Date.String())
	assert.Equal(t, "Credit reporting", a0.Category)
	assert.Equal(t, []string{"TP-0051"}, a0.MappedTPIDs)
	assert.Equal(t, domain.SeverityHigh, a0.Severity)
	assert.Equal(t, "My credit report shows an account that is not mine.", a0.Summary)

	a1 := alerts[1]
	assert.Equal(t, "cfpb-67890", a1.AlertID)
	assert.Equal(t, "Mortgage", a1.Category)
	assert.Empty(t, a1.MappedTPIDs)
	assert.Equal(t, domain.SeverityMedium, a1.Severity)
	assert.Equal(t, "", a1.Summary)
}

func TestCFPBSource_ParseMissingComplaintID(t *testing.T) {
	raw := `{"hits": {"hits": [
      {"_source": {"product": "Mortgage", "date_received": "2026-02-10", "issue": "Escrow", "complaint_what_happened": "a"}},
      {"_source": {"complaint_id": null, "product": "Mortgage", "date_received": "2026-02-10", "issue": "Escrow", "complaint_what_happened": "b"}},
      {"_source": {"complaint_id": "", "product": "Mortgage", "date_received": "2026-02-10", "issue": "Escrow", "complaint_what_happened": "a"}}
    ]}}`

	var resp CFPBResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))

	alerts := NewCFPBSource(config.SourceConfig{}, nil, zerolog.Nop()).Parse(&resp)
	require.Len(t, alerts, 3)

	want := domain.DigestID("cfpb", "Mortgage|2026-02-10|Escrow|a")
	assert.Equal(t, want, alerts[0].AlertID)
	assert.NotEqual(t, alerts[0].AlertID, alerts[1].AlertID)
	assert.NotEqual(t, "cfpb-", alerts[1].AlertID)
	// same content without an id yields the same stable id
	assert.Equal(t, want, alerts[2].AlertID)
}

func TestCFPBSource_ParseEmpty(t *testing.T) {
	src := NewCFPBSource(config.SourceConfig{}, nil, zerolog.Nop())
	assert.Empty(t, src.Parse(nil))
	assert.Empty(t, src.Parse(&CFPBResponse{}))
}

func TestCFPBSource_FetchPaginates(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests = append(requests, q.Get("frm"))
		assert.Equal(t, "2", q.Get("size"))
		assert.Equal(t, "created_date_desc", q.Get("sort"))

		if q.Get("frm") == "" {
			fmt.Fprint(w, `{"hits":{"hits":[{"_source":{"complaint_id":"1"}},{"_source":{"complaint_id":"2"}}]}}`)
			return
		}
		fmt.Fprint(w, `{"hits":{"hits":[{"_source":{"complaint_id":"3"}}]}}`)
	}))
	defer srv.Close()

	src := NewCFPBSource(config.SourceConfig{
		Enabled:  true,
		BaseURL:  srv.URL,
		PageSize: 2,
		MaxPages: 5,
	}, srv.Client(), zerolog.Nop())

	alerts := src.Run(context.Background())
	require.Len(t, alerts, 3)
	assert.Equal(t, "cfpb-3", alerts[2].AlertID)
	assert.Equal(t, []string{"", "2"}, requests)
}

func TestCFPBSource_FetchFailureIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewCFPBSource(config.SourceConfig{BaseURL: srv.URL}, srv.Client(), zerolog.Nop())
	alerts := src.Run(context.Background())
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
