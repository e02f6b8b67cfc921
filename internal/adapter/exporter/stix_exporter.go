package exporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const (
	projectURL   = "https://github.com/elchacal801/flame-fraud"
	identitySeed = "flame-fraud-project"
	bundleSeed   = "flame-regulatory-bundle"
)

// stixID derives a deterministic id so repeated exports of the same alerts
// produce identical objects.
func stixID(stixType, seed string) string {
	return fmt.Sprintf("%s--%s", stixType, uuid.NewSHA1(uuid.NameSpaceDNS, []byte(seed)))
}

var identityID = stixID("identity", identitySeed)

// STIXExporter exports regulatory alerts as a STIX 2.1 bundle: the FLAME
// identity followed by one report per alert.
type STIXExporter struct {
	now func() time.Time
}

func NewSTIXExporter() *STIXExporter {
	return &STIXExporter{now: time.Now}
}

// Export renders the bundle as indented JSON.
func (e *STIXExporter) Export(alerts []domain.RegulatoryAlert) (string, error) {
	now := e.now().UTC().Format(time.RFC3339)

	bundle := STIXBundle{
		Type:    "bundle",
		ID:      stixID("bundle", bundleSeed),
		Objects: []STIXObject{e.identity(now)},
	}

	for _, a := range alerts {
		bundle.Objects = append(bundle.Objects, e.convertToSTIX(a, now))
	}

	jsonData, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal STIX bundle: %w", err)
	}

	return string(jsonData), nil
}

func (e *STIXExporter) identity(now string) STIXObject {
	return STIXObject{
		Type:          "identity",
		SpecVersion:   "2.1",
		ID:            identityID,
		Created:       now,
		Modified:      now,
		Name:          "FLAME Project",
		IdentityClass: "organization",
		Description:   "Fraud Lifecycle Attack Map & Encyclopedia",
		ExternalReferences: []ExternalReference{
			{SourceName: "FLAME GitHub", URL: projectURL},
		},
	}
}

func (e *STIXExporter) convertToSTIX(a domain.RegulatoryAlert, now string) STIXObject {
	published := now
	if t, ok := a.Date.Time(); ok {
		published = t.UTC().Format(time.RFC3339)
	}

	labels := []string{string(a.Severity)}
	if a.Category != "" {
		labels = append(labels, a.Category)
	}

	return STIXObject{
		Type:        "report",
		SpecVersion: "2.1",
		ID:          stixID("report", fmt.Sprintf("flame-alert-%s-%s", a.Source, a.AlertID)),
		Created:     now,
		Modified:    now,
		CreatedBy:   identityID,
		Name:        a.Title,
		Description: a.Summary,
		Published:   published,
		ReportTypes: []string{"threat-report"},
		ObjectRefs:  []string{identityID},
		Confidence:  calculateConfidence(a),
		Labels:      labels,
		ExternalReferences: []ExternalReference{
			{SourceName: a.Source, URL: a.URL, ExternalID: a.AlertID},
		},
		ThreatPaths: a.MappedTPIDs,
	}
}

// STIX 2.1 data structures

type STIXBundle struct {
	Type    string       `json:"type"`
	ID      string       `json:"id"`
	Objects []STIXObject `json:"objects"`
}

type STIXObject struct {
	Type               string              `json:"type"`
	SpecVersion        string              `json:"spec_version"`
	ID                 string              `json:"id"`
	Created            string              `json:"created"`
	Modified           string              `json:"modified"`
	CreatedBy          string              `json:"created_by_ref,omitempty"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	IdentityClass      string              `json:"identity_class,omitempty"`
	Published          string              `json:"published,omitempty"`
	ReportTypes        []string            `json:"report_types,omitempty"`
	ObjectRefs         []string            `json:"object_refs,omitempty"`
	Confidence         int                 `json:"confidence,omitempty"`
	Labels             []string            `json:"labels,omitempty"`
	ExternalReferences []ExternalReference `json:"external_references,omitempty"`
	ThreatPaths        []string            `json:"x_flame_threat_paths,omitempty"`
}

type ExternalReference struct {
	SourceName string `json:"source_name"`
	URL        string `json:"url,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}
