package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities so tiers can be compared. Unknown values rank zero.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// Source names. They double as keys in the source configuration file.
const (
	SourceCFPB   = "cfpb"
	SourceOCC    = "occ"
	SourceSEC    = "sec"
	SourceOFAC   = "ofac"
	SourceFinCEN = "fincen"
	SourceFBIIC3 = "fbi_ic3"
)

type RegulatoryAlert struct {
	Source      string    // Adapter that produced the alert (cfpb, occ, ...)
	AlertID     string    // Stable id, unique within Source
	Title       string    // Human readable headline
	Date        AlertDate // Publication date, structured when parseable
	Category    string    // Upstream category used for TP mapping
	MappedTPIDs []string  // Threat path ids from the category mapping, never nil
	URL         string    // Link back to the upstream record
	Severity    Severity
	Summary     string
}

// CSVColumns is the fixed column order of the alerts file.
var CSVColumns = []string{
	"source",
	"alert_id",
	"title",
	"date",
	"category",
	"mapped_tp_ids",
	"url",
	"severity",
	"summary",
}

// TPIDSeparator joins MappedTPIDs in the flattened row form.
const TPIDSeparator = "|"

// CSVRow flattens the alert in CSVColumns order.
func (a RegulatoryAlert) CSVRow() []string {
	return []string{
		a.Source,
		a.AlertID,
		a.Title,
		a.Date.String(),
		a.Category,
		strings.Join(a.MappedTPIDs, TPIDSeparator),
		a.URL,
		string(a.Severity),
		a.Summary,
	}
}

// AlertFromCSVRow is the inverse of CSVRow. Short rows are padded with
// empty values so a truncated file still yields usable alerts.
func AlertFromCSVRow(row []string) RegulatoryAlert {
	cells := make([]string, len(CSVColumns))
	copy(cells, row)

	tpIDs := []string{}
	if cells[5] != "" {
		tpIDs = strings.Split(cells[5], TPIDSeparator)
	}

	return RegulatoryAlert{
		Source:      cells[0],
		AlertID:     cells[1],
		Title:       cells[2],
		Date:        ParseAlertDate(cells[3]),
		Category:    cells[4],
		MappedTPIDs: tpIDs,
		URL:         cells[6],
		Severity:    Severity(cells[7]),
		Summary:     cells[8],
	}
}

// DigestID builds "<prefix>-<8 hex chars>" from the sha256 of key. Used when
// the upstream record has no id of its own.
func DigestID(prefix, key string) string {
	sum := sha256.Sum256([]byte(key))
	return prefix + "-" + hex.EncodeToString(sum[:])[:8]
}
