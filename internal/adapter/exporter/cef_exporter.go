package exporter

import (
	"fmt"
	"strings"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// CEFExporter exports regulatory alerts in Common Event Format for SIEM ingestion
type CEFExporter struct{}

func NewCEFExporter() *CEFExporter {
	return &CEFExporter{}
}

// Export renders one CEF line per alert.
// Format: CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
func (e *CEFExporter) Export(alerts []domain.RegulatoryAlert) string {
	var output strings.Builder
	for _, a := range alerts {
		output.WriteString(e.formatCEF(a))
		output.WriteString("\n")
	}
	return output.String()
}

func (e *CEFExporter) formatCEF(a domain.RegulatoryAlert) string {
	vendor := "FLAME"
	product := "RegulatoryIntel"
	version := "1.0"

	extensions := []string{
		fmt.Sprintf("externalId=%s", escapeField(a.AlertID)),
		fmt.Sprintf("request=%s", escapeField(a.URL)),
		fmt.Sprintf("cat=%s", escapeField(a.Category)),
		"cn1Label=ConfidenceScore",
		fmt.Sprintf("cn1=%d", calculateConfidence(a)),
		"cs1Label=ThreatPaths",
		fmt.Sprintf("cs1=%s", escapeField(strings.Join(a.MappedTPIDs, ","))),
		"cs2Label=Source",
		fmt.Sprintf("cs2=%s", escapeField(a.Source)),
	}
	if a.Summary != "" {
		extensions = append(extensions, fmt.Sprintf("msg=%s", escapeField(a.Summary)))
	}
	if t, ok := a.Date.Time(); ok {
		extensions = append(extensions, fmt.Sprintf("rt=%d", t.Unix()*1000)) // milliseconds
	}

	return fmt.Sprintf("CEF:0|%s|%s|%s|%s|%s|%d|%s",
		vendor, product, version,
		escapeHeader(a.Source), escapeHeader(a.Title), cefSeverity(a.Severity),
		strings.Join(extensions, " "))
}

// cefSeverity maps alert severity onto the 0-10 CEF scale.
func cefSeverity(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 9
	case domain.SeverityMedium:
		return 6
	case domain.SeverityLow:
		return 3
	}
	return 0
}

func escapeHeader(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func escapeField(s string) string {
	// Escape special characters in CEF extension values
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "=", "\\=")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// calculateConfidence scores an alert from its severity tier and whether
// it maps to any threat path.
func calculateConfidence(a domain.RegulatoryAlert) int {
	confidence := 50 // Base confidence

	switch a.Severity {
	case domain.SeverityHigh:
		confidence += 30
	case domain.SeverityMedium:
		confidence += 15
	}

	if len(a.MappedTPIDs) > 0 {
		confidence += 10
	}

	if len(a.MappedTPIDs) > 3 {
		confidence += 5
	}

	// Cap at 100
	if confidence > 100 {
		confidence = 100
	}

	return confidence
}
