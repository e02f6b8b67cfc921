package ports

import (
	"context"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// AlertSource is what the collection orchestrator sees of a regulatory
// adapter. Run never fails; a broken source yields no alerts.
type AlertSource interface {
	Name() string
	Run(ctx context.Context) []domain.RegulatoryAlert
}

// AlertRepository persists alerts keyed on (source, alert_id). Saving an
// existing alert replaces it.
type AlertRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveBatch(ctx context.Context, alerts []domain.RegulatoryAlert) error
	CountBySource(ctx context.Context) (map[string]int, error)
}

// ThreatPathStore reads threat path headers and patches their ft3_tactics
// field.
type ThreatPathStore interface {
	List() ([]string, error)
	Load(path string) (domain.ThreatPath, error)
	ApplyFT3Tactics(path string, tacticIDs []string) error
}
