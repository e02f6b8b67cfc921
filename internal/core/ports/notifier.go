package ports

import (
	"context"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// Notifier defines the interface for sending notifications to external systems
type Notifier interface {
	// NotifyIngestion reports the outcome of an ingestion run
	NotifyIngestion(ctx context.Context, summary domain.IngestionSummary) error
}
