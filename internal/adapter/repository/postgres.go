package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS regulatory_alerts (
		source        TEXT NOT NULL,
		alert_id      TEXT NOT NULL,
		title         TEXT NOT NULL,
		alert_date    TEXT NOT NULL DEFAULT '',
		published_on  DATE,
		category      TEXT NOT NULL DEFAULT '',
		mapped_tp_ids TEXT[] NOT NULL DEFAULT '{}',
		url           TEXT NOT NULL DEFAULT '',
		severity      TEXT NOT NULL,
		summary       TEXT NOT NULL DEFAULT '',
		date_ingested TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (source, alert_id)
	)
`

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveBatch upserts alerts keyed on (source, alert_id). A re-ingested alert
// replaces the stored row.
func (r *PostgresRepository) SaveBatch(ctx context.Context, alerts []domain.RegulatoryAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO regulatory_alerts (source, alert_id, title, alert_date, published_on, category, mapped_tp_ids, url, severity, summary, date_ingested)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source, alert_id) DO UPDATE SET
			title         = EXCLUDED.title,
			alert_date    = EXCLUDED.alert_date,
			published_on  = EXCLUDED.published_on,
			category      = EXCLUDED.category,
			mapped_tp_ids = EXCLUDED.mapped_tp_ids,
			url           = EXCLUDED.url,
			severity      = EXCLUDED.severity,
			summary       = EXCLUDED.summary,
			date_ingested = EXCLUDED.date_ingested
	`

	now := time.Now().UTC()
	for _, a := range alerts {
		var published *time.Time
		if t, ok := a.Date.Time(); ok {
			published = &t
		}

		tpIDs := a.MappedTPIDs
		if tpIDs == nil {
			tpIDs = []string{}
		}

		batch.Queue(query,
			a.Source,
			a.AlertID,
			a.Title,
			a.Date.String(),
			published,
			a.Category,
			tpIDs,
			a.URL,
			string(a.Severity),
			a.Summary,
			now,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range alerts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to execute batch: %w", err)
		}
	}

	return nil
}

// CountBySource reports how many alerts are stored per source.
func (r *PostgresRepository) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT source, COUNT(*)
		FROM regulatory_alerts
		GROUP BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[source] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}
