package domain

// SourceTotal is the number of alerts one source contributed to a run.
type SourceTotal struct {
	Source string
	Alerts int
}

// IngestionSummary is the merged output of one ingestion run, with
// per-source totals in run order.
type IngestionSummary struct {
	Sources []SourceTotal
	Alerts  []RegulatoryAlert
}
