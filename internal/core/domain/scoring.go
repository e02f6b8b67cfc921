package domain

// ConfidenceFromSignals grades a mapping by how many independent signals
// produced at least one tactic.
//
// All three signals give high, two give medium, fewer give low.
func ConfidenceFromSignals(active int) Confidence {
	switch {
	case active >= 3:
		return ConfidenceHigh
	case active == 2:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// SeverityForMapping picks the mapped tier when the alert maps to at least
// one threat path. Callers pass mapped >= unmapped.
func SeverityForMapping(tpIDs []string, mapped, unmapped Severity) Severity {
	if len(tpIDs) > 0 {
		return mapped
	}
	return unmapped
}
