package domain

import (
	"encoding/json"
	"strings"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Tactic is one row of the FT3 tactics catalog.
type Tactic struct {
	ID   string `json:"ID"`
	Name string `json:"name"`
}

// Technique is one row of the FT3 techniques catalog.
type Technique struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Tactics     TacticLabels `json:"tactics"`
}

// TacticLabels holds the tactic names a technique belongs to. The catalog
// stores either a single name or a list of names.
type TacticLabels []string

func (l *TacticLabels) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = nil
		if one = strings.TrimSpace(one); one != "" {
			*l = TacticLabels{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		// null or anything else: no tactics
		*l = nil
		return nil
	}
	*l = many
	return nil
}

// ThreatPath is the part of a threat path header the mapper reads.
type ThreatPath struct {
	ID            string
	CFPFPhases    []string
	GroupIBStages []string
	FraudTypes    []string
	FT3Tactics    []string
}

type TechniqueScore struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ParentID is the technique id before the first dot. Sub-techniques carry a
// dot in their id (FT001.002).
func (t TechniqueScore) ParentID() string {
	parent, _, _ := strings.Cut(t.ID, ".")
	return parent
}

func (t TechniqueScore) IsSubTechnique() bool {
	return strings.Contains(t.ID, ".")
}

type MappingDetail struct {
	CFPFTactics             []string         `json:"cfpf_tactics"`
	GroupIBTactics          []string         `json:"groupib_tactics"`
	TechniqueImpliedTactics []string         `json:"technique_implied_tactics"`
	TechniqueScores         []TechniqueScore `json:"technique_scores"`
}

// MappingSuggestion is the mapper's output for one threat path.
type MappingSuggestion struct {
	Tactics    []string      `json:"suggested_ft3_tactics"`
	Techniques []string      `json:"suggested_ft3_techniques"`
	Confidence Confidence    `json:"confidence"`
	Notes      string        `json:"notes"`
	Detail     MappingDetail `json:"_detail"`
}
