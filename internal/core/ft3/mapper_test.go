package ft3

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

func testCatalog() *Catalog {
	return NewCatalog(
		[]domain.Tactic{
			{ID: "FTA001", Name: "Reconnaissance"},
			{ID: "FTA003", Name: "Initial Access"},
			{ID: "FTA007", Name: "Perform Fraud"},
		},
		[]domain.Technique{
			{ID: "FT001", Name: "Account Takeover", Description: "Adversaries use stolen credential sets to log in", Tactics: domain.TacticLabels{"Initial Access"}},
			{ID: "FT001.001", Name: "Credential Stuffing Takeover", Description: "Password reuse", Tactics: domain.TacticLabels{"Initial Access"}},
			{ID: "FT002", Name: "Wire Transfer Fraud", Description: "Payment redirection", Tactics: domain.TacticLabels{"Perform Fraud"}},
			{ID: "FT003", Name: "Profiling", Description: "Victim research", Tactics: domain.TacticLabels{"Discovery & Profiling"}},
		},
	)
}

func TestMap_PhasesAndKeywords(t *testing.T) {
	m := NewMapper(testCatalog(), DefaultWeights())

	got := m.Map(domain.ThreatPath{
		ID:            "TP-0001",
		CFPFPhases:    []string{"P1", "p2"},
		GroupIBStages: []string{},
		FraudTypes:    []string{"account-takeover"},
	})

	assert.Equal(t, domain.ConfidenceMedium, got.Confidence)
	assert.Equal(t, []string{"FTA001", "FTA002", "FTA003", "FTA004"}, got.Tactics)
	assert.Equal(t, []string{"FT001"}, got.Techniques)
	assert.Equal(t, []string{"FTA003"}, got.Detail.TechniqueImpliedTactics)
	assert.Equal(t, []string{}, got.Detail.GroupIBTactics)
	require.Len(t, got.Detail.TechniqueScores, 1)
	assert.Equal(t, 4.0, got.Detail.TechniqueScores[0].Score)
	assert.Equal(t,
		"Tactics FTA001, FTA002, FTA003, FTA004 from CFPF phases only; "+
			"Top technique matches: FT001 (Account Takeover, score=4); "+
			"Fraud types: account-takeover",
		got.Notes)
}

func TestMap_Confidence(t *testing.T) {
	m := NewMapper(testCatalog(), DefaultWeights())

	tests := []struct {
		name string
		tp   domain.ThreatPath
		want domain.Confidence
	}{
		{"no signals", domain.ThreatPath{}, domain.ConfidenceLow},
		{"phase only", domain.ThreatPath{CFPFPhases: []string{"P5"}}, domain.ConfidenceLow},
		{"phase and stage", domain.ThreatPath{CFPFPhases: []string{"P5"}, GroupIBStages: []string{"Laundering"}}, domain.ConfidenceMedium},
		{
			"all three",
			domain.ThreatPath{CFPFPhases: []string{"P5"}, GroupIBStages: []string{"Laundering"}, FraudTypes: []string{"wire-fraud"}},
			domain.ConfidenceHigh,
		},
		{"unknown codes", domain.ThreatPath{CFPFPhases: []string{"P9"}, GroupIBStages: []string{"laundering"}}, domain.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.tp).Confidence)
		})
	}
}

func TestMap_EmptyItemEncodesEmptyLists(t *testing.T) {
	got := NewMapper(testCatalog(), DefaultWeights()).Map(domain.ThreatPath{ID: "TP-0002"})

	assert.Equal(t, []string{}, got.Tactics)
	assert.Equal(t, []string{}, got.Techniques)
	assert.Equal(t, []domain.TechniqueScore{}, got.Detail.TechniqueScores)
	assert.Equal(t, "", got.Notes)
}

func TestStageTactics(t *testing.T) {
	got := StageTactics([]string{"Initial Access", " Trust Abuse ", "Perform Fraud", "unknown", "initial access"})
	assert.Equal(t, []string{"FTA003", "FTA007"}, got)
}

func TestPhaseTactics(t *testing.T) {
	assert.Equal(t, []string{"FTA007", "FTA009", "FTA010"}, PhaseTactics([]string{" p4 ", "P5", "P5"}))
	assert.Equal(t, []string{}, PhaseTactics(nil))
}

func TestSearchTerms(t *testing.T) {
	got := SearchTerms([]string{"Data-Exfil", " BEC ", ""})
	require.NotEmpty(t, got)
	assert.Equal(t, "data exfil", got[0])
	assert.Contains(t, got, "business email")
	assert.Len(t, got, 1+len(fraudTypeKeywords["bec"]))
}

func TestScoreTechniques(t *testing.T) {
	m := NewMapper(testCatalog(), DefaultWeights())

	t.Run("name outweighs description and terms count once", func(t *testing.T) {
		scored := m.ScoreTechniques([]string{"wire-fraud", "wire-fraud"})
		require.Len(t, scored, 1)
		// wire + transfer in the name, payment in the description
		assert.Equal(t, domain.TechniqueScore{ID: "FT002", Name: "Wire Transfer Fraud", Score: 7}, scored[0])
	})

	t.Run("unknown tag searched literally", func(t *testing.T) {
		scored := m.ScoreTechniques([]string{"Profiling"})
		require.Len(t, scored, 1)
		assert.Equal(t, "FT003", scored[0].ID)
		assert.Equal(t, 3.0, scored[0].Score)
	})

	t.Run("no tags", func(t *testing.T) {
		assert.Empty(t, m.ScoreTechniques(nil))
	})
}

func TestFilterTechniques(t *testing.T) {
	t.Run("significant sub-technique replaces parent", func(t *testing.T) {
		m := NewMapper(testCatalog(), DefaultWeights())
		got := m.Map(domain.ThreatPath{FraudTypes: []string{"credential-stuffing"}})
		assert.Equal(t, []string{"FT001.001"}, got.Techniques)
	})

	t.Run("sub-technique below threshold is dropped", func(t *testing.T) {
		w := DefaultWeights()
		w.SubTechniqueThreshold = 10
		got := NewMapper(testCatalog(), w).Map(domain.ThreatPath{FraudTypes: []string{"credential-stuffing"}})
		assert.Equal(t, []string{"FT001"}, got.Techniques)
	})

	t.Run("cap", func(t *testing.T) {
		w := DefaultWeights()
		w.MaxTechniques = 1
		got := NewMapper(testCatalog(), w).Map(domain.ThreatPath{FraudTypes: []string{"account-takeover", "wire-fraud"}})
		assert.Equal(t, []string{"FT002"}, got.Techniques)
		assert.Equal(t, []string{"FTA007"}, got.Tactics)
	})

	t.Run("default cap keeps ten parents", func(t *testing.T) {
		var techniques []domain.Technique
		for i := 1; i <= 12; i++ {
			techniques = append(techniques, domain.Technique{
				ID:      fmt.Sprintf("FT1%02d", i),
				Name:    fmt.Sprintf("Skimmer variant %d", i),
				Tactics: domain.TacticLabels{"Perform Fraud"},
			})
		}
		c := NewCatalog([]domain.Tactic{{ID: "FTA007", Name: "Perform Fraud"}}, techniques)

		got := NewMapper(c, DefaultWeights()).Map(domain.ThreatPath{FraudTypes: []string{"skimmer"}})
		require.Len(t, got.Techniques, 10)
		assert.Equal(t, "FT101", got.Techniques[0])
		assert.Equal(t, "FT110", got.Techniques[9])
		assert.Len(t, got.Detail.TechniqueScores, 10)
	})
}

func TestNotes_Partition(t *testing.T) {
	got := NewMapper(testCatalog(), DefaultWeights()).Map(domain.ThreatPath{
		CFPFPhases:    []string{"P1"},
		GroupIBStages: []string{"Reconnaissance", "Execution"},
	})
	assert.Equal(t,
		"Tactics FTA001 confirmed by both CFPF and Group-IB signals; "+
			"Tactics FTA002 from CFPF phases only; "+
			"Tactics FTA004 from Group-IB stages only",
		got.Notes)
}

func TestCatalog(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, []string{"Discovery & Profiling"}, c.UnmappedTacticNames())

	id, ok := c.TacticID("Perform Fraud")
	assert.True(t, ok)
	assert.Equal(t, "FTA007", id)

	_, ok = c.Technique("FT999")
	assert.False(t, ok)
}
