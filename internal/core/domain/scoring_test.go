package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceFromSignals(t *testing.T) {
	assert.Equal(t, ConfidenceLow, ConfidenceFromSignals(0))
	assert.Equal(t, ConfidenceLow, ConfidenceFromSignals(1))
	assert.Equal(t, ConfidenceMedium, ConfidenceFromSignals(2))
	assert.Equal(t, ConfidenceHigh, ConfidenceFromSignals(3))
}

func TestSeverityForMapping(t *testing.T) {
	assert.Equal(t, SeverityHigh, SeverityForMapping([]string{"TP-0001"}, SeverityHigh, SeverityMedium))
	assert.Equal(t, SeverityMedium, SeverityForMapping([]string{}, SeverityHigh, SeverityMedium))
	assert.Equal(t, SeverityMedium, SeverityForMapping(nil, SeverityHigh, SeverityMedium))
}

func TestTechniqueUnmarshal_TacticLabels(t *testing.T) {
	var techs []Technique
	data := `[
		{"id": "FT001", "name": "Phishing", "description": "d", "tactics": "Initial Access"},
		{"id": "FT002.001", "name": "Voice", "tactics": ["Initial Access", "Execution"]},
		{"id": "FT003", "name": "None", "tactics": null}
	]`
	require.NoError(t, json.Unmarshal([]byte(data), &techs))

	assert.Equal(t, TacticLabels{"Initial Access"}, techs[0].Tactics)
	assert.Equal(t, TacticLabels{"Initial Access", "Execution"}, techs[1].Tactics)
	assert.Empty(t, techs[2].Tactics)
}

func TestTechniqueScore_Parent(t *testing.T) {
	tests := []struct {
		id     string
		parent string
		sub    bool
	}{
		{"FT001", "FT001", false},
		{"FT001.002", "FT001", true},
		{"FT001.002.003", "FT001", true},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ts := TechniqueScore{ID: tt.id}
			assert.Equal(t, tt.parent, ts.ParentID())
			assert.Equal(t, tt.sub, ts.IsSubTechnique())
		})
	}
}
