package ft3

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// Mapper suggests FT3 tactics and techniques for threat paths from three
// signals: CFPF phase alignment, Group-IB stage alignment and fraud type
// keyword matching against the technique catalog.
type Mapper struct {
	catalog *Catalog
	weights Weights
}

func NewMapper(catalog *Catalog, weights Weights) *Mapper {
	return &Mapper{catalog: catalog, weights: weights}
}

func (m *Mapper) Weights() Weights {
	return m.weights
}

// Map computes the suggestion for one threat path. It is a pure function of
// the threat path, the catalog and the weights.
func (m *Mapper) Map(tp domain.ThreatPath) domain.MappingSuggestion {
	phase := PhaseTactics(tp.CFPFPhases)
	stage := StageTactics(tp.GroupIBStages)

	top := m.filterTechniques(m.ScoreTechniques(tp.FraudTypes))
	implied := m.impliedTactics(top)

	all := union(phase, stage, implied)

	active := 0
	for _, signal := range []int{len(phase), len(stage), len(top)} {
		if signal > 0 {
			active++
		}
	}

	techniques := make([]string, 0, len(top))
	for _, t := range top {
		techniques = append(techniques, t.ID)
	}

	return domain.MappingSuggestion{
		Tactics:    all,
		Techniques: techniques,
		Confidence: domain.ConfidenceFromSignals(active),
		Notes:      notes(phase, stage, top, tp.FraudTypes),
		Detail: domain.MappingDetail{
			CFPFTactics:             phase,
			GroupIBTactics:          stage,
			TechniqueImpliedTactics: implied,
			TechniqueScores:         top,
		},
	}
}

// PhaseTactics returns the sorted FT3 tactics aligned with the given CFPF
// phase codes. Codes are matched case-insensitively.
func PhaseTactics(phases []string) []string {
	set := map[string]bool{}
	for _, p := range phases {
		for _, id := range phaseTactics[strings.ToUpper(strings.TrimSpace(p))] {
			set[id] = true
		}
	}
	return sortedKeys(set)
}

// StageTactics returns the sorted FT3 tactics aligned with the given
// Group-IB stage names. Names must match exactly after trimming.
func StageTactics(stages []string) []string {
	set := map[string]bool{}
	for _, s := range stages {
		if id, ok := stageTactic[strings.TrimSpace(s)]; ok {
			set[id] = true
		}
	}
	return sortedKeys(set)
}

// SearchTerms expands fraud type tags into keyword search terms. Unknown
// tags are searched for literally with hyphens read as spaces.
func SearchTerms(fraudTypes []string) []string {
	var terms []string
	for _, ft := range fraudTypes {
		key := strings.ToLower(strings.TrimSpace(ft))
		if key == "" {
			continue
		}
		if kw, ok := fraudTypeKeywords[key]; ok {
			terms = append(terms, kw...)
			continue
		}
		terms = append(terms, strings.ReplaceAll(key, "-", " "))
	}
	return terms
}

// ScoreTechniques ranks every catalog technique against the fraud type
// terms, highest score first. Each distinct term counts once per technique.
// Ties keep catalog order.
func (m *Mapper) ScoreTechniques(fraudTypes []string) []domain.TechniqueScore {
	terms := SearchTerms(fraudTypes)
	scored := []domain.TechniqueScore{}
	if len(terms) == 0 {
		return scored
	}

	for _, tech := range m.catalog.Techniques() {
		name := strings.ToLower(tech.Name)
		searchable := name + " " + strings.ToLower(tech.Description)

		score := 0.0
		matched := map[string]bool{}
		for _, term := range terms {
			term = strings.ToLower(term)
			if matched[term] {
				continue
			}
			switch {
			case strings.Contains(name, term):
				score += m.weights.NameMatch
				matched[term] = true
			case strings.Contains(searchable, term):
				score += m.weights.DescriptionMatch
				matched[term] = true
			}
		}

		if score > 0 {
			scored = append(scored, domain.TechniqueScore{ID: tech.ID, Name: tech.Name, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// filterTechniques keeps one entry per parent technique. A sub-technique
// only stands in for its parent when it clears the significance threshold.
func (m *Mapper) filterTechniques(scored []domain.TechniqueScore) []domain.TechniqueScore {
	top := []domain.TechniqueScore{}
	seen := map[string]bool{}
	for _, t := range scored {
		parent := t.ParentID()
		if !seen[parent] && (!t.IsSubTechnique() || t.Score >= m.weights.SubTechniqueThreshold) {
			top = append(top, t)
			seen[parent] = true
		}
		if m.weights.MaxTechniques > 0 && len(top) >= m.weights.MaxTechniques {
			break
		}
	}
	return top
}

func (m *Mapper) impliedTactics(top []domain.TechniqueScore) []string {
	set := map[string]bool{}
	for _, t := range top {
		tech, ok := m.catalog.Technique(t.ID)
		if !ok {
			continue
		}
		for _, name := range tech.Tactics {
			if id, ok := m.catalog.TacticID(name); ok {
				set[id] = true
			}
		}
	}
	return sortedKeys(set)
}

func notes(phase, stage []string, top []domain.TechniqueScore, fraudTypes []string) string {
	inStage := toSet(stage)
	inPhase := toSet(phase)

	var both, phaseOnly, stageOnly []string
	for _, id := range phase {
		if inStage[id] {
			both = append(both, id)
		} else {
			phaseOnly = append(phaseOnly, id)
		}
	}
	for _, id := range stage {
		if !inPhase[id] {
			stageOnly = append(stageOnly, id)
		}
	}

	var parts []string
	if len(both) > 0 {
		parts = append(parts, fmt.Sprintf("Tactics %s confirmed by both CFPF and Group-IB signals", strings.Join(both, ", ")))
	}
	if len(phaseOnly) > 0 {
		parts = append(parts, fmt.Sprintf("Tactics %s from CFPF phases only", strings.Join(phaseOnly, ", ")))
	}
	if len(stageOnly) > 0 {
		parts = append(parts, fmt.Sprintf("Tactics %s from Group-IB stages only", strings.Join(stageOnly, ", ")))
	}

	if len(top) > 0 {
		n := min(3, len(top))
		matches := make([]string, 0, n)
		for _, t := range top[:n] {
			matches = append(matches, fmt.Sprintf("%s (%s, score=%.0f)", t.ID, t.Name, t.Score))
		}
		parts = append(parts, "Top technique matches: "+strings.Join(matches, ", "))
	}

	if len(fraudTypes) > 0 {
		parts = append(parts, "Fraud types: "+strings.Join(fraudTypes, ", "))
	}

	return strings.Join(parts, "; ")
}

func union(sets ...[]string) []string {
	all := map[string]bool{}
	for _, s := range sets {
		for _, id := range s {
			all[id] = true
		}
	}
	return sortedKeys(all)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// sortedKeys never returns nil so empty sets encode as [] in JSON.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
