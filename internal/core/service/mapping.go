package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ft3"
	"github.com/elchacal801/flame-fraud/internal/core/ports"
)

var ErrNoThreatPaths = errors.New("no threat path files found")

// MappedItem is one threat path file and the suggestion computed for it.
type MappedItem struct {
	Path       string
	ID         string
	Suggestion domain.MappingSuggestion
}

type MappingReport struct {
	Items   []MappedItem
	Skipped []string
}

// Suggestions keys the report by threat path id in file order. A repeated
// id keeps its first position and its last suggestion.
func (r *MappingReport) Suggestions() ([]string, map[string]domain.MappingSuggestion) {
	order := []string{}
	byID := map[string]domain.MappingSuggestion{}
	for _, it := range r.Items {
		if _, seen := byID[it.ID]; !seen {
			order = append(order, it.ID)
		}
		byID[it.ID] = it.Suggestion
	}
	return order, byID
}

// Counts tallies suggestions by confidence, one per distinct id.
func (r *MappingReport) Counts() map[domain.Confidence]int {
	counts := map[domain.Confidence]int{
		domain.ConfidenceHigh:   0,
		domain.ConfidenceMedium: 0,
		domain.ConfidenceLow:    0,
	}
	_, byID := r.Suggestions()
	for _, s := range byID {
		counts[s.Confidence]++
	}
	return counts
}

func (r *MappingReport) Total() int {
	order, _ := r.Suggestions()
	return len(order)
}

func (r *MappingReport) MediumOrHigh() int {
	c := r.Counts()
	return c[domain.ConfidenceHigh] + c[domain.ConfidenceMedium]
}

type ApplyResult struct {
	Applied int
	Failed  int
}

// MappingService runs the FT3 mapper over every threat path in a store.
type MappingService struct {
	store  ports.ThreatPathStore
	mapper *ft3.Mapper
	logger zerolog.Logger
}

func NewMappingService(store ports.ThreatPathStore, mapper *ft3.Mapper, logger zerolog.Logger) *MappingService {
	return &MappingService{
		store:  store,
		mapper: mapper,
		logger: logger.With().Str("component", "ft3-mapper").Logger(),
	}
}

// MapAll computes suggestions without touching any file. Items whose
// header cannot be read are skipped with a warning.
func (s *MappingService) MapAll(ctx context.Context) (*MappingReport, error) {
	paths, err := s.store.List()
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("files", len(paths)).Msg("found threat path files")
	if len(paths) == 0 {
		return nil, ErrNoThreatPaths
	}

	report := &MappingReport{Items: []MappedItem{}, Skipped: []string{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tp, err := s.store.Load(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("skipping threat path: no valid frontmatter")
			report.Skipped = append(report.Skipped, path)
			continue
		}

		suggestion := s.mapper.Map(tp)
		report.Items = append(report.Items, MappedItem{Path: path, ID: tp.ID, Suggestion: suggestion})

		more := ""
		techniques := suggestion.Techniques
		if len(techniques) > 5 {
			techniques = techniques[:5]
			more = "..."
		}
		s.logger.Info().
			Str("tp", tp.ID).
			Str("confidence", string(suggestion.Confidence)).
			Str("tactics", strings.Join(suggestion.Tactics, ", ")).
			Str("techniques", strings.Join(techniques, ", ")+more).
			Msg("mapped threat path")
	}

	return report, nil
}

// Apply writes each item's suggested tactics into its header. A file
// without an ft3_tactics field is left untouched and counted as failed.
func (s *MappingService) Apply(ctx context.Context, report *MappingReport) ApplyResult {
	var res ApplyResult
	for _, it := range report.Items {
		if ctx.Err() != nil {
			break
		}

		if err := s.store.ApplyFT3Tactics(it.Path, it.Suggestion.Tactics); err != nil {
			s.logger.Warn().Err(err).Str("tp", it.ID).Msg("failed to apply ft3 tactics")
			res.Failed++
			continue
		}

		s.logger.Info().Str("tp", it.ID).Strs("tactics", it.Suggestion.Tactics).Msg("applied ft3 tactics")
		res.Applied++
	}
	return res
}
