package threatpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ft3"
)

var (
	ErrNoFrontmatter      = errors.New("no yaml frontmatter block")
	ErrInvalidFrontmatter = errors.New("invalid yaml frontmatter")
	ErrUnsafePatch        = errors.New("patched frontmatter does not read back as the new tactics")
)

// Dir holds the threat path documents, relative to the repository root.
const Dir = "ThreatPaths"

// frontmatter is a fenced yaml block wrapping a "---" delimited document.
var frontmatter = regexp.MustCompile("(?s)```ya?ml\\s*\\n---\\s*\\n(.*?)\\n---\\s*\\n```")

type header struct {
	ID            scalar     `yaml:"id"`
	CFPFPhases    stringList `yaml:"cfpf_phases"`
	GroupIBStages stringList `yaml:"groupib_stages"`
	FraudTypes    stringList `yaml:"fraud_types"`
	FT3Tactics    stringList `yaml:"ft3_tactics"`
}

// stringList accepts a YAML sequence of scalars. Any other shape decodes
// as empty.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	*l = stringList{}
	if value.Kind != yaml.SequenceNode {
		return nil
	}
	for _, item := range value.Content {
		if item.Kind == yaml.ScalarNode {
			*l = append(*l, item.Value)
		}
	}
	return nil
}

type scalar string

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag != "!!null" {
		*s = scalar(value.Value)
	}
	return nil
}

// Store reads and patches threat path documents on disk.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// List returns the TP-*.md paths in lexical order.
func (s *Store) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, Dir, "TP-*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list threat paths: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load extracts the mapping inputs from a document's frontmatter. The id
// falls back to the file name without extension.
func (s *Store) Load(path string) (domain.ThreatPath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ThreatPath{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(string(data), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Parse decodes the frontmatter of a document's text.
func Parse(text, fallbackID string) (domain.ThreatPath, error) {
	m := frontmatter.FindStringSubmatch(text)
	if m == nil {
		return domain.ThreatPath{}, ErrNoFrontmatter
	}

	h, err := decodeHeader(m[1])
	if err != nil {
		return domain.ThreatPath{}, err
	}

	id := strings.TrimSpace(string(h.ID))
	if id == "" {
		id = fallbackID
	}

	return domain.ThreatPath{
		ID:            id,
		CFPFPhases:    h.CFPFPhases,
		GroupIBStages: h.GroupIBStages,
		FraudTypes:    h.FraudTypes,
		FT3Tactics:    h.FT3Tactics,
	}, nil
}

func decodeHeader(text string) (header, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return header{}, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return header{}, fmt.Errorf("%w: not a mapping", ErrInvalidFrontmatter)
	}

	var h header
	if err := doc.Content[0].Decode(&h); err != nil {
		return header{}, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	return h, nil
}

// verifyTactics decodes a patched header and checks that ft3_tactics holds
// exactly ids.
func verifyTactics(patched string, ids []string) error {
	h, err := decodeHeader(patched)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafePatch, err)
	}
	if len(h.FT3Tactics) != len(ids) {
		return fmt.Errorf("%w: got %v", ErrUnsafePatch, []string(h.FT3Tactics))
	}
	for i, id := range ids {
		if h.FT3Tactics[i] != id {
			return fmt.Errorf("%w: got %v", ErrUnsafePatch, []string(h.FT3Tactics))
		}
	}
	return nil
}

// ApplyFT3Tactics rewrites the ft3_tactics field inside the document's
// frontmatter. Nothing outside the frontmatter is touched. The file is left
// alone when the field is absent or the patched header would not decode to
// ids.
func (s *Store) ApplyFT3Tactics(path string, ids []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := string(data)

	loc := frontmatter.FindStringSubmatchIndex(text)
	if loc == nil {
		return ErrNoFrontmatter
	}
	// include the newline ending the last header line
	start, end := loc[2], loc[3]+1

	patched, err := ft3.PatchTactics(text[start:end], ids)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if patched == text[start:end] {
		return nil
	}
	if err := verifyTactics(patched, ids); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	out := text[:start] + patched + text[end:]
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
