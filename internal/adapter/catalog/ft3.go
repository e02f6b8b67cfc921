package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
	"github.com/elchacal801/flame-fraud/internal/core/ft3"
)

var ErrCatalogNotFound = errors.New("ft3 catalog not found")

const (
	TacticsFile    = "FT3_Tactics.json"
	TechniquesFile = "FT3_Techniques.json"
)

// Dir is the catalog location relative to the repository root.
func Dir(root string) string {
	return filepath.Join(root, "data", "ft3")
}

// LoadFT3 reads the vendored FT3 tactics and techniques under root.
func LoadFT3(root string) (*ft3.Catalog, error) {
	var tactics []domain.Tactic
	if err := readJSON(filepath.Join(Dir(root), TacticsFile), &tactics); err != nil {
		return nil, err
	}

	var techniques []domain.Technique
	if err := readJSON(filepath.Join(Dir(root), TechniquesFile), &techniques); err != nil {
		return nil, err
	}

	return ft3.NewCatalog(tactics, techniques), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
