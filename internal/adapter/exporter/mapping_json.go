package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

// EncodeMappingJSON renders suggestions as one JSON object keyed by threat
// path id. Keys follow order rather than Go's sorted map order.
func EncodeMappingJSON(order []string, suggestions map[string]domain.MappingSuggestion) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("  ", "  ")

	out := bytes.NewBufferString("{")
	written := 0
	for _, id := range order {
		s, ok := suggestions[id]
		if !ok {
			continue
		}

		buf.Reset()
		if err := enc.Encode(id); err != nil {
			return nil, fmt.Errorf("failed to encode id %s: %w", id, err)
		}
		key := bytes.TrimRight(buf.Bytes(), "\n")
		if written > 0 {
			out.WriteString(",")
		}
		out.WriteString("\n  ")
		out.Write(key)
		out.WriteString(": ")

		buf.Reset()
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("failed to encode suggestion %s: %w", id, err)
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
		written++
	}
	if written > 0 {
		out.WriteString("\n")
	}
	out.WriteString("}\n")
	return out.Bytes(), nil
}

// WriteMappingJSON writes the suggestions file, creating parent directories.
func WriteMappingJSON(path string, order []string, suggestions map[string]domain.MappingSuggestion) error {
	data, err := EncodeMappingJSON(order, suggestions)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
