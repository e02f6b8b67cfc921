package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

var ErrBadHeader = errors.New("unexpected csv header")

// WriteCSV writes the alerts file, creating parent directories. An empty
// alert list still yields the header row.
func WriteCSV(path string, alerts []domain.RegulatoryAlert) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := EncodeCSV(f, alerts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func EncodeCSV(w io.Writer, alerts []domain.RegulatoryAlert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.CSVColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, a := range alerts {
		if err := cw.Write(a.CSVRow()); err != nil {
			return fmt.Errorf("failed to write alert %s: %w", a.AlertID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ReadCSV loads an alerts file written by WriteCSV.
func ReadCSV(path string) ([]domain.RegulatoryAlert, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeCSV(f)
}

func DecodeCSV(r io.Reader) ([]domain.RegulatoryAlert, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []domain.RegulatoryAlert{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if !slices.Equal(header, domain.CSVColumns) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	alerts := []domain.RegulatoryAlert{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		alerts = append(alerts, domain.AlertFromCSVRow(row))
	}
	return alerts, nil
}
