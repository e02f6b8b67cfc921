package provider

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// defaultFontSize is assumed when a text run reports no size.
const defaultFontSize = 10.0

func openPDF(data []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return r, nil
}

// pdfText returns the plain text of every page joined by newlines.
func pdfText(data []byte) (string, error) {
	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range sortRows(rows) {
			lines = append(lines, strings.Join(rowCells(row.Content), "    "))
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	return strings.Join(pages, "\n"), nil
}

// pdfTables groups consecutive rows that split into two or more cells into
// tables, page by page.
func pdfTables(data []byte) ([][][]string, error) {
	r, err := openPDF(data)
	if err != nil {
		return nil, err
	}

	var tables [][][]string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}

		var current [][]string
		for _, row := range sortRows(rows) {
			cells := rowCells(row.Content)
			if len(cells) >= 2 {
				current = append(current, cells)
				continue
			}
			if len(current) > 0 {
				tables = append(tables, current)
				current = nil
			}
		}
		if len(current) > 0 {
			tables = append(tables, current)
		}
	}

	return tables, nil
}

// sortRows orders rows top to bottom. PDF y coordinates grow upwards.
func sortRows(rows pdf.Rows) pdf.Rows {
	out := make(pdf.Rows, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position > out[j].Position
	})
	return out
}

// rowCells splits one row of text runs into cells. Runs closer than 1.5
// font sizes belong to the same cell. Runs without a width are assumed to
// be half a font size wide per rune.
func rowCells(texts pdf.TextHorizontal) []string {
	runs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			runs = append(runs, t)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var cells []string
	var cell strings.Builder
	end := 0.0

	flush := func() {
		if v := collapseSpace(cell.String()); v != "" {
			cells = append(cells, v)
		}
		cell.Reset()
	}

	for i, t := range runs {
		size := t.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		if i > 0 {
			gap := t.X - end
			switch {
			case gap > 1.5*size:
				flush()
			case gap > 0.25*size:
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(t.S)

		width := t.W
		if width <= 0 {
			width = 0.5 * size * float64(utf8.RuneCountInString(t.S))
		}
		end = t.X + width
	}
	flush()

	return cells
}

// digitsOnly strips everything but ASCII digits.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
