package bundle

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser reads a table with a header row holding "name" and "content"
// columns; each data row is one source.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	nameCol, contentCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			nameCol = i
		case "content":
			contentCol = i
		}
	}
	if nameCol < 0 || contentCol < 0 {
		return nil, fmt.Errorf("csv header must have name and content columns, got %v", records[0])
	}

	var entries []Entry
	for i, row := range records[1:] {
		if nameCol >= len(row) || contentCol >= len(row) {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", i+2, max(nameCol, contentCol)+1, len(row))
		}
		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name, Content: row[contentCol]})
	}
	return entries, nil
}
