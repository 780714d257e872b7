package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parse reads items from r. The format is chosen by the extension of name;
// for anything else JSON is tried first and CSV second.
func Parse(name string, r io.Reader) ([]*Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return ParseJSON(bytes.NewReader(data))
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	}

	items, jsonErr := ParseJSON(bytes.NewReader(data))
	if jsonErr == nil {
		return items, nil
	}
	items, csvErr := ParseCSV(bytes.NewReader(data))
	if csvErr == nil {
		return items, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, errors.Join(jsonErr, csvErr))
}

// ParseJSON reads a single export object or an array of them.
func ParseJSON(r io.Reader) ([]*Item, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	var elements []json.RawMessage
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	} else {
		elements = []json.RawMessage{raw}
	}

	items := make([]*Item, 0, len(elements))
	for i, el := range elements {
		var ji jsonItem
		if err := json.Unmarshal(el, &ji); err != nil {
			// Kept as an empty row so validation reports it by position.
			items = append(items, &Item{Row: i + 1})
			continue
		}
		items = append(items, ji.item(i+1))
	}
	return items, nil
}

// ParseCSV reads a CSV export with a header row. List columns are separated
// by semicolons and the entities column holds a JSON object.
func ParseCSV(r io.Reader) ([]*Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) < 2 {
		return []*Item{}, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}

	items := make([]*Item, 0, len(records)-1)
	for i, record := range records[1:] {
		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		items = append(items, &Item{
			Row:           i + 1,
			RawTranscript: firstNonEmpty(get("rawTranscript"), get("cleanedText"), get("text")),
			CleanedText:   get("cleanedText"),
			Summary:       get("summary"),
			Type:          get("type"),
			Priority:      parseLooseNumber(get("priority")),
			Categories:    splitList(get("categories")),
			Sentiment:     parseLooseNumber(get("sentiment")),
			Entities:      parseEntities([]byte(get("entities"))),
			ActionItems:   splitList(get("actionItems")),
			Deadline:      get("deadline"),
			Language:      get("language"),
			Source:        get("source"),
		})
	}
	return items, nil
}
