package middleware

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"sort"

	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// localizationEntry is one row of a LocalizationTable, keyed by the
// well-known Key/Source/Context/Example header columns plus an arbitrary
// set of locale columns (anything else in the header row).
type localizationEntry struct {
	Key     string            `json:"key,omitempty"`
	Context string            `json:"context,omitempty"`
	Example string            `json:"example,omitempty"`
	Source  string            `json:"source,omitempty"`
	Values  map[string]string `json:"values"`
}

// readCSV parses a localization spreadsheet into a LocalizationTable
// snapshot: the header row's Key/Source/Context/Example columns populate
// their matching entry fields, every other header names a locale whose
// column values land in Values, and the resulting entries are serialized
// as a JSON array into the Contents property. A header row with neither a
// Key nor a Source column is rejected with a *ParseError.
func (d *Dispatcher) readCSV(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	text, err := backend.ReadToString(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}

	snap := snapshot.New()
	snap.SetClass("LocalizationTable")

	text = vfs.NormalizeNewlines(text)
	if text == "" {
		snap.Properties["Contents"] = value.String("[]")
		return snap, nil
	}

	reader := csv.NewReader(bytes.NewReader([]byte(text)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	hasKeyColumn := false
	for _, h := range headers {
		if h == "Key" || h == "Source" {
			hasKeyColumn = true
		}
	}
	if !hasKeyColumn {
		return snapshot.Snapshot{}, &ParseError{Path: p, Kind: "CSV", Excerpt: excerpt(text), Err: errors.New("header row has neither a Key nor a Source column")}
	}

	var entries []localizationEntry
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}

		entry := localizationEntry{Values: map[string]string{}}
		for i, field := range record {
			if field == "" || i >= len(headers) {
				continue
			}
			switch headers[i] {
			case "Key":
				entry.Key = field
			case "Source":
				entry.Source = field
			case "Context":
				entry.Context = field
			case "Example":
				entry.Example = field
			default:
				entry.Values[headers[i]] = field
			}
		}

		if entry.Key != "" || entry.Source != "" {
			entries = append(entries, entry)
		}
	}

	contents, err := json.Marshal(entries)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap.Properties["Contents"] = value.String(string(contents))
	return snap, nil
}

// WriteCSV reconstructs localization spreadsheet text from a
// LocalizationTable's Contents property (the reverse of readCSV): the
// fixed Key/Source/Context/Example columns come first, followed by every
// locale column observed across all entries, sorted for a stable column
// order.
func WriteCSV(contents string) ([]byte, error) {
	var entries []localizationEntry
	if contents != "" {
		if err := json.Unmarshal([]byte(contents), &entries); err != nil {
			return nil, err
		}
	}

	locales := map[string]struct{}{}
	for _, e := range entries {
		for locale := range e.Values {
			locales[locale] = struct{}{}
		}
	}
	localeNames := make([]string, 0, len(locales))
	for locale := range locales {
		localeNames = append(localeNames, locale)
	}
	sort.Strings(localeNames)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := append([]string{"Key", "Source", "Context", "Example"}, localeNames...)
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		record := []string{e.Key, e.Source, e.Context, e.Example}
		for _, locale := range localeNames {
			record = append(record, e.Values[locale])
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
