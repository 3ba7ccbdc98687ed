package postcode

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names of the source dataset.
const (
	ColumnPostcode        = "Postcode"
	ColumnEffectiveTo     = "EffectiveTo"
	ColumnArea            = "Area"
	ColumnSourceOfFunding = "SourceOfFunding"
)

var ErrMissingColumn = errors.New("missing column")

// BuildStats counts what happened to the source rows.
type BuildStats struct {
	Rows    int `json:"rows"`
	Current int `json:"current"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
}

// Label formats an authority label as "{Area} ({SourceOfFunding})".
func Label(area, source string) string {
	return fmt.Sprintf("%s (%s)", area, source)
}

// BuildMap reads CSV with a header row and returns the current mapping.
// Rows with a non-empty EffectiveTo have ended and are excluded. When a
// postcode repeats, the later current row wins.
func BuildMap(r io.Reader) (map[string]string, BuildStats, error) {
	var stats BuildStats
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	for _, col := range []string{ColumnPostcode, ColumnEffectiveTo, ColumnArea, ColumnSourceOfFunding} {
		if _, ok := idx[col]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	field := func(row []string, col string) string {
		if i := idx[col]; i < len(row) {
			return row[i]
		}
		return ""
	}

	out := make(map[string]string)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		if field(row, ColumnEffectiveTo) != "" {
			stats.Expired++
			continue
		}
		key := Normalize(field(row, ColumnPostcode))
		if key == "" {
			stats.Skipped++
			continue
		}
		out[key] = Label(field(row, ColumnArea), field(row, ColumnSourceOfFunding))
		stats.Current++
	}
	return out, stats, nil
}

// LoadJSON reads a flat {"POSTCODE": "label"} mapping.
func LoadJSON(r io.Reader) (map[string]string, error) {
	var m map[string]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode postcode map: %w", err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// WriteJSON writes the mapping with two-space indentation and sorted keys.
func WriteJSON(w io.Writer, m map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
