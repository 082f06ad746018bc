package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	domexp "github.com/kailas-cloud/promemo/internal/domain/export"
)

// renderCSV writes records as CSV. The header is the key sequence of the
// first record and every row renders that same sequence; values missing from
// a later record come out empty. Every cell is quoted, internal quotes
// doubled.
func renderCSV(records []domexp.Record) string {
	if len(records) == 0 {
		return ""
	}

	keys := records[0].Keys
	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(c, `"`, `""`))
			sb.WriteByte('"')
		}
		sb.WriteByte('\n')
	}

	writeRow(keys)
	row := make([]string, len(keys))
	for _, r := range records {
		for i, k := range keys {
			row[i] = cell(r.Values[k])
		}
		writeRow(row)
	}
	return sb.String()
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// parseCSVRows reads a CSV payload into header-keyed rows.
func parseCSVRows(payload []byte) ([]map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(payload))
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) < 2 {
		return nil, nil
	}

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		row := make(map[string]string, len(header))
		for i, k := range header {
			if i < len(rec) {
				row[k] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseJSONRows reads a JSON array payload into string-valued rows.
func parseJSONRows(payload []byte) ([]map[string]string, error) {
	var raw []map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}

	rows := make([]map[string]string, 0, len(raw))
	for _, rec := range raw {
		row := make(map[string]string, len(rec))
		for k, v := range rec {
			row[k] = cell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
