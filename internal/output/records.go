package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

// Column maps a table header to a document key.
type Column struct {
	Header string
	Key    string
}

// recordColumns derives a sorted column set from a document's keys, for
// callers that don't pick columns themselves.
func recordColumns(record map[string]interface{}) []Column {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := make([]Column, 0, len(keys))
	for _, k := range keys {
		columns = append(columns, Column{Header: k, Key: k})
	}
	return columns
}

// PrintRecords renders one row per document with the given columns. Missing
// keys render as empty cells; GCS documents vary by connector and version.
func PrintRecords(w io.Writer, records []map[string]interface{}, columns []Column) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found")
		return nil
	}

	headers := make([]string, 0, len(columns))
	for _, c := range columns {
		headers = append(headers, c.Header)
	}

	table := newTable(w)
	table.SetAutoFormatHeaders(true)
	table.SetHeader(headers)

	for _, record := range records {
		row := make([]string, 0, len(columns))
		for _, c := range columns {
			row = append(row, formatCell(record[c.Key]))
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// PrintRecord renders a single document as key/value rows. With keys given,
// only those print, in order, skipping ones the document doesn't carry; with
// nil keys every key prints in sorted order.
func PrintRecord(w io.Writer, record map[string]interface{}, keys []string) error {
	if keys == nil {
		keys = make([]string, 0, len(record))
		for k := range record {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	table := newTable(w)
	table.SetAutoFormatHeaders(false)

	for _, k := range keys {
		value, ok := record[k]
		if !ok {
			continue
		}
		table.Append([]string{k, formatCell(value)})
	}

	table.Render()
	return nil
}

// formatCell renders one envelope value for a table cell.
func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return FormatBool(v)
	case []interface{}:
		if len(v) == 0 {
			return "[]"
		}
		if len(v) > 5 {
			return fmt.Sprintf("[%d items]", len(v))
		}
		out := ""
		for i, item := range v {
			if i > 0 {
				out += ", "
			}
			out += formatCell(item)
		}
		return out
	case map[string]interface{}:
		return fmt.Sprintf("{%d entries}", len(v))
	default:
		return fmt.Sprint(v)
	}
}

// FormatBool colors booleans so flags like high_assurance and public stand
// out in wide tables. Honors the global color.NoColor switch.
func FormatBool(v bool) string {
	if v {
		return color.GreenString("true")
	}
	return color.RedString("false")
}
