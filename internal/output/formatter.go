package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// Format represents the output format
type Format string

const (
	JSON  Format = "json"
	Table Format = "table"
)

// Print outputs data in the specified format
func Print(data interface{}, format Format) error {
	return PrintTo(os.Stdout, data, format)
}

// PrintTo outputs data to a specific writer in the specified format
func PrintTo(w io.Writer, data interface{}, format Format) error {
	switch format {
	case JSON:
		return printJSON(w, data)
	case Table:
		return printTable(w, data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// PrintRawJSON writes an already-encoded JSON body, re-indented for
// readability or compacted to one line. Bodies that fail to re-encode are
// written verbatim so an API response is never swallowed.
func PrintRawJSON(w io.Writer, raw []byte, compact bool) error {
	var buf bytes.Buffer
	var err error
	if compact {
		err = json.Compact(&buf, raw)
	} else {
		err = json.Indent(&buf, raw, "", "  ")
	}
	if err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// printJSON outputs data as pretty-printed JSON
func printJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// newTable returns a borderless tab-padded table, the house style for all
// tabular output.
func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

// printTable outputs data as a table
func printTable(w io.Writer, data interface{}) error {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	typ := val.Type()

	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = val.Type()
	}

	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		return printSliceTable(w, val)
	case reflect.Struct:
		return printStructTable(w, val)
	case reflect.Map:
		return printMapTable(w, val)
	default:
		fmt.Fprintln(w, val.Interface())
		return nil
	}
}

// printSliceTable prints a slice as a table
func printSliceTable(w io.Writer, val reflect.Value) error {
	if val.Len() == 0 {
		fmt.Fprintln(w, "No results found")
		return nil
	}

	// Slices of envelope documents take the record path so the column set
	// is deterministic
	if _, ok := val.Index(0).Interface().(map[string]interface{}); ok {
		records := make([]map[string]interface{}, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			if record, ok := val.Index(i).Interface().(map[string]interface{}); ok {
				records = append(records, record)
			}
		}
		return PrintRecords(w, records, recordColumns(records[0]))
	}

	firstElem := val.Index(0)
	if firstElem.Kind() == reflect.Ptr {
		firstElem = firstElem.Elem()
	}

	table := newTable(w)
	table.SetAutoFormatHeaders(true)

	if firstElem.Kind() == reflect.Struct {
		headers := extractHeaders(firstElem.Type())
		table.SetHeader(headers)

		for i := 0; i < val.Len(); i++ {
			elem := val.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			table.Append(extractRow(elem))
		}
	} else {
		table.SetHeader([]string{"Value"})
		for i := 0; i < val.Len(); i++ {
			table.Append([]string{fmt.Sprint(val.Index(i).Interface())})
		}
	}

	table.Render()
	return nil
}

// printStructTable prints a single struct as a key-value table
func printStructTable(w io.Writer, val reflect.Value) error {
	table := newTable(w)
	table.SetAutoFormatHeaders(false)

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldName := field.Name
		if jsonTag := jsonTagName(field); jsonTag != "" {
			fieldName = jsonTag
		}

		table.Append([]string{fieldName, formatValue(val.Field(i))})
	}

	table.Render()
	return nil
}

// printMapTable prints a map as a key-value table, keys sorted for
// reproducible output
func printMapTable(w io.Writer, val reflect.Value) error {
	keys := make([]string, 0, val.Len())
	byKey := make(map[string]reflect.Value, val.Len())
	mapIter := val.MapRange()
	for mapIter.Next() {
		key := fmt.Sprint(mapIter.Key().Interface())
		keys = append(keys, key)
		byKey[key] = mapIter.Value()
	}
	sort.Strings(keys)

	table := newTable(w)
	table.SetAutoFormatHeaders(false)

	for _, key := range keys {
		table.Append([]string{key, formatValue(byKey[key])})
	}

	table.Render()
	return nil
}

// extractHeaders extracts column names from a struct type
func extractHeaders(typ reflect.Type) []string {
	var headers []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if jsonTag := jsonTagName(field); jsonTag != "" {
			name = jsonTag
		}
		headers = append(headers, name)
	}
	return headers
}

// extractRow extracts field values from a struct
func extractRow(val reflect.Value) []string {
	typ := val.Type()
	row := make([]string, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		if !typ.Field(i).IsExported() {
			continue
		}
		row = append(row, formatValue(val.Field(i)))
	}

	return row
}

// jsonTagName returns the field's json tag name, stripped of options, or ""
// when the field has no usable tag.
func jsonTagName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}

// formatValue formats a reflect.Value as a string
func formatValue(val reflect.Value) string {
	if !val.IsValid() {
		return ""
	}

	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return ""
		}
		return formatValue(val.Elem())
	case reflect.Slice, reflect.Array:
		if val.Len() == 0 {
			return "[]"
		}
		if val.Len() > 5 {
			return fmt.Sprintf("[%d items]", val.Len())
		}
		result := "["
		for i := 0; i < val.Len(); i++ {
			if i > 0 {
				result += ", "
			}
			result += formatValue(val.Index(i))
		}
		return result + "]"
	case reflect.Map:
		if val.Len() == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d entries}", val.Len())
	case reflect.Struct:
		if stringer, ok := val.Interface().(fmt.Stringer); ok {
			return stringer.String()
		}
		return fmt.Sprintf("%v", val.Interface())
	case reflect.Bool:
		if val.Bool() {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val.Interface())
	}
}
