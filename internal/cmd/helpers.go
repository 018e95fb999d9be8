package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/webskin/gcs-go-cli/internal/output"
)

// requireUUID validates that arg parses as a UUID, naming the argument in
// the error so the user knows which one was wrong.
func requireUUID(arg, what string) error {
	if _, err := uuid.Parse(arg); err != nil {
		return fmt.Errorf("invalid %s %q: must be a UUID", what, arg)
	}
	return nil
}

// parseJSONData parses JSON data from a string, a file (@path), or the
// command's stdin (-)
func parseJSONData(cmd *cobra.Command, dataStr string, target interface{}) error {
	var data []byte
	var err error

	if dataStr == "-" {
		// Read from stdin
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else if len(dataStr) > 0 && dataStr[0] == '@' {
		// Read from file
		data, err = os.ReadFile(dataStr[1:])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", dataStr[1:], err)
		}
	} else {
		// Use string directly
		data = []byte(dataStr)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// collectRecords gathers an envelope's documents as generic records,
// skipping anything in the data array that is not an object.
func collectRecords(items iter.Seq[interface{}]) []map[string]interface{} {
	var records []map[string]interface{}
	for item := range items {
		if record, ok := item.(map[string]interface{}); ok {
			records = append(records, record)
		}
	}
	return records
}

// dataRecord returns the unpacked document as a generic record. The
// fallback view (no DATA_TYPE match) is an envelope, which still renders
// usefully as key/value rows.
func dataRecord(view interface{ Data() interface{} }) (map[string]interface{}, error) {
	record, ok := view.Data().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected response payload (not a JSON object)")
	}
	return record, nil
}

// drainItems walks a pager's item sequence to the end, collecting the
// object documents it yields.
func drainItems(items iter.Seq2[interface{}, error]) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	for item, err := range items {
		if err != nil {
			return nil, err
		}
		if record, ok := item.(map[string]interface{}); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// printRecordList renders an aggregated record list as a table, or as a
// plain JSON array when JSON output is selected.
func printRecordList(cmd *cobra.Command, records []map[string]interface{}, columns []output.Column) error {
	if outputFormat == "json" {
		raw, err := json.Marshal(records)
		if err != nil {
			return err
		}
		return output.PrintRawJSON(cmd.OutOrStdout(), raw, compactJSON)
	}
	return output.PrintRecords(cmd.OutOrStdout(), records, columns)
}
