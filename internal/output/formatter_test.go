package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func TestPrintJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		expected string
	}{
		{
			name: "simple struct",
			data: testRow{
				Key:    "base-url",
				Value:  "abc123.08cc.data.globus.org",
				Source: "file",
			},
			expected: `{
  "key": "base-url",
  "value": "abc123.08cc.data.globus.org",
  "source": "file"
}`,
		},
		{
			name: "slice of structs",
			data: []testRow{
				{Key: "timeout", Value: "30", Source: "default"},
				{Key: "color", Value: "never", Source: "env"},
			},
			expected: `[
  {
    "key": "timeout",
    "value": "30",
    "source": "default"
  },
  {
    "key": "color",
    "value": "never",
    "source": "env"
  }
]`,
		},
		{
			name: "map",
			data: map[string]interface{}{
				"detail": "success",
				"code":   200,
			},
			expected: `{
  "code": 200,
  "detail": "success"
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PrintTo(&buf, tt.data, JSON)
			require.NoError(t, err)

			// Normalize whitespace for comparison
			expected := strings.TrimSpace(tt.expected)
			actual := strings.TrimSpace(buf.String())
			assert.Equal(t, expected, actual)
		})
	}
}

func TestPrintRawJSON(t *testing.T) {
	var buf bytes.Buffer
	err := PrintRawJSON(&buf, []byte(`{"detail":"success","http_response_code":200}`), false)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "  \"detail\": \"success\"")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrintRawJSON_Compact(t *testing.T) {
	var buf bytes.Buffer
	err := PrintRawJSON(&buf, []byte("{\n  \"detail\": \"success\"\n}"), true)
	require.NoError(t, err)

	assert.Equal(t, `{"detail":"success"}`+"\n", buf.String())
}

func TestPrintRawJSON_InvalidBody(t *testing.T) {
	var buf bytes.Buffer
	err := PrintRawJSON(&buf, []byte("not json at all"), false)
	require.NoError(t, err)

	// Bodies that don't parse pass through untouched
	assert.Equal(t, "not json at all\n", buf.String())
}

func TestPrintTable(t *testing.T) {
	tests := []struct {
		name             string
		data             interface{}
		expectedIncludes []string
	}{
		{
			name: "slice of structs",
			data: []testRow{
				{Key: "base-url", Value: "example.org", Source: "file"},
				{Key: "timeout", Value: "30", Source: "default"},
			},
			expectedIncludes: []string{"KEY", "VALUE", "SOURCE", "base-url", "timeout", "default"},
		},
		{
			name: "single struct",
			data: testRow{
				Key:    "color",
				Value:  "auto",
				Source: "default",
			},
			expectedIncludes: []string{"color", "auto", "default"},
		},
		{
			name:             "empty slice",
			data:             []testRow{},
			expectedIncludes: []string{"No results found"},
		},
		{
			name: "slice of documents",
			data: []map[string]interface{}{
				{"id": "c-1", "display_name": "Alpha"},
				{"id": "c-2", "display_name": "Beta"},
			},
			expectedIncludes: []string{"Alpha", "Beta", "c-1", "c-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PrintTo(&buf, tt.data, Table)
			require.NoError(t, err)

			output := buf.String()
			for _, expected := range tt.expectedIncludes {
				assert.Contains(t, output, expected, "Output should contain: %s", expected)
			}
		})
	}
}

func TestPrintTable_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]interface{}{
		"zebra":           "last",
		"alpha":           "first",
		"manager_version": "5.4.61",
	}

	err := PrintTo(&buf, data, Table)
	require.NoError(t, err)

	output := buf.String()
	assert.Less(t, strings.Index(output, "alpha"), strings.Index(output, "manager_version"))
	assert.Less(t, strings.Index(output, "manager_version"), strings.Index(output, "zebra"))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "boolean true",
			input:    true,
			expected: "true",
		},
		{
			name:     "boolean false",
			input:    false,
			expected: "false",
		},
		{
			name:     "integer",
			input:    42,
			expected: "42",
		},
		{
			name:     "string",
			input:    "test string",
			expected: "test string",
		},
		{
			name:     "slice",
			input:    []string{"a", "b", "c"},
			expected: "[a, b, c]",
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: "[]",
		},
		{
			name:     "long slice collapses",
			input:    []int{1, 2, 3, 4, 5, 6, 7},
			expected: "[7 items]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			data := struct {
				Value interface{} `json:"value"`
			}{Value: tt.input}

			err := PrintTo(&buf, data, Table)
			require.NoError(t, err)

			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestPrintInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	data := testRow{Key: "key", Value: "value", Source: "file"}

	err := PrintTo(&buf, data, "invalid")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
