package gcs

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webskin/gcs-go-cli/internal/gcstest"
)

func TestClient_GetInfo(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.InfoDocument("5.4.61"),
			gcstest.ConnectorDocument("POSIX"),
		))
	})
	defer server.Close()

	config := &Config{
		BaseURL: server.URL,
		Timeout: 30,
	}

	client, err := NewClientNoAuth(config)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.GetInfo(ctx)
	require.NoError(t, err)

	// The data view unpacks to the info document
	version, ok := resp.Get("manager_version")
	require.True(t, ok)
	assert.Equal(t, "5.4.61", version)

	endpointID, _ := resp.Get("endpoint_id")
	assert.Equal(t, gcstest.EndpointID, endpointID)

	// The sideloaded connector documents are still there on the envelope
	var dataTypes []string
	for item := range resp.Response.Items() {
		doc, ok := item.(map[string]interface{})
		require.True(t, ok)
		dataTypes = append(dataTypes, doc["DATA_TYPE"].(string))
	}
	assert.Equal(t, []string{"info#1.0.0", "connector#1.0.0"}, dataTypes)
}

func TestClient_GetInfo_Error(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(gcstest.ErrorEnvelope(404, "not_found", "Not a GCS Manager"))
	})
	defer server.Close()

	config := &Config{
		BaseURL: server.URL,
		Timeout: 30,
	}

	client, err := NewClientNoAuth(config)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.GetInfo(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Not a GCS Manager")
}
