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

func TestClient_ListStorageGateways(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage_gateways", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.StorageGatewayDocument(gcstest.StorageGatewayID, "POSIX Gateway")))
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.ListStorageGateways(ctx, &ListStorageGatewaysOptions{PageSize: 25})
	require.NoError(t, err)

	count := 0
	for item := range resp.Items() {
		doc, ok := item.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "storage_gateway#1.0.0", doc["DATA_TYPE"])
		count++
	}
	assert.Equal(t, 1, count)
}

func TestClient_GetStorageGateway(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage_gateways/"+gcstest.StorageGatewayID, r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.StorageGatewayDocument(gcstest.StorageGatewayID, "POSIX Gateway")))
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.GetStorageGateway(ctx, gcstest.StorageGatewayID)
	require.NoError(t, err)

	id, ok := resp.Get("id")
	require.True(t, ok)
	assert.Equal(t, gcstest.StorageGatewayID, id)

	connector, _ := resp.Get("connector_id")
	assert.Equal(t, gcstest.ConnectorID, connector)
}

func TestClient_CreateStorageGateway(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage_gateways", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, "storage_gateway#1.0.0", body["DATA_TYPE"])
		assert.Equal(t, "New Gateway", body["display_name"])
		assert.Equal(t, gcstest.ConnectorID, body["connector_id"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.StorageGatewayDocument(gcstest.StorageGatewayID, "New Gateway")))
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()
	doc := NewStorageGatewayDocument("New Gateway", gcstest.ConnectorID)
	resp, err := client.CreateStorageGateway(ctx, doc)
	require.NoError(t, err)

	id, ok := resp.Get("id")
	require.True(t, ok)
	assert.Equal(t, gcstest.StorageGatewayID, id)
}

func TestClient_CreateStorageGateway_InvalidDocument(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid documents must not reach the server")
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = client.CreateStorageGateway(ctx, NewStorageGatewayDocument("No Connector", ""))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connector_id")

	_, err = client.CreateStorageGateway(ctx, NewStorageGatewayDocument("Bad Connector", "not-a-uuid"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "UUID")
}

func TestClient_UpdateStorageGateway(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage_gateways/"+gcstest.StorageGatewayID, r.URL.Path)
		assert.Equal(t, "PATCH", r.Method)

		var body map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Gateway", body["display_name"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.StorageGatewayDocument(gcstest.StorageGatewayID, "Renamed Gateway")))
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()
	doc := &StorageGatewayDocument{DisplayName: "Renamed Gateway"}
	resp, err := client.UpdateStorageGateway(ctx, gcstest.StorageGatewayID, doc)
	require.NoError(t, err)

	name, ok := resp.Get("display_name")
	require.True(t, ok)
	assert.Equal(t, "Renamed Gateway", name)
}

func TestClient_DeleteStorageGateway(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage_gateways/"+gcstest.StorageGatewayID, r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success"))
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.DeleteStorageGateway(ctx, gcstest.StorageGatewayID)
	require.NoError(t, err)

	detail, ok := resp.Get("detail")
	require.True(t, ok)
	assert.Equal(t, "success", detail)
}

func TestClient_DeleteStorageGateway_Conflict(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(gcstest.ErrorEnvelope(409, "exists", "Storage gateway still has collections"))
	})
	defer server.Close()

	config := &Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		Timeout:     30,
	}

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.DeleteStorageGateway(ctx, gcstest.StorageGatewayID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "still has collections")
}
