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

func TestNewPager(t *testing.T) {
	var fetches []string
	pager := NewPager(func(ctx context.Context, marker string) (*Response, error) {
		fetches = append(fetches, marker)
		if marker == "" {
			return newTestResponse(`{"data": [{"id": "a"}], "marker": "next"}`), nil
		}
		return newTestResponse(`{"data": [{"id": "b"}]}`), nil
	})

	ctx := context.Background()
	pages := 0
	for _, err := range pager.Pages(ctx) {
		require.NoError(t, err)
		pages++
	}

	assert.Equal(t, 2, pages)
	assert.Equal(t, []string{"", "next"}, fetches)
}

func TestPager_Pages(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		switch marker := r.URL.Query().Get("marker"); marker {
		case "":
			env := gcstest.ResultEnvelope("success",
				gcstest.CollectionDocument(gcstest.NewID(), "One"),
				gcstest.CollectionDocument(gcstest.NewID(), "Two"))
			env["marker"] = "page-2"
			json.NewEncoder(w).Encode(env)
		case "page-2":
			json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
				gcstest.CollectionDocument(gcstest.NewID(), "Three")))
		default:
			t.Errorf("unexpected marker %q", marker)
		}
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
	pager := client.CollectionsPager(nil)

	pages := 0
	var names []string
	for page, err := range pager.Pages(ctx) {
		require.NoError(t, err)
		pages++
		for item := range page.Items() {
			doc, ok := item.(map[string]interface{})
			require.True(t, ok)
			names = append(names, doc["display_name"].(string))
		}
	}

	assert.Equal(t, 2, pages)
	assert.Equal(t, []string{"One", "Two", "Three"}, names)
}

func TestPager_Items(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("marker") == "" {
			env := gcstest.ResultEnvelope("success",
				gcstest.CollectionDocument(gcstest.NewID(), "One"))
			env["marker"] = "page-2"
			json.NewEncoder(w).Encode(env)
			return
		}
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.CollectionDocument(gcstest.NewID(), "Two")))
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

	var names []string
	for item, err := range client.CollectionsPager(nil).Items(ctx) {
		require.NoError(t, err)
		doc, ok := item.(map[string]interface{})
		require.True(t, ok)
		names = append(names, doc["display_name"].(string))
	}
	assert.Equal(t, []string{"One", "Two"}, names)
}

func TestPager_StopsOnHasNextPageFalse(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if marker := r.URL.Query().Get("marker"); marker != "" {
			t.Errorf("unexpected follow-up fetch with marker %q", marker)
		}

		// A marker alongside "has_next_page": false must not be followed
		env := gcstest.ResultEnvelope("success",
			gcstest.CollectionDocument(gcstest.NewID(), "Only"))
		env["marker"] = "ignored"
		env["has_next_page"] = false

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(env)
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

	pages := 0
	for _, err := range client.CollectionsPager(nil).Pages(ctx) {
		require.NoError(t, err)
		pages++
	}
	assert.Equal(t, 1, pages)
}

func TestPager_StartMarker(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "resume-here", r.URL.Query().Get("marker"))

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
	pager := client.CollectionsPager(&ListCollectionsOptions{Marker: "resume-here"})

	for _, err := range pager.Pages(ctx) {
		require.NoError(t, err)
	}
}

func TestPager_SecondPageError(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("marker") == "" {
			env := gcstest.ResultEnvelope("success",
				gcstest.CollectionDocument(gcstest.NewID(), "One"))
			env["marker"] = "gone"
			json.NewEncoder(w).Encode(env)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(gcstest.ErrorEnvelope(404, "not_found", "Marker expired"))
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

	pages := 0
	var pageErr error
	for page, err := range client.CollectionsPager(nil).Pages(ctx) {
		if err != nil {
			pageErr = err
			continue
		}
		require.NotNil(t, page)
		pages++
	}

	assert.Equal(t, 1, pages)
	require.Error(t, pageErr)
	assert.Contains(t, pageErr.Error(), "404")
	assert.Contains(t, pageErr.Error(), "Marker expired")
}

func TestClient_StorageGatewaysPager(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage_gateways", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("marker") == "" {
			env := gcstest.ResultEnvelope("success",
				gcstest.StorageGatewayDocument(gcstest.NewID(), "First"))
			env["marker"] = "more"
			json.NewEncoder(w).Encode(env)
			return
		}
		json.NewEncoder(w).Encode(gcstest.ResultEnvelope("success",
			gcstest.StorageGatewayDocument(gcstest.NewID(), "Second")))
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

	var names []string
	for item, err := range client.StorageGatewaysPager(nil).Items(ctx) {
		require.NoError(t, err)
		doc, ok := item.(map[string]interface{})
		require.True(t, ok)
		names = append(names, doc["display_name"].(string))
	}
	assert.Equal(t, []string{"First", "Second"}, names)
}
