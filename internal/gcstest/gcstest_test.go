package gcstest

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureIDsAreUUIDs(t *testing.T) {
	for _, id := range []string{EndpointID, CollectionID, StorageGatewayID, RoleID, IdentityID, ConnectorID, ClientID} {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "fixture id %q", id)
	}

	_, err := uuid.Parse(NewID())
	assert.NoError(t, err)
}

func TestResultEnvelopeShape(t *testing.T) {
	env := ResultEnvelope("success", CollectionDocument(CollectionID, "My Collection"))

	assert.Equal(t, "result#1.0.0", env["DATA_TYPE"])
	assert.Equal(t, "success", env["detail"])

	data, ok := env["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)

	doc, ok := data[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "collection#1.0.0", doc["DATA_TYPE"])
	assert.Equal(t, CollectionID, doc["id"])
}

func TestServerRegister(t *testing.T) {
	server := NewServer()
	defer server.Close()

	server.Register(http.MethodGet, "/info", 200, ResultEnvelope("success", InfoDocument("5.4.61")))
	server.Register(http.MethodGet, "/raw", 418, `{"teapot": true}`)

	res, err := http.Get(server.URL + "/info")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var env map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	assert.Equal(t, "result#1.0.0", env["DATA_TYPE"])

	res, err = http.Get(server.URL + "/raw")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, 418, res.StatusCode)
	assert.JSONEq(t, `{"teapot": true}`, string(body))
}
