package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webskin/gcs-go-cli/internal/gcs"
	"github.com/webskin/gcs-go-cli/internal/gcstest"
)

func TestInfo(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	stdout, _, err := runCommand(t, infoCmd, "", "info")

	require.NoError(t, err)
	assert.Contains(t, stdout, "manager_version")
	assert.Contains(t, stdout, "5.4.61")
	assert.Contains(t, stdout, gcstest.EndpointID)
	assert.Contains(t, stdout, "example.data.globus.org")
}

func TestInfo_JSON(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	stdout, _, err := runCommand(t, infoCmd, "", "info", "-o", "json")

	require.NoError(t, err)
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, "result#1.0.0", env["DATA_TYPE"])

	// The envelope carries the info document plus one connector entry
	data, ok := env["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 2)

	types := make(map[string]bool)
	for _, item := range data {
		doc := item.(map[string]interface{})
		types[doc["DATA_TYPE"].(string)] = true
	}
	assert.True(t, types["info#1.0.0"])
	assert.True(t, types["connector#1.0.0"])
}

func TestInfo_WorksWithoutToken(t *testing.T) {
	// Even against a deployment that enforces auth, info needs no token
	ts := startTokenMockAPI(t, "sekrit")
	setTestConfig(t, &gcs.Config{BaseURL: ts.URL, Timeout: 30})

	stdout, _, err := runCommand(t, infoCmd, "", "info")

	require.NoError(t, err)
	assert.Contains(t, stdout, "5.4.61")
}

func TestInfo_RequiresBaseURL(t *testing.T) {
	setTestConfig(t, &gcs.Config{Timeout: 30})

	_, _, err := runCommand(t, infoCmd, "", "info")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL is required")
}
