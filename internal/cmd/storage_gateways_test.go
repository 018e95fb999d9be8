package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webskin/gcs-go-cli/internal/gcstest"
)

// createTestGateway makes a fresh storage gateway through the CLI and
// returns its ID.
func createTestGateway(t *testing.T, name string) string {
	t.Helper()

	stdout, _, err := runCommand(t, storageGatewaysCmd, "",
		"storage-gateways", "create",
		"--display-name", name,
		"--connector-id", gcstest.ConnectorID,
		"-o", "json")
	require.NoError(t, err)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	data, ok := env["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)

	id, _ := data[0].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestStorageGatewaysList(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	stdout, _, err := runCommand(t, storageGatewaysCmd, "", "storage-gateways", "list")

	require.NoError(t, err)
	assert.Contains(t, stdout, "DISPLAY NAME")
	assert.Contains(t, stdout, "HIGH ASSURANCE")
	assert.Contains(t, stdout, "POSIX Gateway")
	assert.Contains(t, stdout, gcstest.StorageGatewayID)
}

func TestStorageGatewaysList_JSON(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	stdout, _, err := runCommand(t, storageGatewaysCmd, "", "storage-gateways", "list", "-o", "json")

	require.NoError(t, err)
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	assert.Equal(t, "result#1.0.0", env["DATA_TYPE"])

	data, ok := env["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	doc := data[0].(map[string]interface{})
	assert.Equal(t, gcstest.StorageGatewayID, doc["id"])
}

func TestStorageGatewaysShow(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	stdout, _, err := runCommand(t, storageGatewaysCmd, "",
		"storage-gateways", "show", gcstest.StorageGatewayID)

	require.NoError(t, err)
	assert.Contains(t, stdout, "display_name")
	assert.Contains(t, stdout, "POSIX Gateway")
}

func TestStorageGatewaysShow_RejectsBadID(t *testing.T) {
	_, _, err := runCommand(t, storageGatewaysCmd, "", "storage-gateways", "show", "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage gateway ID")
	assert.Contains(t, err.Error(), "must be a UUID")
}

func TestStorageGatewaysCreate(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	_, stderr, err := runCommand(t, storageGatewaysCmd, "",
		"storage-gateways", "create",
		"--display-name", "S3 Staging",
		"--connector-id", gcstest.ConnectorID,
		"--high-assurance")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Storage gateway created successfully")

	stdout, _, err := runCommand(t, storageGatewaysCmd, "", "storage-gateways", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "S3 Staging")
}

func TestStorageGatewaysCreate_RejectsInvalidDocument(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	_, _, err := runCommand(t, storageGatewaysCmd, "",
		"storage-gateways", "create", "--connector-id", gcstest.ConnectorID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage gateway document")
	assert.Contains(t, err.Error(), "display_name")
}

func TestStorageGatewaysDelete(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	id := createTestGateway(t, "Scratch Gateway")

	_, stderr, err := runCommand(t, storageGatewaysCmd, "",
		"storage-gateways", "delete", id, "--force")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Storage gateway deleted successfully: "+id)

	_, _, err = runCommand(t, storageGatewaysCmd, "", "storage-gateways", "show", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestStorageGatewaysDelete_BlockedByCollections(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	// The seeded gateway backs the seeded collections
	_, _, err := runCommand(t, storageGatewaysCmd, "",
		"storage-gateways", "delete", gcstest.StorageGatewayID, "--force")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "still has collections")
}

func TestStorageGatewaysDelete_PromptRefused(t *testing.T) {
	ts := startMockAPI(t)
	setTestConfig(t, testAPIConfig(ts))

	id := createTestGateway(t, "Keep Me")

	stdout, _, err := runCommand(t, storageGatewaysCmd, "n\n",
		"storage-gateways", "delete", id)

	require.NoError(t, err)
	assert.Contains(t, stdout, "Delete storage gateway")
	assert.Contains(t, stdout, "Cancelled")

	_, _, err = runCommand(t, storageGatewaysCmd, "", "storage-gateways", "show", id)
	assert.NoError(t, err)
}
