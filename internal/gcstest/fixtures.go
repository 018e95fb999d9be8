// Package gcstest provides canned GCS Manager API documents and a small
// fixture server for tests. The documents mirror what a real deployment
// returns: flat typed objects wrapped in result envelopes whose "data"
// array holds zero or more of them.
package gcstest

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Stable IDs used across fixtures so tests can assert against them.
const (
	EndpointID       = "aa5e84ce-0635-4c2a-9dba-fc4a4e8d1d01"
	CollectionID     = "8a5e84ce-1635-4c2a-9dba-fc4a4e8d1d02"
	StorageGatewayID = "4a5e84ce-2635-4c2a-9dba-fc4a4e8d1d03"
	RoleID           = "2a5e84ce-3635-4c2a-9dba-fc4a4e8d1d04"
	IdentityID       = "1a5e84ce-4635-4c2a-9dba-fc4a4e8d1d05"
	ConnectorID      = "145812c8-decc-41f1-83cf-bb2a85a2a70b"
	ClientID         = "f7cfb4d8-0d71-4d89-9e08-bcadd8b1d46f"
)

// NewID returns a random UUID for fixtures that need a fresh identity.
func NewID() string {
	return uuid.NewString()
}

// ResultEnvelope wraps docs in a standard result envelope. The detail field
// carries the API's short status text ("success" on most writes).
func ResultEnvelope(detail string, docs ...map[string]interface{}) map[string]interface{} {
	data := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		data = append(data, doc)
	}
	return map[string]interface{}{
		"DATA_TYPE":          "result#1.0.0",
		"code":               "success",
		"detail":             detail,
		"http_response_code": 200,
		"data":               data,
	}
}

// ErrorEnvelope builds the error body the API sends for failed requests.
func ErrorEnvelope(status int, code, message string) map[string]interface{} {
	return map[string]interface{}{
		"DATA_TYPE":          "result#1.0.0",
		"code":               code,
		"message":            message,
		"http_response_code": status,
	}
}

// CollectionDocument returns a plausible mapped collection document.
func CollectionDocument(id, displayName string) map[string]interface{} {
	httpsURL := fmt.Sprintf("https://g-%s.example.data.globus.org", shortID(id))
	return map[string]interface{}{
		"DATA_TYPE":               "collection#1.0.0",
		"id":                      id,
		"display_name":            displayName,
		"collection_type":         "mapped",
		"storage_gateway_id":      StorageGatewayID,
		"identity_id":             IdentityID,
		"collection_base_path":    "/",
		"public":                  true,
		"allow_guest_collections": false,
		"created_at":              "2023-10-21",
		"https_url":               httpsURL,
	}
}

// EndpointDocument returns a plausible endpoint document. Real deployments
// answer with the newest minor version they speak, hence 1.2.0 here.
func EndpointDocument(id, displayName string) map[string]interface{} {
	managerURL := fmt.Sprintf("https://%s.example.data.globus.org", shortID(id))
	return map[string]interface{}{
		"DATA_TYPE":        "endpoint#1.2.0",
		"id":               id,
		"display_name":     displayName,
		"public":           true,
		"allow_udt":        false,
		"network_use":      "normal",
		"gcs_manager_url":  managerURL,
		"gridftp_services": []interface{}{},
	}
}

// StorageGatewayDocument returns a plausible POSIX storage gateway document.
func StorageGatewayDocument(id, displayName string) map[string]interface{} {
	domains := []interface{}{"example.edu"}
	return map[string]interface{}{
		"DATA_TYPE":       "storage_gateway#1.0.0",
		"id":              id,
		"display_name":    displayName,
		"connector_id":    ConnectorID,
		"high_assurance":  false,
		"allowed_domains": domains,
	}
}

// RoleDocument returns a plausible role document for an endpoint-wide role.
func RoleDocument(id, principal, role string) map[string]interface{} {
	return map[string]interface{}{
		"DATA_TYPE": "role#1.0.0",
		"id":        id,
		"principal": principal,
		"role":      role,
	}
}

// InfoDocument returns a plausible deployment info document.
func InfoDocument(version string) map[string]interface{} {
	return map[string]interface{}{
		"DATA_TYPE":       "info#1.0.0",
		"api_version":     "1.0.0",
		"manager_version": version,
		"endpoint_id":     EndpointID,
		"domain_name":     "example.data.globus.org",
		"client_id":       ClientID,
	}
}

// ConnectorDocument returns the connector entry the info envelope carries
// alongside the info document.
func ConnectorDocument(name string) map[string]interface{} {
	return map[string]interface{}{
		"DATA_TYPE":    "connector#1.0.0",
		"id":           ConnectorID,
		"display_name": name,
		"version":      "5.4.61",
	}
}

// MarshalJSON renders v as JSON, panicking on failure. Fixture inputs are
// always marshalable, so a failure is a test-authoring bug.
func MarshalJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("gcstest: marshal fixture: %v", err))
	}
	return string(raw)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
