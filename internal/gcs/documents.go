package gcs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Default DATA_TYPE tags stamped onto request documents. The API accepts
// newer minor versions; callers needing a specific one can set DataType
// explicitly before sending.
const (
	DataTypeCollection     = "collection#1.0.0"
	DataTypeEndpoint       = "endpoint#1.0.0"
	DataTypeStorageGateway = "storage_gateway#1.0.0"
	DataTypeRole           = "role#1.0.0"
)

// Collection types accepted by the API
const (
	CollectionTypeMapped = "mapped"
	CollectionTypeGuest  = "guest"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// validateDocument runs struct validation and flattens the first failure
// into a readable error. Only create operations validate; updates are
// partial documents where almost everything is optional.
func validateDocument(kind string, doc interface{}) error {
	err := validate.Struct(doc)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid %s document: %s %s", kind, fe.Field(), validationMessage(fe))
	}
	return fmt.Errorf("invalid %s document: %w", kind, err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// CollectionDocument is the request body for creating or updating a
// collection. Zero-valued fields are left out of the JSON body, so the same
// type serves full create documents and partial update documents. Optional
// booleans are pointers because the API distinguishes "unset" from "false".
type CollectionDocument struct {
	DataType              string                 `json:"DATA_TYPE,omitempty"`
	CollectionType        string                 `json:"collection_type,omitempty" validate:"required,oneof=mapped guest"`
	DisplayName           string                 `json:"display_name,omitempty" validate:"required"`
	CollectionBasePath    string                 `json:"collection_base_path,omitempty" validate:"required"`
	StorageGatewayID      string                 `json:"storage_gateway_id,omitempty" validate:"required_if=CollectionType mapped,omitempty,uuid"`
	MappedCollectionID    string                 `json:"mapped_collection_id,omitempty" validate:"required_if=CollectionType guest,omitempty,uuid"`
	UserCredentialID      string                 `json:"user_credential_id,omitempty" validate:"omitempty,uuid"`
	IdentityID            string                 `json:"identity_id,omitempty" validate:"omitempty,uuid"`
	DomainName            string                 `json:"domain_name,omitempty"`
	DefaultDirectory      string                 `json:"default_directory,omitempty"`
	Organization          string                 `json:"organization,omitempty"`
	Department            string                 `json:"department,omitempty"`
	Description           string                 `json:"description,omitempty"`
	Keywords              []string               `json:"keywords,omitempty"`
	ContactEmail          string                 `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactInfo           string                 `json:"contact_info,omitempty"`
	InfoLink              string                 `json:"info_link,omitempty"`
	UserMessage           string                 `json:"user_message,omitempty"`
	UserMessageLink       string                 `json:"user_message_link,omitempty"`
	Public                *bool                  `json:"public,omitempty"`
	ForceEncryption       *bool                  `json:"force_encryption,omitempty"`
	DisableVerify         *bool                  `json:"disable_verify,omitempty"`
	EnableHTTPS           *bool                  `json:"enable_https,omitempty"`
	AllowGuestCollections *bool                  `json:"allow_guest_collections,omitempty"`
	Policies              map[string]interface{} `json:"policies,omitempty"`
	SharingRestrictPaths  map[string]interface{} `json:"sharing_restrict_paths,omitempty"`
	SharingUsersAllow     []string               `json:"sharing_users_allow,omitempty"`
	SharingUsersDeny      []string               `json:"sharing_users_deny,omitempty"`
}

// NewMappedCollectionDocument builds a create document for a mapped
// collection rooted on a storage gateway.
func NewMappedCollectionDocument(displayName, storageGatewayID, basePath string) *CollectionDocument {
	return &CollectionDocument{
		DataType:           DataTypeCollection,
		CollectionType:     CollectionTypeMapped,
		DisplayName:        displayName,
		StorageGatewayID:   storageGatewayID,
		CollectionBasePath: basePath,
	}
}

// NewGuestCollectionDocument builds a create document for a guest collection
// shared out of a mapped collection.
func NewGuestCollectionDocument(displayName, mappedCollectionID, userCredentialID, basePath string) *CollectionDocument {
	return &CollectionDocument{
		DataType:           DataTypeCollection,
		CollectionType:     CollectionTypeGuest,
		DisplayName:        displayName,
		MappedCollectionID: mappedCollectionID,
		UserCredentialID:   userCredentialID,
		CollectionBasePath: basePath,
	}
}

func (d *CollectionDocument) ensureDataType() {
	if d.DataType == "" {
		d.DataType = DataTypeCollection
	}
}

// EndpointDocument is the request body for updating the endpoint record.
type EndpointDocument struct {
	DataType                  string   `json:"DATA_TYPE,omitempty"`
	DisplayName               string   `json:"display_name,omitempty"`
	Description               string   `json:"description,omitempty"`
	Organization              string   `json:"organization,omitempty"`
	Department                string   `json:"department,omitempty"`
	Keywords                  []string `json:"keywords,omitempty"`
	ContactEmail              string   `json:"contact_email,omitempty" validate:"omitempty,email"`
	InfoLink                  string   `json:"info_link,omitempty"`
	SubscriptionID            string   `json:"subscription_id,omitempty"`
	Public                    *bool    `json:"public,omitempty"`
	AllowUDT                  *bool    `json:"allow_udt,omitempty"`
	NetworkUse                string   `json:"network_use,omitempty" validate:"omitempty,oneof=normal minimal aggressive custom"`
	MaxConcurrency            *int     `json:"max_concurrency,omitempty"`
	PreferredConcurrency      *int     `json:"preferred_concurrency,omitempty"`
	MaxParallelism            *int     `json:"max_parallelism,omitempty"`
	PreferredParallelism      *int     `json:"preferred_parallelism,omitempty"`
	GridFTPControlChannelPort *int     `json:"gridftp_control_channel_port,omitempty"`
}

func (d *EndpointDocument) ensureDataType() {
	if d.DataType == "" {
		d.DataType = DataTypeEndpoint
	}
}

// StorageGatewayDocument is the request body for creating or updating a
// storage gateway.
type StorageGatewayDocument struct {
	DataType                  string                   `json:"DATA_TYPE,omitempty"`
	DisplayName               string                   `json:"display_name,omitempty" validate:"required"`
	ConnectorID               string                   `json:"connector_id,omitempty" validate:"required,uuid"`
	HighAssurance             *bool                    `json:"high_assurance,omitempty"`
	RequireMFA                *bool                    `json:"require_mfa,omitempty"`
	AllowedDomains            []string                 `json:"allowed_domains,omitempty"`
	AuthenticationTimeoutMins *int                     `json:"authentication_timeout_mins,omitempty"`
	IdentityMappings          []map[string]interface{} `json:"identity_mappings,omitempty"`
	Policies                  map[string]interface{}   `json:"policies,omitempty"`
	RestrictPaths             map[string]interface{}   `json:"restrict_paths,omitempty"`
	UsersAllow                []string                 `json:"users_allow,omitempty"`
	UsersDeny                 []string                 `json:"users_deny,omitempty"`
}

// NewStorageGatewayDocument builds a create document for a storage gateway
// backed by the given connector.
func NewStorageGatewayDocument(displayName, connectorID string) *StorageGatewayDocument {
	return &StorageGatewayDocument{
		DataType:    DataTypeStorageGateway,
		DisplayName: displayName,
		ConnectorID: connectorID,
	}
}

func (d *StorageGatewayDocument) ensureDataType() {
	if d.DataType == "" {
		d.DataType = DataTypeStorageGateway
	}
}

// RoleDocument is the request body for granting a role. Collection is empty
// for endpoint-wide roles.
type RoleDocument struct {
	DataType   string `json:"DATA_TYPE,omitempty"`
	Collection string `json:"collection,omitempty" validate:"omitempty,uuid"`
	Principal  string `json:"principal,omitempty" validate:"required"`
	Role       string `json:"role,omitempty" validate:"required,oneof=owner administrator activity_manager activity_monitor access_manager access_monitor"`
}

// NewRoleDocument builds a create document granting role to principal. The
// principal is a Globus Auth URN, e.g.
// "urn:globus:auth:identity:<uuid>" or "urn:globus:groups:id:<uuid>".
func NewRoleDocument(collectionID, principal, role string) *RoleDocument {
	return &RoleDocument{
		DataType:   DataTypeRole,
		Collection: collectionID,
		Principal:  principal,
		Role:       role,
	}
}

func (d *RoleDocument) ensureDataType() {
	if d.DataType == "" {
		d.DataType = DataTypeRole
	}
}

// Bool returns a pointer to v, for filling optional boolean document fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for filling optional integer document fields.
func Int(v int) *int { return &v }
