package errors

// Common error messages used across the application
const (
	// MsgBaseURLRequired is the error message when no GCS Manager URL is configured
	MsgBaseURLRequired = "base URL is required (set GCS_BASE_URL or --url)"

	// MsgAccessTokenRequired is the error message when no bearer token is configured
	MsgAccessTokenRequired = "access token is required (run 'gcs session set-token', set GCS_ACCESS_TOKEN, or use --token)"

	// MsgInvalidMatchPattern is the error message for an uncompilable DATA_TYPE pattern
	MsgInvalidMatchPattern = "invalid DATA_TYPE match pattern"
)

// API operation failures
const (
	MsgFailedToGetInfo = "failed to get GCS info"

	MsgFailedToGetEndpoint    = "failed to get endpoint"
	MsgFailedToUpdateEndpoint = "failed to update endpoint"

	MsgFailedToListCollections  = "failed to list collections"
	MsgFailedToGetCollection    = "failed to get collection"
	MsgFailedToCreateCollection = "failed to create collection"
	MsgFailedToUpdateCollection = "failed to update collection"
	MsgFailedToDeleteCollection = "failed to delete collection"

	MsgFailedToListStorageGateways  = "failed to list storage gateways"
	MsgFailedToGetStorageGateway    = "failed to get storage gateway"
	MsgFailedToCreateStorageGateway = "failed to create storage gateway"
	MsgFailedToUpdateStorageGateway = "failed to update storage gateway"
	MsgFailedToDeleteStorageGateway = "failed to delete storage gateway"

	MsgFailedToListRoles  = "failed to list roles"
	MsgFailedToGetRole    = "failed to get role"
	MsgFailedToCreateRole = "failed to create role"
	MsgFailedToDeleteRole = "failed to delete role"
)

// Session store failures
const (
	MsgFailedToReadSessionsFile  = "failed to read sessions file"
	MsgFailedToParseSessionsFile = "failed to parse sessions file"
	MsgFailedToMarshalSessions   = "failed to marshal sessions"
	MsgFailedToWriteSessionsFile = "failed to write sessions file"
	MsgFailedToSaveSessions      = "failed to save sessions"

	MsgNoSavedSessions = "No saved sessions. Use 'gcs session set-token' to create one."

	// MsgSessionNotFound is a format string taking the session name
	MsgSessionNotFound = "session '%s' not found"
)

// Config failures
const (
	// MsgInvalidConfigKey is a format string taking the rejected key
	MsgInvalidConfigKey = "invalid config key: %s"

	// MsgFailedToWriteConfigFile is a format string taking the wrapped error
	MsgFailedToWriteConfigFile = "failed to write config file: %w"
)
