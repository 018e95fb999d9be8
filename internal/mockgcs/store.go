package mockgcs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/webskin/gcs-go-cli/internal/gcstest"
)

// Error is an API-level failure: the HTTP status plus the machine-readable
// code that goes into the result envelope.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errNotFound(kind, id string) *Error {
	return &Error{Status: 404, Code: "not_found", Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func errBadRequest(message string) *Error {
	return &Error{Status: 400, Code: "bad_request", Message: message}
}

func errConflict(message string) *Error {
	return &Error{Status: 409, Code: "conflict", Message: message}
}

// Store is the mock's in-memory state. Documents are plain maps in the same
// shape the real API serves, guarded by a single RWMutex. Reads hand out
// shallow copies; writes replace nested values wholesale, never mutate them
// in place, so the copies stay safe.
type Store struct {
	mu sync.RWMutex

	endpoint    map[string]interface{}
	info        map[string]interface{}
	connector   map[string]interface{}
	collections map[string]map[string]interface{}
	gateways    map[string]map[string]interface{}
	roles       map[string]map[string]interface{}
}

// NewStore builds a store seeded with one endpoint, one POSIX storage
// gateway, an administrator role, and cfg.SeedCollections mapped
// collections. The first seeded documents reuse the stable gcstest IDs so
// demo scripts can address them without a lookup.
func NewStore(cfg *Config) *Store {
	s := &Store{
		endpoint:    gcstest.EndpointDocument(gcstest.EndpointID, cfg.EndpointName),
		info:        gcstest.InfoDocument(cfg.ManagerVersion),
		connector:   gcstest.ConnectorDocument("POSIX"),
		collections: make(map[string]map[string]interface{}),
		gateways:    make(map[string]map[string]interface{}),
		roles:       make(map[string]map[string]interface{}),
	}

	s.gateways[gcstest.StorageGatewayID] = gcstest.StorageGatewayDocument(gcstest.StorageGatewayID, "POSIX Gateway")

	principal := "urn:globus:auth:identity:" + gcstest.IdentityID
	s.roles[gcstest.RoleID] = gcstest.RoleDocument(gcstest.RoleID, principal, "administrator")

	for i := 0; i < cfg.SeedCollections; i++ {
		id := gcstest.NewID()
		if i == 0 {
			id = gcstest.CollectionID
		}
		s.collections[id] = gcstest.CollectionDocument(id, fmt.Sprintf("Mock Collection %d", i+1))
	}

	return s
}

// Endpoint returns a copy of the endpoint document.
func (s *Store) Endpoint() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDoc(s.endpoint)
}

// UpdateEndpoint merges patch into the endpoint document and returns the
// updated copy. The id and DATA_TYPE fields cannot be changed.
func (s *Store) UpdateEndpoint(patch map[string]interface{}) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	applyPatch(s.endpoint, patch)
	return cloneDoc(s.endpoint)
}

// Info returns copies of the info and connector documents.
func (s *Store) Info() (info, connector map[string]interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDoc(s.info), cloneDoc(s.connector)
}

// CollectionQuery narrows a collection listing the way the API's query
// parameters do.
type CollectionQuery struct {
	// MappedCollectionID keeps only guest collections of that mapped
	// collection.
	MappedCollectionID string

	// Filter holds the raw comma-separated filter parameter. The mock
	// honors mapped_collections and guest_collections; other values
	// (managed_by_me, created_by_me) need caller identities the mock does
	// not model and are ignored.
	Filter string
}

func (q CollectionQuery) matches(doc map[string]interface{}) bool {
	if q.MappedCollectionID != "" && doc["mapped_collection_id"] != q.MappedCollectionID {
		return false
	}
	for _, f := range strings.Split(q.Filter, ",") {
		switch strings.TrimSpace(f) {
		case "mapped_collections":
			if doc["collection_type"] != "mapped" {
				return false
			}
		case "guest_collections":
			if doc["collection_type"] != "guest" {
				return false
			}
		}
	}
	return true
}

// ListCollections returns matching collections ordered by display name,
// with id as the tie-break so paging stays deterministic.
func (s *Store) ListCollections(q CollectionQuery) []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []map[string]interface{}
	for _, doc := range s.collections {
		if q.matches(doc) {
			docs = append(docs, cloneDoc(doc))
		}
	}
	sortDocs(docs)
	return docs
}

// GetCollection returns a copy of the collection with the given ID.
func (s *Store) GetCollection(id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[id]
	if !ok {
		return nil, errNotFound("collection", id)
	}
	return cloneDoc(doc), nil
}

// CreateCollection validates doc, assigns it a fresh ID and server-side
// defaults, and stores it. Mapped collections need an existing storage
// gateway; guest collections need an existing mapped collection.
func (s *Store) CreateCollection(doc map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	displayName, _ := doc["display_name"].(string)
	if displayName == "" {
		return nil, errBadRequest("display_name is required")
	}

	collectionType, _ := doc["collection_type"].(string)
	if collectionType == "" {
		collectionType = "mapped"
	}
	switch collectionType {
	case "mapped":
		gatewayID, _ := doc["storage_gateway_id"].(string)
		if gatewayID == "" {
			return nil, errBadRequest("storage_gateway_id is required for mapped collections")
		}
		if _, ok := s.gateways[gatewayID]; !ok {
			return nil, errBadRequest(fmt.Sprintf("unknown storage_gateway_id %s", gatewayID))
		}
	case "guest":
		mappedID, _ := doc["mapped_collection_id"].(string)
		if mappedID == "" {
			return nil, errBadRequest("mapped_collection_id is required for guest collections")
		}
		mapped, ok := s.collections[mappedID]
		if !ok {
			return nil, errBadRequest(fmt.Sprintf("unknown mapped_collection_id %s", mappedID))
		}
		if mapped["collection_type"] != "mapped" {
			return nil, errBadRequest(fmt.Sprintf("collection %s is not a mapped collection", mappedID))
		}
	default:
		return nil, errBadRequest(fmt.Sprintf("invalid collection_type %q", collectionType))
	}

	id := gcstest.NewID()
	created := cloneDoc(doc)
	created["DATA_TYPE"] = "collection#1.0.0"
	created["id"] = id
	created["collection_type"] = collectionType
	created["created_at"] = time.Now().UTC().Format("2006-01-02")
	if _, ok := created["collection_base_path"]; !ok {
		created["collection_base_path"] = "/"
	}
	if _, ok := created["identity_id"]; !ok {
		created["identity_id"] = gcstest.IdentityID
	}
	created["https_url"] = fmt.Sprintf("https://g-%s.example.data.globus.org", shortID(id))

	s.collections[id] = created
	return cloneDoc(created), nil
}

// UpdateCollection merges patch into an existing collection and returns the
// updated copy. The id, DATA_TYPE and collection_type fields cannot be
// changed after creation.
func (s *Store) UpdateCollection(id string, patch map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[id]
	if !ok {
		return nil, errNotFound("collection", id)
	}
	applyPatch(doc, patch, "collection_type")
	return cloneDoc(doc), nil
}

// DeleteCollection removes a collection. Deleting a mapped collection also
// removes its guest collections, and roles scoped to any removed collection
// go with them.
func (s *Store) DeleteCollection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[id]
	if !ok {
		return errNotFound("collection", id)
	}

	removed := map[string]bool{id: true}
	if doc["collection_type"] == "mapped" {
		for guestID, guest := range s.collections {
			if guest["mapped_collection_id"] == id {
				removed[guestID] = true
			}
		}
	}
	for collectionID := range removed {
		delete(s.collections, collectionID)
	}
	for roleID, role := range s.roles {
		if collectionID, ok := role["collection"].(string); ok && removed[collectionID] {
			delete(s.roles, roleID)
		}
	}
	return nil
}

// ListStorageGateways returns all storage gateways in display-name order.
func (s *Store) ListStorageGateways() []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []map[string]interface{}
	for _, doc := range s.gateways {
		docs = append(docs, cloneDoc(doc))
	}
	sortDocs(docs)
	return docs
}

// GetStorageGateway returns a copy of the storage gateway with the given ID.
func (s *Store) GetStorageGateway(id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.gateways[id]
	if !ok {
		return nil, errNotFound("storage gateway", id)
	}
	return cloneDoc(doc), nil
}

// CreateStorageGateway validates doc, assigns it a fresh ID and defaults,
// and stores it. An absent connector_id falls back to the seeded POSIX
// connector.
func (s *Store) CreateStorageGateway(doc map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	displayName, _ := doc["display_name"].(string)
	if displayName == "" {
		return nil, errBadRequest("display_name is required")
	}

	id := gcstest.NewID()
	created := cloneDoc(doc)
	created["DATA_TYPE"] = "storage_gateway#1.0.0"
	created["id"] = id
	if _, ok := created["connector_id"]; !ok {
		created["connector_id"] = gcstest.ConnectorID
	}
	if _, ok := created["high_assurance"]; !ok {
		created["high_assurance"] = false
	}

	s.gateways[id] = created
	return cloneDoc(created), nil
}

// UpdateStorageGateway merges patch into an existing storage gateway and
// returns the updated copy.
func (s *Store) UpdateStorageGateway(id string, patch map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.gateways[id]
	if !ok {
		return nil, errNotFound("storage gateway", id)
	}
	applyPatch(doc, patch)
	return cloneDoc(doc), nil
}

// DeleteStorageGateway removes a storage gateway. Gateways that still have
// collections on them cannot be deleted.
func (s *Store) DeleteStorageGateway(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gateways[id]; !ok {
		return errNotFound("storage gateway", id)
	}
	for _, doc := range s.collections {
		if doc["storage_gateway_id"] == id {
			return errConflict(fmt.Sprintf("storage gateway %s still has collections", id))
		}
	}
	delete(s.gateways, id)
	return nil
}

// ListRoles returns roles in id order. With a collection ID it returns that
// collection's roles; without one it returns endpoint-wide roles. The real
// API additionally narrows to the caller's own roles unless all_roles is
// requested; the mock has no caller identity, so every matching role is
// returned either way.
func (s *Store) ListRoles(collectionID string) []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []map[string]interface{}
	for _, doc := range s.roles {
		roleCollection, _ := doc["collection"].(string)
		if roleCollection != collectionID {
			continue
		}
		docs = append(docs, cloneDoc(doc))
	}
	sortDocs(docs)
	return docs
}

// GetRole returns a copy of the role with the given ID.
func (s *Store) GetRole(id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.roles[id]
	if !ok {
		return nil, errNotFound("role", id)
	}
	return cloneDoc(doc), nil
}

// CreateRole validates doc, assigns it a fresh ID, and stores it. A role
// scoped to a collection must name one that exists.
func (s *Store) CreateRole(doc map[string]interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	principal, _ := doc["principal"].(string)
	if principal == "" {
		return nil, errBadRequest("principal is required")
	}
	role, _ := doc["role"].(string)
	if role == "" {
		return nil, errBadRequest("role is required")
	}
	if collectionID, ok := doc["collection"].(string); ok && collectionID != "" {
		if _, ok := s.collections[collectionID]; !ok {
			return nil, errBadRequest(fmt.Sprintf("unknown collection %s", collectionID))
		}
	}

	id := gcstest.NewID()
	created := cloneDoc(doc)
	created["DATA_TYPE"] = "role#1.0.0"
	created["id"] = id

	s.roles[id] = created
	return cloneDoc(created), nil
}

// DeleteRole removes a role.
func (s *Store) DeleteRole(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return errNotFound("role", id)
	}
	delete(s.roles, id)
	return nil
}

// paginate slices docs per the marker protocol: a marker is the offset of
// the next unread document, handed back to the client as an opaque string.
// Concurrent writes can shift offsets between pages, which a mock can live
// with.
func paginate(docs []map[string]interface{}, marker string, pageSize int) (page []map[string]interface{}, nextMarker string, err error) {
	offset := 0
	if marker != "" {
		offset, err = strconv.Atoi(marker)
		if err != nil || offset < 0 {
			return nil, "", errBadRequest(fmt.Sprintf("invalid marker %q", marker))
		}
	}
	if offset >= len(docs) {
		return nil, "", nil
	}
	end := offset + pageSize
	if end > len(docs) {
		return docs[offset:], "", nil
	}
	return docs[offset:end], strconv.Itoa(end), nil
}

// cloneDoc shallow-copies a document. Store writes never mutate nested
// values in place, so sharing them is safe.
func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		clone[k] = v
	}
	return clone
}

// applyPatch merges patch into doc, skipping the always-immutable id and
// DATA_TYPE fields plus any extra immutable keys.
func applyPatch(doc, patch map[string]interface{}, immutable ...string) {
	skip := map[string]bool{"id": true, "DATA_TYPE": true}
	for _, key := range immutable {
		skip[key] = true
	}
	for k, v := range patch {
		if skip[k] {
			continue
		}
		doc[k] = v
	}
}

// sortDocs orders documents by display name with id as the tie-break, the
// order listings are served in.
func sortDocs(docs []map[string]interface{}) {
	sort.Slice(docs, func(i, j int) bool {
		ni, _ := docs[i]["display_name"].(string)
		nj, _ := docs[j]["display_name"].(string)
		if ni != nj {
			return ni < nj
		}
		ii, _ := docs[i]["id"].(string)
		ij, _ := docs[j]["id"].(string)
		return ii < ij
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
