package gcs

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

const apiCollections = "/collections"

// collectionPattern accepts any 1.x collection document
const collectionPattern = `collection#1\.\d+\.\d+`

// ============================================================================
// COLLECTION OPERATIONS
// ============================================================================

// ListCollectionsOptions filters and pages ListCollections
type ListCollectionsOptions struct {
	// Include adds extra fields to the returned documents
	// (e.g. "private_policies")
	Include []string
	// MappedCollectionID restricts the listing to guest collections of the
	// given mapped collection
	MappedCollectionID string
	// Filter restricts the listing, e.g. "mapped_collections" or
	// "managed_by_me"
	Filter string
	// Marker resumes a paged listing where the previous page stopped
	Marker string
	// PageSize caps the number of documents per page; 0 uses the server
	// default
	PageSize int
}

// ListCollections lists the collections on this endpoint. Iterate the
// response's Items for the collection documents; the envelope's "marker"
// field, when present, points at the next page (see CollectionsPager).
func (c *Client) ListCollections(ctx context.Context, opts *ListCollectionsOptions) (*Response, error) {
	req := c.http.R().SetContext(ctx)
	c.setAuth(req)

	if opts != nil {
		if len(opts.Include) > 0 {
			req.SetQueryParam("include", joinInclude(opts.Include))
		}
		if opts.MappedCollectionID != "" {
			req.SetQueryParam("mapped_collection_id", opts.MappedCollectionID)
		}
		if opts.Filter != "" {
			req.SetQueryParam("filter", opts.Filter)
		}
		if opts.Marker != "" {
			req.SetQueryParam("marker", opts.Marker)
		}
		if opts.PageSize > 0 {
			req.SetQueryParam("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	resp, err := req.Get(apiCollections)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToListCollections, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewResponse(resp), nil
}

// GetCollection retrieves a single collection document. Extra include
// values (e.g. "private_policies") are passed through to the API.
func (c *Client) GetCollection(ctx context.Context, collectionID string, include ...string) (*UnpackingResponse, error) {
	path := apiCollections + "/" + buildPath(collectionID)

	req := c.http.R().SetContext(ctx)
	c.setAuth(req)

	if len(include) > 0 {
		req.SetQueryParam("include", joinInclude(include))
	}

	resp, err := req.Get(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToGetCollection, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), collectionPattern)
}

// CreateCollection creates a collection from doc. The document is validated
// locally before the request goes out; the response unpacks to the created
// collection document.
func (c *Client) CreateCollection(ctx context.Context, doc *CollectionDocument) (*UnpackingResponse, error) {
	doc.ensureDataType()
	if err := validateDocument("collection", doc); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc)
	c.setAuth(req)
	resp, err := req.Post(apiCollections)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToCreateCollection, err)
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), collectionPattern)
}

// UpdateCollection applies a partial update to a collection. Unset document
// fields are left alone. Whether the response unpacks to the updated
// document or falls back to the result envelope depends on the server
// version; callers should handle both.
func (c *Client) UpdateCollection(ctx context.Context, collectionID string, doc *CollectionDocument) (*UnpackingResponse, error) {
	doc.ensureDataType()
	path := apiCollections + "/" + buildPath(collectionID)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc)
	c.setAuth(req)
	resp, err := req.Patch(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToUpdateCollection, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), collectionPattern)
}

// DeleteCollection deletes a collection. The result envelope's "detail"
// field reads "success" on completion.
func (c *Client) DeleteCollection(ctx context.Context, collectionID string) (*Response, error) {
	path := apiCollections + "/" + buildPath(collectionID)

	req := c.http.R().SetContext(ctx)
	c.setAuth(req)
	resp, err := req.Delete(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToDeleteCollection, err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return nil, c.handleError(resp)
	}

	return NewResponse(resp), nil
}
