package gcs

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

const apiStorageGateways = "/storage_gateways"

// storageGatewayPattern accepts any 1.x storage gateway document
const storageGatewayPattern = `storage_gateway#1\.\d+\.\d+`

// ============================================================================
// STORAGE GATEWAY OPERATIONS
// ============================================================================

// ListStorageGatewaysOptions filters and pages ListStorageGateways
type ListStorageGatewaysOptions struct {
	// Include adds extra fields to the returned documents
	// (e.g. "private_policies", "accounts")
	Include []string
	// Marker resumes a paged listing where the previous page stopped
	Marker string
	// PageSize caps the number of documents per page; 0 uses the server
	// default
	PageSize int
}

// ListStorageGateways lists the storage gateways on this endpoint. Iterate
// the response's Items for the gateway documents.
func (c *Client) ListStorageGateways(ctx context.Context, opts *ListStorageGatewaysOptions) (*Response, error) {
	req := c.http.R().SetContext(ctx)
	c.setAuth(req)

	if opts != nil {
		if len(opts.Include) > 0 {
			req.SetQueryParam("include", joinInclude(opts.Include))
		}
		if opts.Marker != "" {
			req.SetQueryParam("marker", opts.Marker)
		}
		if opts.PageSize > 0 {
			req.SetQueryParam("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	resp, err := req.Get(apiStorageGateways)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToListStorageGateways, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewResponse(resp), nil
}

// GetStorageGateway retrieves a single storage gateway document
func (c *Client) GetStorageGateway(ctx context.Context, storageGatewayID string, include ...string) (*UnpackingResponse, error) {
	path := apiStorageGateways + "/" + buildPath(storageGatewayID)

	req := c.http.R().SetContext(ctx)
	c.setAuth(req)

	if len(include) > 0 {
		req.SetQueryParam("include", joinInclude(include))
	}

	resp, err := req.Get(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToGetStorageGateway, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), storageGatewayPattern)
}

// CreateStorageGateway creates a storage gateway from doc. The document is
// validated locally before the request goes out.
func (c *Client) CreateStorageGateway(ctx context.Context, doc *StorageGatewayDocument) (*UnpackingResponse, error) {
	doc.ensureDataType()
	if err := validateDocument("storage gateway", doc); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc)
	c.setAuth(req)
	resp, err := req.Post(apiStorageGateways)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToCreateStorageGateway, err)
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), storageGatewayPattern)
}

// UpdateStorageGateway applies a partial update to a storage gateway
func (c *Client) UpdateStorageGateway(ctx context.Context, storageGatewayID string, doc *StorageGatewayDocument) (*UnpackingResponse, error) {
	doc.ensureDataType()
	path := apiStorageGateways + "/" + buildPath(storageGatewayID)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc)
	c.setAuth(req)
	resp, err := req.Patch(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToUpdateStorageGateway, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), storageGatewayPattern)
}

// DeleteStorageGateway deletes a storage gateway
func (c *Client) DeleteStorageGateway(ctx context.Context, storageGatewayID string) (*Response, error) {
	path := apiStorageGateways + "/" + buildPath(storageGatewayID)

	req := c.http.R().SetContext(ctx)
	c.setAuth(req)
	resp, err := req.Delete(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToDeleteStorageGateway, err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return nil, c.handleError(resp)
	}

	return NewResponse(resp), nil
}
