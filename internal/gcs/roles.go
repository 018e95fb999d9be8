package gcs

import (
	"context"
	"fmt"
	"net/http"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

const apiRoles = "/roles"

// rolePattern accepts any 1.x role document
const rolePattern = `role#1\.\d+\.\d+`

// ============================================================================
// ROLE OPERATIONS
// ============================================================================

// ListRolesOptions filters ListRoles
type ListRolesOptions struct {
	// CollectionID lists roles on that collection instead of the endpoint
	CollectionID string
	// IncludeAllRoles lists every role visible to the caller, not just
	// their own (requires an administrator role)
	IncludeAllRoles bool
}

// ListRoles lists roles on the endpoint or, with CollectionID set, on a
// collection. Iterate the response's Items for the role documents.
func (c *Client) ListRoles(ctx context.Context, opts *ListRolesOptions) (*Response, error) {
	req := c.http.R().SetContext(ctx)
	c.setAuth(req)

	if opts != nil {
		if opts.CollectionID != "" {
			req.SetQueryParam("collection_id", opts.CollectionID)
		}
		if opts.IncludeAllRoles {
			req.SetQueryParam("include", "all_roles")
		}
	}

	resp, err := req.Get(apiRoles)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToListRoles, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewResponse(resp), nil
}

// GetRole retrieves a single role document
func (c *Client) GetRole(ctx context.Context, roleID string) (*UnpackingResponse, error) {
	path := apiRoles + "/" + buildPath(roleID)

	req := c.http.R().SetContext(ctx)
	c.setAuth(req)
	resp, err := req.Get(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToGetRole, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), rolePattern)
}

// CreateRole grants a role to a principal. The document is validated
// locally before the request goes out.
func (c *Client) CreateRole(ctx context.Context, doc *RoleDocument) (*UnpackingResponse, error) {
	doc.ensureDataType()
	if err := validateDocument("role", doc); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc)
	c.setAuth(req)
	resp, err := req.Post(apiRoles)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToCreateRole, err)
	}

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), rolePattern)
}

// DeleteRole revokes a role
func (c *Client) DeleteRole(ctx context.Context, roleID string) (*Response, error) {
	path := apiRoles + "/" + buildPath(roleID)

	req := c.http.R().SetContext(ctx)
	c.setAuth(req)
	resp, err := req.Delete(path)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToDeleteRole, err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return nil, c.handleError(resp)
	}

	return NewResponse(resp), nil
}
