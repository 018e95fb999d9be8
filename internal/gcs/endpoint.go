package gcs

import (
	"context"
	"fmt"
	"net/http"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

const apiEndpoint = "/endpoint"

// endpointPattern accepts any 1.x endpoint document
const endpointPattern = `endpoint#1\.\d+\.\d+`

// UpdateEndpointOptions tunes UpdateEndpoint behavior
type UpdateEndpointOptions struct {
	// Include asks the API to return the named documents in the result
	// envelope. With Include = []string{"endpoint"} the response unpacks to
	// the updated endpoint document instead of the bare result message.
	Include []string
}

// GetEndpoint retrieves the endpoint document for this GCS deployment
func (c *Client) GetEndpoint(ctx context.Context) (*UnpackingResponse, error) {
	req := c.http.R().SetContext(ctx)
	c.setAuth(req)
	resp, err := req.Get(apiEndpoint)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToGetEndpoint, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), endpointPattern)
}

// UpdateEndpoint replaces fields of the endpoint document. Without options
// the API answers with a plain result envelope, which surfaces as the
// fallback view; pass Include "endpoint" to get the updated document back.
func (c *Client) UpdateEndpoint(ctx context.Context, doc *EndpointDocument, opts *UpdateEndpointOptions) (*UnpackingResponse, error) {
	doc.ensureDataType()

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(doc)
	c.setAuth(req)

	if opts != nil && len(opts.Include) > 0 {
		req.SetQueryParam("include", joinInclude(opts.Include))
	}

	resp, err := req.Put(apiEndpoint)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToUpdateEndpoint, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), endpointPattern)
}
