package gcs

import (
	"context"
	"fmt"
	"net/http"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

const apiInfo = "/info"

// infoPattern accepts any 1.x info document
const infoPattern = `info#1\.\d+\.\d+`

// GetInfo retrieves deployment information for the GCS Manager: its version
// and the connectors it supports. The endpoint allows unauthenticated
// access, so this works on a client built with NewClientNoAuth. The result
// unpacks to the info document; the full envelope also lists connector
// documents, reachable via Items on FullData.
func (c *Client) GetInfo(ctx context.Context) (*UnpackingResponse, error) {
	req := c.http.R().SetContext(ctx)
	c.setAuth(req)
	resp, err := req.Get(apiInfo)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.MsgFailedToGetInfo, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.handleError(resp)
	}

	return NewUnpackingResponse(NewResponse(resp), infoPattern)
}
