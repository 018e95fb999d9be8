package gcs

import (
	"encoding/json"
	"iter"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// defaultIterKey is the top-level envelope key whose value holds list items.
// GCS Manager list responses keep their items under "data".
const defaultIterKey = "data"

// Response wraps a completed GCS Manager API response. The body is decoded
// as JSON exactly once, at construction time; all accessors read from that
// cached value. A Response is tied to a single HTTP round-trip and holds no
// state shared with other responses.
//
// A Response is not safe for concurrent mutation (SetIterKey); configure it
// before sharing.
type Response struct {
	status  int
	header  http.Header
	body    []byte
	full    interface{} // decoded JSON body, nil when the body is not valid JSON
	iterKey string
}

// NewResponse wraps a completed resty response.
func NewResponse(resp *resty.Response) *Response {
	return NewResponseFromBody(resp.StatusCode(), resp.Header(), resp.Body())
}

// NewResponseFromBody builds a Response from raw parts. Mainly useful for
// tests and custom transports; API methods wrap their own transport results.
func NewResponseFromBody(status int, header http.Header, body []byte) *Response {
	r := &Response{
		status:  status,
		header:  header,
		body:    body,
		iterKey: defaultIterKey,
	}
	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		r.full = parsed
	}
	return r
}

// HTTPStatus returns the HTTP status code of the underlying response.
func (r *Response) HTTPStatus() int {
	return r.status
}

// Header returns the headers of the underlying response.
func (r *Response) Header() http.Header {
	return r.header
}

// RawBody returns the response body exactly as received.
func (r *Response) RawBody() []byte {
	return r.body
}

// FullData returns the decoded JSON body in its entirety, whatever its
// shape. It is nil when the body could not be parsed as JSON.
func (r *Response) FullData() interface{} {
	return r.full
}

// Data returns the view callers should normally read. For a plain Response
// this is the same as FullData; wrapper types narrow it.
func (r *Response) Data() interface{} {
	return r.full
}

// Get returns the value stored under key in the current data view. The
// second return is false when the view is not a JSON object or the key is
// absent.
func (r *Response) Get(key string) (interface{}, bool) {
	return lookup(r.Data(), key)
}

// Has reports whether key is present in the current data view.
func (r *Response) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// IterKey returns the envelope key Items iterates over.
func (r *Response) IterKey() string {
	return r.iterKey
}

// SetIterKey changes the envelope key Items iterates over. The default is
// "data".
func (r *Response) SetIterKey(key string) {
	r.iterKey = key
}

// Items returns a restartable sequence over the elements stored under the
// iteration key of the current data view. The sequence is re-derived from
// the view each time iteration begins; it is empty when the view is not a
// JSON object or the key does not hold an array.
func (r *Response) Items() iter.Seq[interface{}] {
	return items(r.Data, r.iterKey)
}

// lookup reads key out of view when view is a JSON object.
func lookup(view interface{}, key string) (interface{}, bool) {
	m, ok := view.(map[string]interface{})
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// items builds a lazy sequence over view()[key]. The view is resolved when
// iteration starts, not when the sequence is built, so a wrapper that
// narrows its view later still iterates the narrowed result.
func items(view func() interface{}, key string) iter.Seq[interface{}] {
	return func(yield func(interface{}) bool) {
		list, ok := lookup(view(), key)
		if !ok {
			return
		}
		seq, ok := list.([]interface{})
		if !ok {
			return
		}
		for _, item := range seq {
			if !yield(item) {
				return
			}
		}
	}
}
