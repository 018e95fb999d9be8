package gcs

import (
	"fmt"
	"iter"
	"regexp"

	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

// unpackKey is the envelope key whose array is searched during unpacking.
const unpackKey = "data"

// MatchFunc reports whether a single element of an envelope's "data" array
// is the object the caller is after. Implementations must be pure: no side
// effects, no mutation of the candidate.
type MatchFunc func(item map[string]interface{}) bool

// DefaultUnpackingMatch compiles pattern and returns a MatchFunc that
// accepts an element when its "DATA_TYPE" field is a string whose entire
// value matches the pattern. Elements without a DATA_TYPE, or with a
// non-string one, never match. An invalid pattern is reported immediately.
func DefaultUnpackingMatch(pattern string) (MatchFunc, error) {
	// \A and \z pin the pattern to the whole value, so "collection#1.0.0"
	// cannot match inside "xcollection#1.0.0y".
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", errmsg.MsgInvalidMatchPattern, pattern, err)
	}
	return func(item map[string]interface{}) bool {
		raw, ok := item["DATA_TYPE"]
		if !ok {
			return false
		}
		s, ok := raw.(string)
		if !ok {
			return false
		}
		return re.MatchString(s)
	}, nil
}

// unpack scans fullData["data"] in order and returns the first element that
// is a JSON object accepted by match. Elements of other shapes are skipped.
// The second return is false when fullData is not a JSON object, when it has
// no "data" array, or when nothing matches. fullData is never modified; the
// returned object is a reference into it, not a copy.
func unpack(fullData interface{}, match MatchFunc) (map[string]interface{}, bool) {
	envelope, ok := fullData.(map[string]interface{})
	if !ok {
		return nil, false
	}
	list, ok := envelope[unpackKey].([]interface{})
	if !ok {
		return nil, false
	}
	for _, element := range list {
		item, ok := element.(map[string]interface{})
		if !ok {
			continue
		}
		if match(item) {
			return item, true
		}
	}
	return nil, false
}

// UnpackingResponse narrows a Response whose envelope may wrap the actual
// resource inside a "data" array. GCS is not consistent here: some endpoints
// return the resource flat, others wrap it in a result envelope holding zero
// or more typed objects. Data resolves that ambiguity by searching the array
// for the first object whose DATA_TYPE the match function accepts, falling
// back to the whole envelope when there is nothing to find.
//
// The search runs at most once per response, on first access, and the
// outcome is kept for the lifetime of the wrapper. Like Response, an
// UnpackingResponse is not safe for unsynchronized concurrent first access.
type UnpackingResponse struct {
	*Response
	match     MatchFunc
	didUnpack bool
	unpacked  map[string]interface{} // nil means the search found nothing
}

// NewUnpackingResponse wraps resp with the default DATA_TYPE matcher built
// from pattern. It fails only when the pattern does not compile.
func NewUnpackingResponse(resp *Response, pattern string) (*UnpackingResponse, error) {
	match, err := DefaultUnpackingMatch(pattern)
	if err != nil {
		return nil, err
	}
	return NewUnpackingResponseFunc(resp, match), nil
}

// NewUnpackingResponseFunc wraps resp with a caller-supplied match function.
func NewUnpackingResponseFunc(resp *Response, match MatchFunc) *UnpackingResponse {
	return &UnpackingResponse{
		Response: resp,
		match:    match,
	}
}

// Data returns the matched object from the envelope's "data" array, or the
// full envelope when no element matches. The underlying search happens on
// the first call only; later calls return the remembered outcome. The
// fallback includes every envelope field, "data" and sibling metadata alike,
// so callers expecting just the resource should check for the fields they
// need.
func (r *UnpackingResponse) Data() interface{} {
	if !r.didUnpack {
		r.unpacked, _ = unpack(r.Response.FullData(), r.match)
		r.didUnpack = true
	}
	if r.unpacked != nil {
		return r.unpacked
	}
	return r.Response.FullData()
}

// Get returns the value stored under key in the resolved data view,
// triggering the unpacking search if it has not run yet.
func (r *UnpackingResponse) Get(key string) (interface{}, bool) {
	return lookup(r.Data(), key)
}

// Has reports whether key is present in the resolved data view.
func (r *UnpackingResponse) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Items returns a restartable sequence over the iteration key of the
// resolved data view.
func (r *UnpackingResponse) Items() iter.Seq[interface{}] {
	return items(r.Data, r.IterKey())
}
