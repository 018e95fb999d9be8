package gcs

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	errmsg "github.com/webskin/gcs-go-cli/internal/errors"
)

// Client represents a GCS Manager API HTTP client
type Client struct {
	http             *resty.Client
	config           *Config
	structuredLogger func(level, message string, fields map[string]interface{})
}

// APIError represents a structured API error with status code and message
// This allows callers to inspect the status code without parsing error strings
type APIError struct {
	StatusCode int    // HTTP status code
	Code       string // Machine-readable error code from the API (e.g. "not_found")
	Message    string // Error message from the API
	RawBody    string // Raw response body for debugging
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// errorEnvelope is the JSON shape of GCS Manager error bodies
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// NewClient creates a new GCS Manager client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return newClientInternal(config)
}

// NewClientNoAuth creates a client without authentication validation
// (for unauthenticated endpoints like /info)
func NewClientNoAuth(config *Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf(errmsg.MsgBaseURLRequired)
	}

	return newClientInternal(config)
}

// newClientInternal creates the actual client (shared logic)
func newClientInternal(config *Config) (*Client, error) {
	// Make a defensive copy of the config to prevent external mutations
	configCopy := &Config{
		BaseURL:            config.BaseURL,
		AccessToken:        config.AccessToken,
		Timeout:            config.Timeout,
		Verbose:            config.Verbose,
		InsecureSkipVerify: config.InsecureSkipVerify,
		OutputFormat:       config.OutputFormat,
		Color:              config.Color,
	}

	client := resty.New().
		SetBaseURL(normalizeBaseURL(configCopy.BaseURL)).
		SetTimeout(time.Duration(configCopy.Timeout) * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// IMPORTANT: Only retry on network errors or 5xx for idempotent methods (GET, HEAD)
			// This prevents duplicate operations from POST/PATCH/DELETE retries.
			// Non-idempotent methods are NOT retried to avoid creating duplicate
			// resources or applying the same modification multiple times.
			if r == nil {
				// Network error, safe to retry
				return err != nil
			}
			method := r.Request.Method
			isIdempotent := method == http.MethodGet || method == http.MethodHead
			return isIdempotent && (err != nil || r.StatusCode() >= 500)
		})

	// Configure TLS to skip certificate verification if requested
	if configCopy.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})
	}

	gcsClient := &Client{
		http:             client,
		config:           configCopy,
		structuredLogger: nil,
	}

	if configCopy.Verbose {
		enableSecureDebugMode(client, gcsClient)
	}

	// Note: Authentication is NOT set at client level
	// Each API method calls setAuth() so the bearer token is attached at the
	// request level and unauthenticated endpoints stay token-free

	return gcsClient, nil
}

// normalizeBaseURL turns a bare GCS address into a full manager API URL.
// Endpoint documents carry addresses like "abc123.08cc.data.globus.org",
// which serve the manager API under /api over HTTPS. Values that already
// carry a scheme are used verbatim.
func normalizeBaseURL(raw string) string {
	if strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/")
	}
	return "https://" + strings.TrimSuffix(raw, "/") + "/api"
}

const maxBodyLogLength = 2048 // Maximum length for logged request/response bodies

// AddBeforeRequestHook adds a middleware function that runs before each request
func (c *Client) AddBeforeRequestHook(hook func(*resty.Request) error) {
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return hook(req)
	})
}

// AddAfterResponseHook adds a middleware function that runs after each response
func (c *Client) AddAfterResponseHook(hook func(*resty.Response) error) {
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		return hook(resp)
	})
}

// SetStructuredLogger sets a structured logging function
// The logger receives: level ("info", "warn", "error"), message, and optional fields
func (c *Client) SetStructuredLogger(logger func(level, message string, fields map[string]interface{})) {
	c.structuredLogger = logger
}

// log writes a log message using structured logger if available, otherwise falls back to stderr
func (c *Client) log(level, message string, fields map[string]interface{}) {
	if c.structuredLogger != nil {
		c.structuredLogger(level, message, fields)
	} else if c.config.Verbose {
		// Fallback to stderr for verbose mode
		fmt.Fprintf(os.Stderr, "[%s] %s", level, message)
		if len(fields) > 0 {
			fmt.Fprintf(os.Stderr, " %v", fields)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}
}

// truncateString truncates a string to maxLength and adds a truncation notice
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return fmt.Sprintf("%s... [TRUNCATED: %d more bytes]", s[:maxLength], len(s)-maxLength)
}

// setAuth sets bearer token authentication on a request when a token is
// configured. Requests without a token are sent unauthenticated, which the
// API accepts for a handful of endpoints (e.g. /info).
func (c *Client) setAuth(req *resty.Request) {
	if c.config.AccessToken != "" {
		req.SetAuthToken(c.config.AccessToken)
	}
}

// enableSecureDebugMode enables verbose logging with sensitive data redaction
func enableSecureDebugMode(httpClient *resty.Client, gcsClient *Client) {
	sensitiveHeaders := sensitiveHeadersMap()

	// Log response details (after receiving)
	// We log both request and response here because the request details
	// are only fully available after the request is sent
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logRequest(resp, sensitiveHeaders, gcsClient)
		logResponse(resp, sensitiveHeaders, gcsClient)
		return nil
	})
}

// sensitiveHeadersMap returns the map of sensitive headers that should be redacted
func sensitiveHeadersMap() map[string]bool {
	return map[string]bool{
		"cookie":           true,
		"set-cookie":       true,
		"authorization":    true,
		"authentication":   true,
		"www-authenticate": true,
		"x-api-key":        true,
	}
}

// logRequest logs HTTP request details with sensitive data redaction
func logRequest(resp *resty.Response, sensitiveHeaders map[string]bool, gcsClient *Client) {
	req := resp.Request.RawRequest

	// Use structured logging if available
	if gcsClient != nil && gcsClient.structuredLogger != nil {
		url := req.URL.Path
		if req.URL.RawQuery != "" {
			url += "?" + req.URL.RawQuery
		}
		gcsClient.structuredLogger("info", "HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    url,
			"host":   req.Host,
		})
	} else {
		fmt.Fprintf(os.Stderr, "==============================================================================\n")
		fmt.Fprintf(os.Stderr, "~~~ REQUEST ~~~\n")
		// Log full URL including query parameters
		url := req.URL.Path
		if req.URL.RawQuery != "" {
			url += "?" + req.URL.RawQuery
		}
		fmt.Fprintf(os.Stderr, "%s  %s  %s\n", req.Method, url, req.Proto)
		fmt.Fprintf(os.Stderr, "HOST   : %s\n", req.Host)
		fmt.Fprintf(os.Stderr, "HEADERS:\n")
		for key, values := range req.Header {
			keyLower := strings.ToLower(key)
			if sensitiveHeaders[keyLower] {
				fmt.Fprintf(os.Stderr, "\t%s: [REDACTED]\n", key)
			} else {
				for _, value := range values {
					fmt.Fprintf(os.Stderr, "\t%s: %s\n", key, value)
				}
			}
		}
		fmt.Fprintf(os.Stderr, "BODY   :\n")
		logBody(os.Stderr, resp.Request.Body)
		fmt.Fprintf(os.Stderr, "------------------------------------------------------------------------------\n")
	}
}

// logResponse logs HTTP response details with sensitive data redaction
func logResponse(resp *resty.Response, sensitiveHeaders map[string]bool, gcsClient *Client) {
	// Use structured logging if available
	if gcsClient != nil && gcsClient.structuredLogger != nil {
		fields := map[string]interface{}{
			"status":   resp.Status(),
			"duration": resp.Time().String(),
		}
		if len(resp.Body()) > 0 {
			fields["body_size"] = len(resp.Body())
		}
		gcsClient.structuredLogger("info", "HTTP Response", fields)
	} else {
		fmt.Fprintf(os.Stderr, "~~~ RESPONSE ~~~\n")
		fmt.Fprintf(os.Stderr, "STATUS       : %s\n", resp.Status())
		fmt.Fprintf(os.Stderr, "PROTO        : %s\n", resp.Proto())
		fmt.Fprintf(os.Stderr, "RECEIVED AT  : %v\n", time.Now().Format(time.RFC3339Nano))
		fmt.Fprintf(os.Stderr, "TIME DURATION: %v\n", resp.Time())
		fmt.Fprintf(os.Stderr, "HEADERS      :\n")
		for key, values := range resp.Header() {
			keyLower := strings.ToLower(key)
			if sensitiveHeaders[keyLower] {
				fmt.Fprintf(os.Stderr, "\t%s: [REDACTED]\n", key)
			} else {
				for _, value := range values {
					fmt.Fprintf(os.Stderr, "\t%s: %s\n", key, value)
				}
			}
		}
		fmt.Fprintf(os.Stderr, "BODY         :\n")
		if len(resp.Body()) > 0 {
			body := string(resp.Body())
			fmt.Fprintf(os.Stderr, "%s\n", truncateString(body, maxBodyLogLength))
		} else {
			fmt.Fprintf(os.Stderr, "***** NO CONTENT *****\n")
		}
		fmt.Fprintf(os.Stderr, "==============================================================================\n")
	}
}

// logBody safely logs a request body with truncation and type handling
func logBody(w io.Writer, body interface{}) {
	if body == nil {
		fmt.Fprintf(w, "***** NO CONTENT *****\n")
		return
	}

	var bodyStr string
	switch v := body.(type) {
	case string:
		bodyStr = v
	case []byte:
		bodyStr = string(v)
	default:
		// For other types, marshal as JSON if possible
		if jsonBytes, err := json.Marshal(v); err == nil {
			bodyStr = string(jsonBytes)
		} else {
			bodyStr = fmt.Sprintf("%v", v)
		}
	}

	fmt.Fprintf(w, "%s\n", truncateString(bodyStr, maxBodyLogLength))
}

// handleError parses error responses from the API and returns a structured APIError
func (c *Client) handleError(resp *resty.Response) error {
	rawBody := string(resp.Body())

	var errResp errorEnvelope
	if err := json.Unmarshal(resp.Body(), &errResp); err == nil && (errResp.Message != "" || errResp.Code != "") {
		message := errResp.Message
		if message == "" {
			message = errResp.Detail
		}
		if message == "" {
			message = errResp.Code
		}
		return &APIError{
			StatusCode: resp.StatusCode(),
			Code:       errResp.Code,
			Message:    message,
			RawBody:    rawBody,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    rawBody,
		RawBody:    rawBody,
	}
}

// buildPath constructs a URL path with properly escaped segments
func buildPath(segments ...string) string {
	var escaped []string
	for _, seg := range segments {
		if seg != "" {
			escaped = append(escaped, url.PathEscape(seg))
		}
	}
	return strings.Join(escaped, "/")
}

// joinInclude renders an include list the way the API expects it: a single
// comma-separated query value
func joinInclude(include []string) string {
	return strings.Join(include, ",")
}
