package gcstest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

// Server is an httptest-backed GCS Manager stub. Routes are registered per
// method and path and answer with a fixed status and body, which keeps
// multi-route tests (pagination, CLI flows) out of hand-rolled handlers.
type Server struct {
	*httptest.Server
	mux *http.ServeMux
}

// NewServer starts a stub server with no routes. Callers own shutdown via
// Close.
func NewServer() *Server {
	mux := http.NewServeMux()
	return &Server{Server: httptest.NewServer(mux), mux: mux}
}

// Register answers method requests for path with status and body. A string
// or []byte body is written verbatim, anything else is marshaled as JSON.
func (s *Server) Register(method, path string, status int, body interface{}) {
	s.RegisterFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch b := body.(type) {
		case string:
			io.WriteString(w, b)
		case []byte:
			w.Write(b)
		default:
			json.NewEncoder(w).Encode(b)
		}
	})
}

// RegisterFunc mounts a custom handler for method and path, for routes that
// need to inspect queries or bodies.
func (s *Server) RegisterFunc(method, path string, handler http.HandlerFunc) {
	s.mux.HandleFunc(method+" "+path, handler)
}
