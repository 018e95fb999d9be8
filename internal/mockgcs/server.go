package mockgcs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/webskin/gcs-go-cli/internal/gcstest"
)

// Server serves the mock GCS Manager API over HTTP.
type Server struct {
	cfg    *Config
	store  *Store
	logger zerolog.Logger
}

// NewServer wires a server around cfg and store.
func NewServer(cfg *Config, store *Store, logger zerolog.Logger) *Server {
	return &Server{cfg: cfg, store: store, logger: logger}
}

// Handler builds the HTTP routing tree. Routes mirror the real manager's
// layout, so a client pointed at this server needs no base path tweaks.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.requireBearer)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, errNotFound("route", req.Method+" "+req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed,
			gcstest.ErrorEnvelope(http.StatusMethodNotAllowed, "method_not_allowed",
				fmt.Sprintf("%s not allowed on %s", req.Method, req.URL.Path)))
	})

	r.Get("/info", s.getInfo)
	r.Get("/endpoint", s.getEndpoint)
	r.Put("/endpoint", s.updateEndpoint)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", s.listCollections)
		r.Post("/", s.createCollection)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getCollection)
			r.Patch("/", s.updateCollection)
			r.Delete("/", s.deleteCollection)
		})
	})

	r.Route("/storage_gateways", func(r chi.Router) {
		r.Get("/", s.listStorageGateways)
		r.Post("/", s.createStorageGateway)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getStorageGateway)
			r.Patch("/", s.updateStorageGateway)
			r.Delete("/", s.deleteStorageGateway)
		})
	})

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", s.listRoles)
		r.Post("/", s.createRole)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRole)
			r.Delete("/", s.deleteRole)
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("request.complete")
	})
}

// requireBearer rejects requests without the configured bearer token. With
// no token configured, anything goes. /info stays open either way, like the
// real manager, so discovery works before a token exists.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" && r.URL.Path != "/info" &&
			r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			s.writeJSON(w, http.StatusUnauthorized,
				gcstest.ErrorEnvelope(http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	info, connector := s.store.Info()
	s.writeResult(w, http.StatusOK, info, connector)
}

func (s *Server) getEndpoint(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, http.StatusOK, s.store.Endpoint())
}

func (s *Server) updateEndpoint(w http.ResponseWriter, r *http.Request) {
	patch, err := decodeBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc := s.store.UpdateEndpoint(patch)
	if includeRequested(r, "endpoint") {
		s.writeResult(w, http.StatusOK, doc)
		return
	}
	s.writeResult(w, http.StatusOK)
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	// The include parameter is accepted and ignored: mock documents
	// already carry every field they will ever have.
	query := r.URL.Query()
	docs := s.store.ListCollections(CollectionQuery{
		MappedCollectionID: query.Get("mapped_collection_id"),
		Filter:             query.Get("filter"),
	})
	s.writePage(w, r, docs)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetCollection(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, doc)
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.store.CreateCollection(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusCreated, doc)
}

func (s *Server) updateCollection(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.store.UpdateCollection(chi.URLParam(r, "id"), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, doc)
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCollection(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK)
}

func (s *Server) listStorageGateways(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, s.store.ListStorageGateways())
}

func (s *Server) getStorageGateway(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetStorageGateway(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, doc)
}

func (s *Server) createStorageGateway(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.store.CreateStorageGateway(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusCreated, doc)
}

func (s *Server) updateStorageGateway(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.store.UpdateStorageGateway(chi.URLParam(r, "id"), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, doc)
}

func (s *Server) deleteStorageGateway(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteStorageGateway(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK)
}

func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	// include=all_roles widens the real API from "your roles" to all of
	// them. The mock has no caller identity, so it always serves all.
	docs := s.store.ListRoles(r.URL.Query().Get("collection_id"))
	s.writeResult(w, http.StatusOK, docs...)
}

func (s *Server) getRole(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetRole(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, doc)
}

func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.store.CreateRole(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusCreated, doc)
}

func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRole(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK)
}

// writePage serves one page of docs, honoring the marker and page_size
// query parameters and advertising the next marker when more remain.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, docs []map[string]interface{}) {
	pageSize := s.cfg.PageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, errBadRequest(fmt.Sprintf("invalid page_size %q", raw)))
			return
		}
		pageSize = n
	}

	page, next, err := paginate(docs, r.URL.Query().Get("marker"), pageSize)
	if err != nil {
		s.writeError(w, err)
		return
	}

	env := gcstest.ResultEnvelope("success", page...)
	env["has_next_page"] = next != ""
	if next != "" {
		env["marker"] = next
	}
	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) writeResult(w http.ResponseWriter, status int, docs ...map[string]interface{}) {
	env := gcstest.ResultEnvelope("success", docs...)
	env["http_response_code"] = status
	s.writeJSON(w, status, env)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = &Error{Status: http.StatusInternalServerError, Code: "internal_error", Message: err.Error()}
	}
	s.writeJSON(w, apiErr.Status, gcstest.ErrorEnvelope(apiErr.Status, apiErr.Code, apiErr.Message))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("encoding response")
	}
}

func decodeBody(r *http.Request) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, errBadRequest("request body is not a JSON object: " + err.Error())
	}
	return doc, nil
}

// includeRequested reports whether the comma-separated include parameter
// names want.
func includeRequested(r *http.Request, want string) bool {
	for _, inc := range strings.Split(r.URL.Query().Get("include"), ",") {
		if strings.TrimSpace(inc) == want {
			return true
		}
	}
	return false
}
