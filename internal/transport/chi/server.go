// Package chi exposes a read-only HTTP preview of the materialized graph:
// collection listings, node lookups with computed fields, health and
// metrics. The build pipeline is the real consumer; this surface exists
// for inspecting a build.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/store"
	"github.com/sitegraph-io/sitegraph/internal/version"
)

// Server serves the materialized graph store.
type Server struct {
	store  store.Store
	logger *zap.Logger
}

// NewServer creates a preview server over a materialized store.
func NewServer(st store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: st, logger: logger}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/collections", s.handleCollections)
	r.Get("/collections/{type}/nodes", s.handleNodes)
	r.Get("/collections/{type}/nodes/{id}", s.handleNode)
	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

type collectionSummary struct {
	TypeName   string            `json:"type_name"`
	Nodes      int               `json:"nodes"`
	References map[string]string `json:"references,omitempty"`
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	cols := s.store.Collections()
	out := make([]collectionSummary, 0, len(cols))
	for _, c := range cols {
		n, err := c.Len(r.Context())
		if err != nil {
			s.writeServerError(w, err, "count nodes")
			return
		}
		out = append(out, collectionSummary{TypeName: c.TypeName(), Nodes: n})
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": out})
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	col, ok := s.store.Collection(typeName)
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found: "+typeName)
		return
	}
	nodes, err := col.Nodes(r.Context())
	if err != nil {
		s.writeServerError(w, err, "list nodes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	col, ok := s.store.Collection(typeName)
	if !ok {
		writeError(w, http.StatusNotFound, "collection not found: "+typeName)
		return
	}
	node, found, err := col.FindNode(r.Context(), id)
	if err != nil {
		s.writeServerError(w, err, "find node")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "node not found: "+id)
		return
	}

	resp := map[string]any{"node": node}
	if computed, err := s.computedFields(typeName, node, r); err != nil {
		s.writeServerError(w, err, "resolve computed field")
		return
	} else if len(computed) > 0 {
		resp["computed"] = computed
	}
	writeJSON(w, http.StatusOK, resp)
}

// computedFields applies registered schema resolvers with arguments taken
// from the query string (e.g. ?width=300&automaticFormat=true for the
// asset url resolver).
func (s *Server) computedFields(typeName string, node store.Node, r *http.Request) (map[string]any, error) {
	resolver, ok := s.store.SchemaResolver(typeName, "url")
	if !ok {
		return nil, nil
	}
	args := make(map[string]any)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			args[key] = vals[0]
		}
	}
	v, err := resolver(node, args)
	if err != nil {
		return nil, err
	}
	return map[string]any{"url": v}, nil
}

func (s *Server) writeServerError(w http.ResponseWriter, err error, msg string) {
	s.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
