package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/config"
	"github.com/dgallion1/autoapi/internal/pipeline"
)

// Server is the HTTP preview server for autoapi.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	imp          apitree.Importer
	roots        []config.Root
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. roots are the
// configured root packages; others can still be requested by path.
func NewServer(orch *pipeline.Orchestrator, imp apitree.Importer, roots []config.Root, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		imp:          imp,
		roots:        roots,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/roots", s.handleRoots)
		r.Get("/api/tree", s.handleTree)
		r.Get("/api/node", s.handleNode)

		r.Post("/api/builds", s.handleBuild)
		r.Get("/api/builds/{jobID}", s.handleBuildStatus)
		r.Get("/api/stats/builds", s.handleBuildStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
