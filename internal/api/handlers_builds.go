package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/dgallion1/autoapi/internal/config"
	"github.com/dgallion1/autoapi/internal/pipeline"
)

// buildRequest is the body of POST /api/builds. Unset fields fall back to
// the configured options of the root.
type buildRequest struct {
	Root     string `json:"root"`
	Output   string `json:"output"`
	Template string `json:"template"`
	Override *bool  `json:"override"`
	Prune    *bool  `json:"prune"`
	Format   string `json:"format"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Root == "" {
		jsonError(w, "root is required", http.StatusBadRequest)
		return
	}

	opts := s.optionsFor(req.Root)
	if req.Output != "" {
		opts.Output = req.Output
	}
	if req.Template != "" {
		opts.Template = req.Template
	}
	if req.Override != nil {
		opts.Override = *req.Override
	}
	if req.Prune != nil {
		opts.Prune = *req.Prune
	}
	if req.Format != "" {
		opts.Format = req.Format
	}
	if err := opts.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(req.Root, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"root":     job.Root,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/builds/%s", job.ID),
	})
}

func (s *Server) handleBuildStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// optionsFor returns the configured options of root, or the defaults.
func (s *Server) optionsFor(root string) config.RootOptions {
	if cr, ok := lo.Find(s.roots, func(cr config.Root) bool { return cr.Name == root }); ok {
		return cr.Options
	}
	return s.cfg.DefaultOptions(root)
}
