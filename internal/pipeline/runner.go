package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/config"
	"github.com/dgallion1/autoapi/internal/output"
	"github.com/dgallion1/autoapi/internal/render"
)

// IndexName is the base name of the page rendered for a root package in
// addition to its own page.
const IndexName = "index"

// Runner builds, renders and writes the documentation of one root.
type Runner struct {
	imp   apitree.Importer
	cfg   config.Config
	log   *slog.Logger
	stats *BuildStats
}

func NewRunner(imp apitree.Importer, cfg config.Config, log *slog.Logger) *Runner {
	return &Runner{
		imp:   imp,
		cfg:   cfg,
		log:   log,
		stats: NewBuildStats(cfg.JobTTL),
	}
}

// Stats returns the rolling build duration statistics.
func (r *Runner) Stats() *BuildStats {
	return r.stats
}

// Run executes a new job for root synchronously and returns it.
func (r *Runner) Run(ctx context.Context, root string, opts config.RootOptions) *Job {
	job := NewJob(root, opts)
	r.Process(ctx, job)
	return job
}

type page struct {
	node *apitree.Node
	name string
	data []byte
	err  error
}

// Process runs the full documentation pipeline for a job.
func (r *Runner) Process(ctx context.Context, job *Job) {
	start := time.Now()
	finish := func(status JobStatus, phase string) {
		r.stats.Record(job.Root, status, time.Since(start))
		job.SetStatus(status, phase)
	}

	opts := job.Options
	log := r.log.With("job_id", job.ID, "root", job.Root)

	// Phase 1: Build
	job.SetStatus(StatusBuilding, "building")
	tree, err := apitree.Build(ctx, r.imp, job.Root, apitree.WithLogger(log))
	if err != nil {
		var rootErr *apitree.RootError
		if errors.As(err, &rootErr) {
			log.Error("root package failed to import", "error", rootErr.Err)
		} else {
			log.Error("build failed", "error", err)
		}
		job.AddError(err.Error())
		finish(StatusFailed, "building")
		return
	}
	for _, f := range tree.Failures {
		job.AddError(fmt.Sprintf("import %s: %s", f.Fullname, f.Err))
	}
	job.SetTree(tree.Directory.Len(), len(tree.Failures))
	hadErrors := len(tree.Failures) > 0

	// Phase 2: Select
	job.SetStatus(StatusSelecting, "selecting")
	nodes := tree.Directory.Nodes(opts.Prune)
	job.SetSelected(len(nodes))
	log.Info("selected nodes", "nodes", tree.Directory.Len(), "selected", len(nodes), "prune", opts.Prune)

	env, err := render.NewEnvironment(r.cfg.Suffix,
		render.WithTemplateDirs(r.cfg.TemplateDirs...),
		render.WithPrune(opts.Prune),
	)
	if err == nil && !env.Has(opts.Template) {
		err = fmt.Errorf("template %q not found", opts.Template)
	}
	if err != nil {
		log.Error("loading templates failed", "error", err)
		job.AddError(err.Error())
		finish(StatusFailed, "selecting")
		return
	}

	// Phase 3: Render with bounded concurrency.
	job.SetStatus(StatusRendering, "rendering")
	pages := r.renderAll(ctx, env, job, tree.Root, nodes)
	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		finish(StatusFailed, "rendering")
		return
	}

	// Phase 4: Write
	job.SetStatus(StatusWriting, "writing")
	w := output.Writer{Override: opts.Override}
	outDir := filepath.Join(r.cfg.SrcDir, opts.Output)
	for _, p := range pages {
		if p.err != nil {
			log.Error("render failed", "node", p.node.Fullname, "error", p.err)
			job.AddError(fmt.Sprintf("render %s: %s", p.node.Fullname, p.err))
			hadErrors = true
			continue
		}
		path := filepath.Join(outDir, p.name)
		written, err := w.Write(path, p.data)
		if err != nil {
			log.Error("write failed", "path", path, "error", err)
			job.AddError(err.Error())
			hadErrors = true
			continue
		}
		if !written {
			log.Debug("kept existing file", "path", path)
		}
		job.RecordWrite(written)
	}

	snap := job.Snapshot()
	log.Info("build complete",
		"written", snap.Progress.Written,
		"skipped", snap.Progress.Skipped,
		"errors", len(snap.Progress.Errors),
		"duration", time.Since(start))

	stored := snap.Progress.Written + snap.Progress.Skipped
	switch {
	case hadErrors && stored > 0:
		finish(StatusPartial, "done")
	case hadErrors:
		finish(StatusFailed, "writing")
	default:
		finish(StatusCompleted, "done")
	}
}

// renderAll renders every node plus the index page of root. Pages come back
// in node order with the index last.
func (r *Runner) renderAll(ctx context.Context, env *render.Environment, job *Job, root *apitree.Node, nodes []*apitree.Node) []page {
	opts := job.Options
	targets := lo.Map(nodes, func(n *apitree.Node, _ int) page {
		return page{node: n, name: render.FileName(n, "")}
	})
	targets = append(targets, page{node: root, name: IndexName})

	sem := make(chan struct{}, max(r.cfg.Workers, 1))
	done := make(chan struct{})
	for i := range targets {
		go func(p *page) {
			defer func() { done <- struct{}{} }()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				p.err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			text, err := env.Render(opts.Template, p.node)
			if err != nil {
				p.err = err
				return
			}
			data, ext, err := render.Encode(opts.Format, p.node, text, r.cfg.Suffix)
			if err != nil {
				p.err = err
				return
			}
			p.name += ext
			p.data = data
			job.IncrRendered()
		}(&targets[i])
	}
	for range targets {
		<-done
	}
	return targets
}
