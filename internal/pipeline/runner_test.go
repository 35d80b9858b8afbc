package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/apitree/apitreetest"
	"github.com/dgallion1/autoapi/internal/config"
)

const root = "example.com/pkg"

var errBroken = errors.New("undefined: missingSymbol")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		SrcDir:  t.TempDir(),
		Suffix:  ".md",
		Workers: 2,
		JobTTL:  time.Hour,
	}
}

func sampleImporter(t *testing.T) *apitreetest.Importer {
	t.Helper()
	im := apitreetest.NewImporter(t, root)
	im.Add(t, root, "Package pkg is the root.", apitreetest.Func("Run", "Run starts everything."))
	im.Add(t, root+"/store", "Package store keeps things.", apitreetest.Type("Store", "Store holds items."))
	im.Add(t, root+"/empty", "Package empty has nothing exported.")
	return im
}

func testOptions(cfg config.Config) config.RootOptions {
	return cfg.DefaultOptions(root)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunner_WritesAllPages(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(sampleImporter(t), cfg, discardLogger())

	opts := testOptions(cfg)
	job := r.Run(context.Background(), root, opts)
	snap := job.Snapshot()

	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	want := []string{
		"example.com.pkg.empty.md",
		"example.com.pkg.md",
		"example.com.pkg.store.md",
		"index.md",
	}
	if diff := cmp.Diff(want, listFiles(t, filepath.Join(cfg.SrcDir, opts.Output))); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if snap.Progress.Nodes != 3 || snap.Progress.Selected != 3 || snap.Progress.Written != 4 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}

	index, err := os.ReadFile(filepath.Join(cfg.SrcDir, opts.Output, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(index), "# example.com/pkg\n") {
		t.Errorf("expected index to be the root page, got:\n%s", index)
	}
	if got := r.Stats().ByRoot()[root]; got.Count != 1 || got.LastStatus != StatusCompleted {
		t.Errorf("expected one completed build recorded for %s, got %+v", root, got)
	}
}

func TestRunner_Prune(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(sampleImporter(t), cfg, discardLogger())

	opts := testOptions(cfg)
	opts.Prune = true
	job := r.Run(context.Background(), root, opts)

	if job.Snapshot().Status != StatusCompleted {
		t.Fatalf("expected completed, got %+v", job.Snapshot())
	}
	for _, name := range listFiles(t, filepath.Join(cfg.SrcDir, opts.Output)) {
		if strings.Contains(name, "empty") {
			t.Errorf("expected irrelevant node to be pruned, found %s", name)
		}
	}
	if job.Snapshot().Progress.Selected != 2 {
		t.Errorf("expected 2 selected nodes, got %d", job.Snapshot().Progress.Selected)
	}
}

func TestRunner_KeepsExistingFiles(t *testing.T) {
	cfg := testConfig(t)
	opts := testOptions(cfg)
	opts.Override = false

	existing := filepath.Join(cfg.SrcDir, opts.Output, "index.md")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("hand written"), 0o644); err != nil {
		t.Fatal(err)
	}

	job := NewRunner(sampleImporter(t), cfg, discardLogger()).Run(context.Background(), root, opts)
	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", snap.Status)
	}
	if snap.Progress.Skipped != 1 || snap.Progress.Written != 3 {
		t.Errorf("expected 3 written 1 skipped, got %+v", snap.Progress)
	}
	got, _ := os.ReadFile(existing)
	if string(got) != "hand written" {
		t.Errorf("expected existing index untouched, got %q", got)
	}
}

func TestRunner_HTMLFormat(t *testing.T) {
	cfg := testConfig(t)
	opts := testOptions(cfg)
	opts.Format = config.FormatHTML

	job := NewRunner(sampleImporter(t), cfg, discardLogger()).Run(context.Background(), root, opts)
	if job.Snapshot().Status != StatusCompleted {
		t.Fatalf("expected completed, got %+v", job.Snapshot())
	}

	data, err := os.ReadFile(filepath.Join(cfg.SrcDir, opts.Output, "example.com.pkg.html"))
	if err != nil {
		t.Fatalf("expected html page: %v", err)
	}
	if !strings.Contains(string(data), `href="example.com.pkg.store.html"`) {
		t.Errorf("expected links between html pages, got:\n%s", data)
	}
}

func TestRunner_BrokenSubpackageIsPartial(t *testing.T) {
	cfg := testConfig(t)
	im := sampleImporter(t)
	im.Fail(t, root+"/broken", errBroken)

	job := NewRunner(im, cfg, discardLogger()).Run(context.Background(), root, testOptions(cfg))
	snap := job.Snapshot()

	if snap.Status != StatusPartial {
		t.Fatalf("expected partial, got %q", snap.Status)
	}
	if snap.Progress.Failures != 1 || len(snap.Progress.Errors) != 1 {
		t.Fatalf("expected one recorded failure, got %+v", snap.Progress)
	}
	if !strings.Contains(snap.Progress.Errors[0], root+"/broken") {
		t.Errorf("expected failure to name the package, got %q", snap.Progress.Errors[0])
	}
}

func TestRunner_UnbuildableDirectoryIsCompleted(t *testing.T) {
	cfg := testConfig(t)
	im := sampleImporter(t)
	im.Fail(t, root+"/gen", fmt.Errorf("load %s/gen: %w", root, apitree.ErrNoPackage))
	r := NewRunner(im, cfg, discardLogger())

	snap := r.Run(context.Background(), root, testOptions(cfg)).Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Failures != 0 || snap.Progress.Nodes != 3 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}

func TestRunner_RootFailure(t *testing.T) {
	cfg := testConfig(t)
	im := apitreetest.NewImporter(t, root)
	im.Fail(t, root, errBroken)

	job := NewRunner(im, cfg, discardLogger()).Run(context.Background(), root, testOptions(cfg))
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "building" {
		t.Fatalf("expected failed while building, got %q/%q", snap.Status, snap.Phase)
	}
	if _, err := os.Stat(filepath.Join(cfg.SrcDir, testOptions(cfg).Output)); !os.IsNotExist(err) {
		t.Error("expected no output directory for failed root")
	}
}

func TestRunner_UnknownTemplate(t *testing.T) {
	cfg := testConfig(t)
	opts := testOptions(cfg)
	opts.Template = "missing.md"

	job := NewRunner(sampleImporter(t), cfg, discardLogger()).Run(context.Background(), root, opts)
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "selecting" {
		t.Fatalf("expected failed while selecting, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestRunner_Canceled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewRunner(sampleImporter(t), cfg, discardLogger()).Run(ctx, root, testOptions(cfg))
	if job.Snapshot().Status != StatusFailed {
		t.Fatalf("expected failed for canceled context, got %q", job.Snapshot().Status)
	}
}
