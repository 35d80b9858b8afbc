package apitree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeObject struct {
	name     string
	callable bool
	isType   bool
	isError  bool
	constant bool
	origin   string
	doc      string
	docErr   error
	docPanic bool
	bases    []string
	methods  []string
}

func (o *fakeObject) Name() string { return o.name }
func (o *fakeObject) Exported() bool { return o.name != "" && o.name[0] >= 'A' && o.name[0] <= 'Z' }
func (o *fakeObject) Origin() string { return o.origin }
func (o *fakeObject) IsCallable() bool { return o.callable }
func (o *fakeObject) IsType() bool { return o.isType }
func (o *fakeObject) IsError() bool { return o.isError }
func (o *fakeObject) IsConstant() bool { return o.constant }
func (o *fakeObject) Bases() []string { return o.bases }
func (o *fakeObject) Methods() []string { return o.methods }
func (o *fakeObject) Signature() string { return o.name }
func (o *fakeObject) Doc() (string, error) {
	if o.docPanic {
		panic("broken doc")
	}
	return o.doc, o.docErr
}

func fn(name, doc string) *fakeObject {
	return &fakeObject{name: name, callable: true, doc: doc}
}

func typ(name, doc string) *fakeObject {
	return &fakeObject{name: name, isType: true, doc: doc}
}

// fakeImporter serves modules rooted in a temporary directory tree. Every
// package path listed in mods or errs gets a directory with a Go file.
type fakeImporter struct {
	base  string
	root  string
	mods  map[string]*Module
	errs  map[string]error
	calls []string
}

func newFakeImporter(t *testing.T, root string) *fakeImporter {
	t.Helper()
	return &fakeImporter{
		base: t.TempDir(),
		root: root,
		mods: make(map[string]*Module),
		errs: make(map[string]error),
	}
}

func (f *fakeImporter) dir(path string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(path, f.root), "/")
	return filepath.Join(f.base, filepath.FromSlash(rel))
}

// add registers a package and writes a placeholder Go file for it.
func (f *fakeImporter) add(t *testing.T, path string, objs ...Object) *Module {
	t.Helper()
	dir := f.dir(path)
	writeFile(t, filepath.Join(dir, "doc.go"), "package x\n")
	m := &Module{Path: path, Name: filepath.Base(dir), Dir: dir, Doc: "Package " + filepath.Base(path) + " does things.", Objects: objs}
	f.mods[path] = m
	return m
}

func (f *fakeImporter) fail(t *testing.T, path string, err error) {
	t.Helper()
	writeFile(t, filepath.Join(f.dir(path), "broken.go"), "package x\n")
	f.errs[path] = err
}

func (f *fakeImporter) Import(_ context.Context, path, dir string) (*Module, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	m, ok := f.mods[path]
	if !ok {
		return nil, fmt.Errorf("package %s not found", path)
	}
	if dir != "" && dir != m.Dir {
		return nil, fmt.Errorf("package %s: unexpected dir %s", path, dir)
	}
	return m, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

var errBroken = errors.New("undefined: missingSymbol")
