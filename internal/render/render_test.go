package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/apitree/apitreetest"
)

const root = "example.com/pkg"

func sampleTree(t *testing.T) *apitree.Tree {
	t.Helper()
	im := apitreetest.NewImporter(t, root)
	im.Add(t, root, "Package pkg is the root.\n\nIt has details.",
		apitreetest.Func("Run", "Run starts everything."),
	)
	im.Add(t, root+"/store", "Package store keeps things.",
		apitreetest.Type("Store", "Store holds items."),
		apitreetest.Error("NotFoundError", "NotFoundError reports a missing item."),
		apitreetest.Const("MaxItems", "MaxItems bounds a store."),
		apitreetest.Var("Default", ""),
	)
	im.Add(t, root+"/empty", "")
	return im.Build(t)
}

func newEnv(t *testing.T, opts ...Option) *Environment {
	t.Helper()
	env, err := NewEnvironment(".md", opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return env
}

func TestFileName(t *testing.T) {
	tree := sampleTree(t)
	store := tree.Directory.Get(root + "/store")

	if got := FileName(store, ".md"); got != "example.com.pkg.store.md" {
		t.Errorf("expected %q, got %q", "example.com.pkg.store.md", got)
	}
	if got := FileName(tree.Root, ""); got != "example.com.pkg" {
		t.Errorf("expected %q, got %q", "example.com.pkg", got)
	}
}

func TestRender_Markdown(t *testing.T) {
	tree := sampleTree(t)
	env := newEnv(t)

	out, err := env.Render("module.md", tree.Directory.Get(root+"/store"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"# example.com/pkg/store",
		"Package store keeps things.",
		"## Errors",
		"### NotFoundError",
		"## Types",
		"### Store",
		"## Constants",
		"## Variables",
		"Undocumented.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Functions") {
		t.Errorf("expected no functions section:\n%s", out)
	}
	if strings.Index(out, "## Errors") > strings.Index(out, "## Types") {
		t.Error("expected errors to be listed before types")
	}
}

func TestRender_SubpackageLinks(t *testing.T) {
	tree := sampleTree(t)

	out, err := newEnv(t).Render("module.md", tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[store](example.com.pkg.store.md)") {
		t.Errorf("expected link to store page:\n%s", out)
	}
	if !strings.Contains(out, "[empty](example.com.pkg.empty.md)") {
		t.Errorf("expected link to empty page without pruning:\n%s", out)
	}

	out, err = newEnv(t, WithPrune(true)).Render("module.md", tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "example.com.pkg.empty.md") {
		t.Errorf("expected pruned output to skip irrelevant leaf:\n%s", out)
	}
}

func TestRender_RST(t *testing.T) {
	tree := sampleTree(t)
	env, err := NewEnvironment(".rst")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := env.Render("module.rst", tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	title := "example.com/pkg\n" + strings.Repeat("=", len("example.com/pkg"))
	if !strings.HasPrefix(out, title) {
		t.Errorf("expected underlined title, got:\n%s", out)
	}
	if !strings.Contains(out, "   example.com.pkg.store\n") {
		t.Errorf("expected toctree entry for store:\n%s", out)
	}
}

func TestRender_UserTemplatesWin(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	write := func(dir, name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(first, "module.md", "first {{ .Fullname }}")
	write(second, "module.md", "second {{ .Fullname }}")
	write(second, "index.md", "{{ range relevant .Subnodes }}{{ .Name }} {{ end }}")

	tree := sampleTree(t)
	env := newEnv(t, WithTemplateDirs(first, second))

	out, err := env.Render("module.md", tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "first example.com/pkg" {
		t.Errorf("expected first directory to win, got %q", out)
	}

	out, err = env.Render("index.md", tree.Root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "store " {
		t.Errorf("expected only relevant children, got %q", out)
	}
	if !env.Has("module.rst") {
		t.Error("expected built-in templates to stay available")
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	tree := sampleTree(t)
	if _, err := newEnv(t).Render("missing.md", tree.Root); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestHeading(t *testing.T) {
	if got := heading("-", "Types"); got != "Types\n-----" {
		t.Errorf("unexpected heading %q", got)
	}
	if got := heading("=", "né"); got != "né\n==" {
		t.Errorf("expected rune based underline, got %q", got)
	}
}
