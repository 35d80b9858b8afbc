// Package render turns API tree nodes into documentation pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/Masterminds/sprig/v3"
	"github.com/samber/lo"

	"github.com/dgallion1/autoapi/internal/apitree"
)

//go:embed templates/*
var builtin embed.FS

// Environment is a loaded set of page templates.
type Environment struct {
	tmpl   *template.Template
	suffix string
	prune  bool
	dirs   []string
}

// Option configures an Environment.
type Option func(*Environment)

// WithTemplateDirs overlays user template directories on the built-in
// templates. Earlier directories take precedence over later ones.
func WithTemplateDirs(dirs ...string) Option {
	return func(e *Environment) { e.dirs = append(e.dirs, dirs...) }
}

// WithPrune limits listed sub-packages to relevant ones.
func WithPrune(prune bool) Option {
	return func(e *Environment) { e.prune = prune }
}

// Page is the data a template is executed with.
type Page struct {
	*apitree.Node
	Suffix string
	Prune  bool
}

// Subpackages lists the children to link from this page.
func (p Page) Subpackages() []*apitree.Node {
	return p.Children(p.Prune)
}

// NewEnvironment loads the built-in templates and any user overrides.
// suffix is the extension used for links between generated pages.
func NewEnvironment(suffix string, opts ...Option) (*Environment, error) {
	e := &Environment{suffix: suffix}
	for _, opt := range opts {
		opt(e)
	}

	tmpl, err := template.New("autoapi").Funcs(funcMap()).ParseFS(builtin, "templates/*")
	if err != nil {
		return nil, fmt.Errorf("parsing built-in templates: %w", err)
	}
	// Parsed last wins, so walk user directories back to front.
	for _, dir := range slices.Backward(e.dirs) {
		if tmpl, err = overlay(tmpl, os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("parsing templates in %s: %w", dir, err)
		}
	}
	e.tmpl = tmpl
	return e, nil
}

func overlay(tmpl *template.Template, fsys fs.FS) (*template.Template, error) {
	matches, err := fs.Glob(fsys, "*")
	if err != nil {
		return nil, err
	}
	files := lo.Filter(matches, func(name string, _ int) bool {
		info, err := fs.Stat(fsys, name)
		return err == nil && info.Mode().IsRegular() && !strings.HasPrefix(name, ".")
	})
	if len(files) == 0 {
		return tmpl, nil
	}
	return tmpl.ParseFS(fsys, files...)
}

// Has reports whether a template with the given name is loaded.
func (e *Environment) Has(name string) bool {
	return e.tmpl.Lookup(name) != nil
}

// Render executes the named template for node.
func (e *Environment) Render(name string, node *apitree.Node) (string, error) {
	t := e.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, Page{Node: node, Suffix: e.suffix, Prune: e.prune}); err != nil {
		return "", fmt.Errorf("rendering %s with %s: %w", node.Fullname, name, err)
	}
	return buf.String(), nil
}

// FileName is the page name of node: its fullname with separators turned
// into dots, plus suffix.
func FileName(node *apitree.Node, suffix string) string {
	return docname(node) + suffix
}

func docname(node *apitree.Node) string {
	return strings.ReplaceAll(node.Fullname, apitree.Separator, ".")
}

// heading underlines text with ch, reStructuredText style.
func heading(ch, text string) string {
	return text + "\n" + strings.Repeat(ch, utf8.RuneCountInString(text))
}

func relevant(nodes []*apitree.Node) []*apitree.Node {
	return lo.Filter(nodes, func(n *apitree.Node, _ int) bool { return n.IsRelevant() })
}

func funcMap() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["docname"] = docname
	fm["heading"] = heading
	fm["relevant"] = relevant
	return fm
}
