package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Output formats a root can be rendered to.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatDOCX     = "docx"
)

// RootOptions are the resolved rendering options of one root package.
type RootOptions struct {
	Output   string `json:"output"`   // directory under SrcDir
	Template string `json:"template"` // template name
	Override bool   `json:"override"` // replace existing files
	Prune    bool   `json:"prune"`    // render only relevant nodes
	Format   string `json:"format"`
}

// Root pairs a root import path with its options.
type Root struct {
	Name    string      `json:"name"`
	Options RootOptions `json:"options"`
}

// rootEntry is a [roots."<path>"] table as written in the file. Pointers
// distinguish unset booleans from false.
type rootEntry struct {
	Output   string `toml:"output"`
	Template string `toml:"template"`
	Override *bool  `toml:"override"`
	Prune    *bool  `toml:"prune"`
	Format   string `toml:"format"`
}

type rootsFile struct {
	Roots map[string]rootEntry `toml:"roots"`
}

// LoadRoots reads the roots file at path. A missing file yields no roots.
func (c Config) LoadRoots(path string) ([]Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading roots file: %w", err)
	}
	return c.ParseRoots(data)
}

// ParseRoots decodes a roots document and applies defaults. Roots are
// returned sorted by name.
func (c Config) ParseRoots(data []byte) ([]Root, error) {
	var f rootsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing roots TOML: %w", err)
	}

	roots := make([]Root, 0, len(f.Roots))
	for name, e := range f.Roots {
		opts := c.DefaultOptions(name)
		if e.Output != "" {
			opts.Output = e.Output
		}
		if e.Template != "" {
			opts.Template = e.Template
		}
		if e.Override != nil {
			opts.Override = *e.Override
		}
		if e.Prune != nil {
			opts.Prune = *e.Prune
		}
		if e.Format != "" {
			opts.Format = e.Format
		}
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("root %s: %w", name, err)
		}
		roots = append(roots, Root{Name: name, Options: opts})
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	return roots, nil
}

// DefaultOptions returns the options used for a root that has no entry.
func (c Config) DefaultOptions(name string) RootOptions {
	return RootOptions{
		Output:   strings.ReplaceAll(name, "/", "."),
		Template: c.DefaultTemplate(),
		Override: c.Override,
		Prune:    c.Prune,
		Format:   FormatMarkdown,
	}
}

// DefaultTemplate picks the built-in template matching the source suffix.
func (c Config) DefaultTemplate() string {
	if c.Suffix == ".rst" {
		return "module.rst"
	}
	return "module.md"
}

func (o RootOptions) Validate() error {
	switch o.Format {
	case FormatMarkdown, FormatHTML, FormatDOCX:
	default:
		return fmt.Errorf("unknown format %q", o.Format)
	}
	if o.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if strings.Contains(o.Output, "..") {
		return fmt.Errorf("output %q must stay inside the source directory", o.Output)
	}
	if o.Template == "" {
		return fmt.Errorf("template must not be empty")
	}
	return nil
}
