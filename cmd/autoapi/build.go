package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dgallion1/autoapi/internal/config"
	"github.com/dgallion1/autoapi/internal/pipeline"
)

// newBuildCommand creates the `autoapi build` command.
func newBuildCommand(a *app) *cobra.Command {
	var (
		prune    bool
		override bool
		format   string
		output   string
		template string
	)

	cmd := &cobra.Command{
		Use:   "build [root...]",
		Short: "Render documentation pages for root packages",
		Long: `Render documentation pages for root packages.

Without arguments every root in the roots file is built with its configured
options. Roots given as arguments use their configured options when listed
in the roots file and the defaults otherwise. Flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := a.selectRoots(args)
			if err != nil {
				return err
			}
			if output != "" && len(roots) > 1 {
				return fmt.Errorf("--output needs exactly one root, got %d", len(roots))
			}

			flags := cmd.Flags()
			for i := range roots {
				opts := &roots[i].Options
				if flags.Changed("prune") {
					opts.Prune = prune
				}
				if flags.Changed("override") {
					opts.Override = override
				}
				if flags.Changed("format") {
					opts.Format = format
				}
				if flags.Changed("output") {
					opts.Output = output
				}
				if flags.Changed("template") {
					opts.Template = template
				}
				if err := opts.Validate(); err != nil {
					return fmt.Errorf("root %s: %w", roots[i].Name, err)
				}
			}
			return a.runBuilds(cmd, roots)
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "render only nodes with public API or sub-packages")
	cmd.Flags().BoolVar(&override, "override", true, "replace pages that already exist")
	cmd.Flags().StringVar(&format, "format", config.FormatMarkdown, "output format: markdown, html or docx")
	cmd.Flags().StringVar(&output, "output", "", "output directory under the source directory")
	cmd.Flags().StringVar(&template, "template", "", "template used for every page")
	return cmd
}

func (a *app) selectRoots(args []string) ([]config.Root, error) {
	configured, err := a.cfg.LoadRoots(a.cfg.RootsFile)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		if len(configured) == 0 {
			return nil, fmt.Errorf("no roots given and none configured in %s", a.cfg.RootsFile)
		}
		return configured, nil
	}
	return lo.Map(lo.Uniq(args), func(name string, _ int) config.Root {
		if r, ok := lo.Find(configured, func(r config.Root) bool { return r.Name == name }); ok {
			return r
		}
		return config.Root{Name: name, Options: a.cfg.DefaultOptions(name)}
	}), nil
}

func (a *app) runBuilds(cmd *cobra.Command, roots []config.Root) error {
	runner := pipeline.NewRunner(a.imp, a.cfg, a.log)
	var failed []string
	for _, r := range roots {
		snap := runner.Run(cmd.Context(), r.Name, r.Options).Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d written, %d kept, %d errors)\n",
			r.Name, snap.Status, snap.Progress.Written, snap.Progress.Skipped, len(snap.Progress.Errors))
		for _, e := range snap.Progress.Errors {
			a.log.Warn("build error", "root", r.Name, "error", e)
		}
		if snap.Status == pipeline.StatusFailed {
			failed = append(failed, r.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("build failed for %v", failed)
	}
	return nil
}
