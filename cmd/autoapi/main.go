// Command autoapi generates API reference pages for the packages of a Go
// module.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgallion1/autoapi/internal/apitree"
	"github.com/dgallion1/autoapi/internal/config"
	"github.com/dgallion1/autoapi/internal/importer"
)

// app carries what every command needs. Tests build one directly.
type app struct {
	cfg config.Config
	log *slog.Logger
	imp apitree.Importer
	out io.Writer
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log := newLogger(cfg, os.Stderr)
	a := &app{
		cfg: cfg,
		log: log,
		imp: importer.New(importer.Config{Dir: cfg.Dir, BuildFlags: cfg.BuildFlags()}, log),
		out: os.Stdout,
	}
	if err := newRootCommand(a).Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a JSON logger on stdout for LogFormat json, otherwise a
// human friendly text logger on w.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if cfg.LogFormat == "json" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	level, err := charmlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Prefix:          "autoapi",
		ReportTimestamp: level == charmlog.DebugLevel,
	})
	return slog.New(handler)
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoapi",
		Short: "Generate API reference pages for Go packages",
		Long: `autoapi imports a root package and every package beneath it, classifies
their exported declarations and renders one page per package.

Configuration is read from AUTOAPI_* environment variables and the roots
file named by AUTOAPI_CONFIG (default autoapi.toml).`,
		SilenceUsage: true,
	}
	cmd.SetOut(a.out)

	cmd.AddCommand(
		newBuildCommand(a),
		newTreeCommand(a),
		newWalkCommand(a),
		newServeCommand(a),
	)
	return cmd
}
