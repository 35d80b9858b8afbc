package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Module resolution
	Dir       string   // working module directory
	BuildTags []string // passed to the go command as -tags

	// Output
	SrcDir    string // documentation source directory
	Suffix    string // source file suffix, e.g. ".md"
	RootsFile string // TOML file mapping root packages to options

	// Per-root defaults
	Override bool
	Prune    bool

	// Templates
	TemplateDirs []string // user template directories, searched before the built-ins

	// Concurrency
	Workers      int // pages rendered at once within a build
	BuildWorkers int // builds run at once by the preview server

	// Preview server
	Port         string
	APIKey       string
	MaxQueueSize int
	JobTTL       time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() Config {
	cfg := Config{
		Dir:       envOr("AUTOAPI_DIR", "."),
		BuildTags: envList("AUTOAPI_BUILD_TAGS"),

		SrcDir:    envOr("AUTOAPI_SRCDIR", "docs"),
		Suffix:    envOr("AUTOAPI_SUFFIX", ".md"),
		RootsFile: envOr("AUTOAPI_CONFIG", "autoapi.toml"),

		Override: envBool("AUTOAPI_OVERRIDE", true),
		Prune:    envBool("AUTOAPI_PRUNE", false),

		TemplateDirs: envList("AUTOAPI_TEMPLATES"),

		Workers:      envInt("AUTOAPI_WORKERS", 4),
		BuildWorkers: envInt("AUTOAPI_BUILD_WORKERS", 2),

		Port:         envOr("AUTOAPI_PORT", "8090"),
		APIKey:       os.Getenv("AUTOAPI_API_KEY"),
		MaxQueueSize: envInt("AUTOAPI_MAX_QUEUE_SIZE", 16),
		JobTTL:       envDuration("AUTOAPI_JOB_TTL", 1*time.Hour),

		LogLevel:  envOr("AUTOAPI_LOG_LEVEL", "info"),
		LogFormat: envOr("AUTOAPI_LOG_FORMAT", "text"),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BuildWorkers <= 0 {
		cfg.BuildWorkers = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if !strings.HasPrefix(cfg.Suffix, ".") {
		cfg.Suffix = "." + cfg.Suffix
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("AUTOAPI_DIR must not be empty")
	}
	if c.SrcDir == "" {
		return fmt.Errorf("AUTOAPI_SRCDIR must not be empty")
	}
	if len(c.Suffix) < 2 {
		return fmt.Errorf("AUTOAPI_SUFFIX %q is not a file suffix", c.Suffix)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("AUTOAPI_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// BuildFlags returns go command flags derived from the configuration.
func (c Config) BuildFlags() []string {
	if len(c.BuildTags) == 0 {
		return nil
	}
	return []string{"-tags=" + strings.Join(c.BuildTags, ",")}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
