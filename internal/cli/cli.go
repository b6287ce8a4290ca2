package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treasuremap/pkg/buildinfo"
	"github.com/matzehuels/treasuremap/pkg/cache"
	"github.com/matzehuels/treasuremap/pkg/config"
	"github.com/matzehuels/treasuremap/pkg/enrich"
	"github.com/matzehuels/treasuremap/pkg/metadata"
	"github.com/matzehuels/treasuremap/pkg/pipeline"
	"github.com/matzehuels/treasuremap/pkg/toolexec"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "treasuremap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	flags  globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	manifestPath      string
	metadataPath      string
	matchRequirements bool
	configPath        string
	noCache           bool
	refresh           bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Treasuremap charts and audits Cargo dependency graphs",
		Long: `Treasuremap reads the resolved dependency graph of a Cargo project and reports
on its shape: the dependency tree, duplicate crate versions, cycles, size
hot spots and the path between any two crates. Optional checks run
cargo-outdated, cargo-audit and cargo-machete when they are installed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.manifestPath, "manifest-path", "", "path to Cargo.toml (default: ./Cargo.toml)")
	pf.StringVar(&c.flags.metadataPath, "metadata", "", "read a saved `cargo metadata` JSON file or a Cargo.lock instead of running cargo")
	pf.BoolVar(&c.flags.matchRequirements, "match-requirements", false, "resolve dependencies by name and version requirement")
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default: ./"+config.FileName+")")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "ignore cached metadata")

	// Register all subcommands
	root.AddCommand(c.mapCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.unusedCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	flags := cmd.Flags()
	if flags.Changed("manifest-path") {
		cfg.ManifestPath = c.flags.manifestPath
	}
	if flags.Changed("match-requirements") {
		cfg.MatchRequirements = c.flags.matchRequirements
	}
	if c.flags.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	return cfg, nil
}

// openCache opens the configured backend. The file backend defaults to
// the XDG cache directory.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	opts := cfg.CacheOptions()
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	return cache.Open(ctx, opts)
}

// newChecker creates the enrichment checker for the configured project.
func (c *CLI) newChecker(cfg *config.Config, ca cache.Cache) *enrich.Checker {
	checker := enrich.NewChecker(toolexec.NewExecRunner(cfg.ToolTimeout.Duration), ca, c.Logger)
	checker.ManifestPath = metadata.ManifestFile(cfg.ManifestPath)
	if cfg.Cache.TTL.Duration > 0 {
		checker.TTL = cfg.Cache.TTL.Duration
	}
	return checker
}

// newSource picks the metadata source: an explicit snapshot wins over the
// manifest.
func (c *CLI) newSource(cfg *config.Config) metadata.Source {
	runner := toolexec.NewExecRunner(cfg.ToolTimeout.Duration)
	if c.flags.metadataPath != "" {
		return metadata.Detect(c.flags.metadataPath, runner)
	}
	return metadata.Detect(cfg.ManifestPath, runner)
}

// newRunner creates a pipeline runner for CLI use. Callers must Close it.
func (c *CLI) newRunner(cmd *cobra.Command) (*pipeline.Runner, *config.Config, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	ca, err := c.openCache(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	runner := pipeline.NewRunner(c.newSource(cfg), ca, nil, loggerFromContext(cmd.Context()))
	runner.Enricher = c.newChecker(cfg, ca)
	return runner, cfg, nil
}

// pipelineOptions converts config and flags into pipeline options.
func (c *CLI) pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		MatchRequirements: cfg.MatchRequirements,
		TopN:              cfg.TopN,
		Refresh:           c.flags.refresh,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/treasuremap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
