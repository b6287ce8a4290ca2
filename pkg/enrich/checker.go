package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treasuremap/pkg/cache"
	"github.com/matzehuels/treasuremap/pkg/metadata"
	"github.com/matzehuels/treasuremap/pkg/observability"
	"github.com/matzehuels/treasuremap/pkg/toolexec"
)

// Check names, used in logs, metrics and cache keys.
const (
	CheckOutdated = "outdated"
	CheckAudit    = "audit"
	CheckUnused   = "unused"
)

// Checker runs the enrichment checks for one project.
//
// A Checker is safe for concurrent use once configured.
type Checker struct {
	Runner toolexec.Runner
	// ManifestPath points the tools at a Cargo.toml. Empty means the
	// project in the runner's working directory.
	ManifestPath string
	Cache        cache.Cache
	Keyer        cache.Keyer
	// TTL bounds reuse of cached tool output.
	TTL    time.Duration
	Logger *log.Logger
}

// NewChecker creates a checker. A nil runner uses a toolexec.ExecRunner
// with the default timeout; a nil cache disables caching.
func NewChecker(runner toolexec.Runner, c cache.Cache, logger *log.Logger) *Checker {
	if runner == nil {
		runner = toolexec.NewExecRunner(toolexec.DefaultTimeout)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Checker{
		Runner: runner,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		TTL:    cache.TTLToolOutput,
		Logger: logger,
	}
}

// Outdated lists dependencies with newer releases using
// `cargo outdated --format json`.
func (c *Checker) Outdated(ctx context.Context) Check[OutdatedDependency] {
	args := []string{"outdated", "--format", "json"}
	if c.ManifestPath != "" {
		args = append(args, "--manifest-path", c.ManifestPath)
	}
	return runCheck(ctx, c, CheckOutdated, args, parseOutdated)
}

// Audit lists security advisories using `cargo audit --json`.
func (c *Checker) Audit(ctx context.Context) Check[SecurityIssue] {
	args := []string{"audit", "--json"}
	if dir := c.manifestDir(); dir != "" {
		args = append(args, "--file", filepath.Join(dir, "Cargo.lock"))
	}
	return runCheck(ctx, c, CheckAudit, args, parseAudit)
}

// Unused lists the dependencies cargo-machete reports as unused.
func (c *Checker) Unused(ctx context.Context) Check[string] {
	args := []string{"machete"}
	if dir := c.manifestDir(); dir != "" {
		args = append(args, dir)
	}
	return runCheck(ctx, c, CheckUnused, args, parseUnused)
}

// CheckAll runs the three checks concurrently. Each check is independent:
// one failing or hanging until its timeout does not affect the others.
func (c *Checker) CheckAll(ctx context.Context) Results {
	var res Results
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Outdated = c.Outdated(gctx)
		return nil
	})
	g.Go(func() error {
		res.Security = c.Audit(gctx)
		return nil
	})
	g.Go(func() error {
		res.Unused = c.Unused(gctx)
		return nil
	})
	_ = g.Wait()
	return res
}

// runCheck runs one cargo subcommand and parses its output. Parsed items
// are cached under a key that covers the project's manifest and lockfile,
// so only usable results are reused and edits to either file invalidate
// them.
func runCheck[T any](ctx context.Context, c *Checker, check string, args []string, parse func([]byte) ([]T, error)) Check[T] {
	key, cacheable := c.cacheKey(args)
	if cacheable {
		if data, hit, err := c.Cache.Get(ctx, key); err == nil && hit {
			var items []T
			if err := json.Unmarshal(data, &items); err == nil {
				observability.Cache().OnCacheHit(ctx, "tool")
				c.Logger.Debug("enrichment cache hit", "check", check)
				return checked(items)
			}
		}
		observability.Cache().OnCacheMiss(ctx, "tool")
	}

	start := time.Now()
	out, err := c.Runner.Run(ctx, "cargo", args...)
	elapsed := time.Since(start)
	if err != nil {
		observability.Tool().OnToolComplete(ctx, check, -1, elapsed, err)
		c.Logger.Warn("enrichment check skipped", "check", check, "error", err)
		return notChecked[T](err.Error())
	}
	observability.Tool().OnToolComplete(ctx, check, out.ExitCode, elapsed, nil)
	if !out.Success() {
		c.Logger.Warn("enrichment check skipped", "check", check, "exit_code", out.ExitCode)
		return notChecked[T](fmt.Sprintf("cargo %s exited with status %d", args[0], out.ExitCode))
	}

	items, err := parse(out.Stdout)
	if err != nil {
		c.Logger.Warn("unreadable cargo output", "check", check, "error", err)
		return notChecked[T]("unreadable output: " + err.Error())
	}
	c.Logger.Debug("enrichment check finished", "check", check, "items", len(items), "duration", elapsed)

	if cacheable {
		if data, err := json.Marshal(items); err == nil {
			if err := c.Cache.Set(ctx, key, data, c.TTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "tool", len(data))
			}
		}
	}
	return checked(items)
}

// cacheKey scopes args to the current project state. Without a readable
// manifest there is nothing to scope by and the result is not cached.
func (c *Checker) cacheKey(args []string) (string, bool) {
	src := metadata.CargoSource{ManifestPath: c.ManifestPath}
	fp, err := src.Fingerprint()
	if err != nil {
		c.Logger.Debug("enrichment cache disabled", "error", err)
		return "", false
	}
	return c.keyer().ToolKey("cargo", args, fp), true
}

func (c *Checker) keyer() cache.Keyer {
	if c.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return c.Keyer
}

func (c *Checker) manifestDir() string {
	if c.ManifestPath == "" {
		return ""
	}
	return filepath.Dir(c.ManifestPath)
}
