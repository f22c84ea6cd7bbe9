package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starbridge/pkg/buildinfo"
	"github.com/matzehuels/starbridge/pkg/cache"
	"github.com/matzehuels/starbridge/pkg/config"
	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "starbridge"

	// redisNamespace prefixes every key written to Redis.
	redisNamespace = appName + ":"
)

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
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: &config.Config{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.verbose = level == log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Starbridge replays static sky charts as interactive figures",
		Long: `Starbridge records the drawing calls of a static chart renderer and replays them
as a self-contained interactive figure, then checks that both agree.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/starbridge/config.toml)")

	root.AddCommand(c.demoCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level unless
// --verbose already raised it.
func (c *CLI) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	c.Config = cfg

	if cfg.Log.Level != "" && !c.verbose {
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		c.Logger.SetLevel(level)
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	if ttl := c.Config.Cache.TTL.Std(); ttl > 0 {
		cc = cache.WithTTL(cc, ttl)
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache whose directory
// cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.Password,
			DB:        cfg.DB,
			Namespace: redisNamespace,
		})
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/starbridge/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags are the flags shared by commands that build figures.
type renderFlags struct {
	mirrorX     bool
	maxElements int
	timeBudget  string
	workers     int
	title       string
	width       int
	height      int
	backend     string
	tolerance   float64
	exact       bool
	noCache     bool
}

func (f *renderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.mirrorX, "mirror-x", false, "flip the horizontal axis relative to the static chart")
	cmd.Flags().IntVar(&f.maxElements, "max-elements", 0, "decimate point clusters above this many points (0 = unlimited)")
	cmd.Flags().StringVar(&f.timeBudget, "time-budget", "", "decimate when building the figure takes longer (e.g. 5s)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "goroutines building traces (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&f.title, "title", "", "figure title")
	cmd.Flags().IntVar(&f.width, "width", 0, "displayed width in pixels (0 = canvas width)")
	cmd.Flags().IntVar(&f.height, "height", 0, "displayed height in pixels (0 = canvas height)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "rasterizer: vector (default), rsvg, browser")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0, "accepted fingerprint distance (default 0.25)")
	cmd.Flags().BoolVar(&f.exact, "exact", false, "require pixel-identical rasters instead of a fingerprint match")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges the config file with the flags that were set explicitly
// and validates the result.
func (c *CLI) options(cmd *cobra.Command, f *renderFlags, formats []string) (pipeline.Options, error) {
	r, chk := c.Config.Render, c.Config.Check
	opts := pipeline.Options{
		Formats:     formats,
		MaxElements: r.MaxElements,
		TimeBudget:  r.TimeBudget.Std(),
		Workers:     r.Workers,
		Title:       r.Title,
		Width:       r.Width,
		Height:      r.Height,
		Backend:     chk.Backend,
		Tolerance:   chk.Tolerance,
		Logger:      c.Logger,
	}
	if r.MirrorX != nil {
		opts.MirrorX = *r.MirrorX
	}

	flags := cmd.Flags()
	if flags.Changed("mirror-x") {
		opts.MirrorX = f.mirrorX
	}
	if flags.Changed("max-elements") {
		opts.MaxElements = f.maxElements
	}
	if flags.Changed("time-budget") {
		var d config.Duration
		if err := d.UnmarshalText([]byte(f.timeBudget)); err != nil {
			return opts, err
		}
		opts.TimeBudget = d.Std()
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	if flags.Changed("title") {
		opts.Title = f.title
	}
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("backend") {
		opts.Backend = f.backend
	}
	if flags.Changed("tolerance") {
		opts.Tolerance = f.tolerance
	}
	opts.Exact = f.exact
	return opts, opts.ValidateAndSetDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatHTML}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// IsCheckFailure reports whether err is a failed consistency or structure
// check rather than a usage or I/O error.
func IsCheckFailure(err error) bool {
	return errors.Is(err, errors.ErrCodeConsistencyFailed) || errors.Is(err, errors.ErrCodeStructureMismatch)
}
