package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/scenegrid/internal/config"
	"github.com/matzehuels/scenegrid/pkg/buildinfo"
	"github.com/matzehuels/scenegrid/pkg/cache"
	"github.com/matzehuels/scenegrid/pkg/core/recipe"
	"github.com/matzehuels/scenegrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "scenegrid"
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
	Config config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Scenegrid lays out figure scenes on nested grids",
		Long:         `Scenegrid builds figure scenes from recipe calls described in TOML or YAML, resolves their nested grid layout and renders them to SVG, PNG, PDF, JSON or DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.Verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .scenegrid.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.recipesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
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
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version)
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.Dispatcher = c.newDispatcher()
	return r, nil
}

// newDispatcher returns a dispatcher over the built-in recipes. Scenes that
// give no size get the configured one.
func (c *CLI) newDispatcher() *recipe.Dispatcher {
	opts := []recipe.Option{recipe.WithLogger(c.Logger), recipe.WithWorkers(c.Config.Workers)}
	if c.Config.Width > 0 && c.Config.Height > 0 {
		opts = append(opts, recipe.WithSceneSize(c.Config.Width, c.Config.Height))
	}
	return recipe.NewDispatcher(nil, opts...)
}

// newCache opens the configured cache. Redis takes precedence over the file
// cache when a URL is configured.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:         url,
			Prefix:      c.Config.Cache.RedisPrefix,
			DialTimeout: c.Config.Cache.DialTimeout,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to cacheDir.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/scenegrid/).
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

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
