// Package cli implements the macroroute developer harness.
//
// The harness loads a job file, runs routing passes through the pipeline and
// reports what happened. It adds nothing to the routing itself.
//
// # Commands
//
//   - route: run every pass the job asks for and write the layout as JSON
//   - place: run only the IO placement pass and list the perimeter positions
//   - mst: print the spanning-tree pairs of one supply net without routing
//   - cache: inspect or clear the local result cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/macroroute/pkg/buildinfo"
	"github.com/matzehuels/macroroute/pkg/cache"
	"github.com/matzehuels/macroroute/pkg/observability"
	"github.com/matzehuels/macroroute/pkg/observability/prom"
	"github.com/matzehuels/macroroute/pkg/pipeline"
	"github.com/matzehuels/macroroute/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "macroroute"

	// defaultMongoDB is the database used when --mongo is given without --mongo-db.
	defaultMongoDB = "macroroute"
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
		Use:          appName,
		Short:        "macroroute escapes macro pins and connects supply rings",
		Long:         `macroroute places macro IO pins on the perimeter, wires them out, builds power rings and connects supply pins with minimum spanning trees.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.routeCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.mstCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// backendFlags select where results are cached, stored and measured.
type backendFlags struct {
	noCache     bool
	redisURL    string
	mongoURI    string
	mongoDB     string
	diagDir     string
	metricsFile string
}

func (f *backendFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "cache results in Redis (redis://host:port/db) instead of on disk")
	cmd.Flags().StringVar(&f.mongoURI, "mongo", "", "store run records in MongoDB (mongodb://...)")
	cmd.Flags().StringVar(&f.mongoDB, "mongo-db", defaultMongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&f.diagDir, "diag-dir", "", "write DOT/SVG dumps of unroutable nets here")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics of the run to this file")
}

// newRunner creates a pipeline runner for CLI use. The returned finish
// function flushes metrics and closes the backends.
func (c *CLI) newRunner(ctx context.Context, f backendFlags) (*pipeline.Runner, func() error, error) {
	ch, err := newCache(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	r := pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, appName+":"), c.Logger)
	r.DiagDir = f.diagDir

	if f.mongoURI != "" {
		s, err := store.OpenMongo(ctx, f.mongoURI, f.mongoDB)
		if err != nil {
			ch.Close()
			return nil, nil, err
		}
		r.Store = s
	}

	var reg *prometheus.Registry
	if f.metricsFile != "" {
		reg = prometheus.NewRegistry()
		prom.New(reg).Register()
	}

	finish := func() error {
		err := r.Close(context.WithoutCancel(ctx))
		if reg != nil {
			observability.Reset()
			if werr := prometheus.WriteToTextfile(f.metricsFile, reg); werr != nil && err == nil {
				err = werr
			}
		}
		return err
	}
	return r, finish, nil
}

func newCache(ctx context.Context, f backendFlags) (cache.Cache, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), nil
	case f.redisURL != "":
		return cache.OpenRedis(ctx, f.redisURL, "")
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/macroroute/).
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
