// Package cli implements the plantbeam command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jmswint/plantbeam/pkg/buildinfo"
	"github.com/jmswint/plantbeam/pkg/cache"
	"github.com/jmswint/plantbeam/pkg/config"
	"github.com/jmswint/plantbeam/pkg/pipeline"
	"github.com/jmswint/plantbeam/pkg/render"
	"github.com/jmswint/plantbeam/pkg/server"
)

// appName is the application name used for directories and display.
const appName = "plantbeam"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger and loaded
// configuration. A broken config file degrades to defaults with a
// warning rather than blocking every command.
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := config.Load()
	c := &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}
	if err != nil {
		c.Logger.Warn("config load failed, using defaults", "err", err)
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "plantbeam renders PlantUML diagrams through encoding servers",
		Long:         `plantbeam turns PlantUML sources and plain-text descriptions into diagram images. It compresses sources into server tokens, probes a chain of rendering endpoints (self-hosted, plantuml.com, kroki.io), and persists the fetched images locally.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.synthCommand())
	root.AddCommand(c.detectCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.serversCommand())
	root.AddCommand(c.samplesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. The returned cache is
// the runner's backend; callers own closing it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, cache.Cache, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	resolver := server.NewResolver(c.Config.Endpoints())
	renderer := render.NewRenderer(nil, store)
	return pipeline.NewRunner(resolver, renderer, c.Logger), store, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return c.Config.OpenCache(ctx)
}

// pipelineOptions seeds pipeline options from configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Format:    c.Config.Format,
		OutputDir: c.Config.OutputDir,
		Logger:    c.Logger,
	}
}

// cacheDir returns the render cache directory using the XDG convention
// (~/.cache/plantbeam/), honoring the configured override.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
