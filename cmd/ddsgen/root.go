package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thywilljoshua/ddsgen/internal/ai"
	"github.com/thywilljoshua/ddsgen/internal/config"
	"github.com/thywilljoshua/ddsgen/internal/dds"
	"github.com/thywilljoshua/ddsgen/internal/export"
	"github.com/thywilljoshua/ddsgen/internal/render"
)

// app carries state shared by every subcommand.
type app struct {
	logLevel  string
	logFormat string
	envFile   string

	cfg    config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ddsgen",
		Short:         "Generate Daily Safety Dialogue (DDS) handouts with Gemini",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text|json")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional dotenv file read before the environment")

	root.AddCommand(serveCmd(a), generateCmd(a), inspectCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// requireAPIKey is the pre-run check for commands that call Gemini.
func (a *app) requireAPIKey(*cobra.Command, []string) error {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return fmt.Errorf("%w: set it in the environment or in %s", err, a.envFile)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
}

// pipeline wires the Gemini backend, the content client and the exporter.
func (a *app) pipeline(ctx context.Context) (*dds.Client, *export.Exporter, error) {
	g, err := ai.NewGemini(ctx, a.cfg.APIKey, a.cfg.TextModel, a.cfg.ImageModel)
	if err != nil {
		return nil, nil, err
	}
	client := dds.NewClient(g.WithLogger(a.logger),
		dds.WithStyleSuffix(a.cfg.ImageStyleSuffix),
		dds.WithLogger(a.logger))

	raster, err := render.NewRasterizer(render.DefaultWidth, render.PrintPalette)
	if err != nil {
		return nil, nil, err
	}
	opts := export.DefaultOptions()
	opts.Scale = a.cfg.RenderScale
	opts.Optimize = a.cfg.OptimizePDF
	return client, export.New(raster, opts, a.logger), nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
