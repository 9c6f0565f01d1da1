package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/ddsgen/internal/controller"
	"github.com/thywilljoshua/ddsgen/internal/web"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	var grace time.Duration

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the DDS form over HTTP",
		Args:    cobra.NoArgs,
		PreRunE: a.requireAPIKey,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, exporter, err := a.pipeline(ctx)
			if err != nil {
				return err
			}
			ctrl := controller.New(client, exporter, a.logger)
			srv, err := web.New(ctrl, web.Options{
				GenerateInterval: a.cfg.GenerateInterval,
				GenerateBurst:    a.cfg.GenerateBurst,
			}, a.logger)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx, addr, grace)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: $DDS_ADDR or :8080)")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "shutdown grace period")
	return cmd
}
