package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/ddsgen/internal/controller"
	"github.com/thywilljoshua/ddsgen/internal/dds"
)

func generateCmd(a *app) *cobra.Command {
	var out string
	var format string
	var noPDF bool

	cmd := &cobra.Command{
		Use:     "generate <prompt>",
		Short:   "Generate a DDS from a prompt and save it as a PDF",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: a.requireAPIKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" && format != "none" {
				return fmt.Errorf("invalid --format %q (want json, yaml or none)", format)
			}
			ctx := cmd.Context()
			client, exporter, err := a.pipeline(ctx)
			if err != nil {
				return err
			}

			ctrl := controller.New(client, exporter, a.logger)
			if err := ctrl.Submit(ctx, strings.Join(args, " ")); err != nil {
				if msg := ctrl.State().Error; msg != "" {
					return errors.New(msg)
				}
				return err
			}
			res := ctrl.State().Result

			if err := printReport(cmd.OutOrStdout(), format, res.Report); err != nil {
				return err
			}
			if noPDF {
				return nil
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			tmp, err := os.CreateTemp(out, ".dds-*.pdf")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			name, err := ctrl.Export(ctx, tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			dst := filepath.Join(out, name)
			if err := os.Rename(tmp.Name(), dst); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", dst)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory for the PDF")
	cmd.Flags().StringVar(&format, "format", "json", "report output on stdout: json|yaml|none")
	cmd.Flags().BoolVar(&noPDF, "no-pdf", false, "skip the PDF export")
	return cmd
}

func printReport(w io.Writer, format string, r dds.Report) error {
	switch format {
	case "json":
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		return writeYAML(w, r)
	}
	return nil
}
