package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/ddsgen/internal/pdfinfo"
)

func inspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "Print page count and native text of an exported DDS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := pdfinfo.Inspect(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch format {
			case "json":
				b, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(b))
			case "yaml":
				return writeYAML(w, info)
			case "text":
				fmt.Fprintf(w, "pages: %d\n", info.Pages)
				for _, ln := range info.Lines() {
					fmt.Fprintln(w, ln)
				}
			default:
				return fmt.Errorf("invalid --format %q (want text, json or yaml)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text|json|yaml")
	return cmd
}
