package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"BlogScraper/internal/export"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	var (
		filters filterFlags
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored blog posts as JSON or CSV.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtName, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			filter, err := filters.filter()
			if err != nil {
				return err
			}

			application, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			var (
				w    io.Writer = cmd.OutOrStdout()
				file *os.File
			)
			if output != "" && output != "-" {
				if dir := filepath.Dir(output); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return fmt.Errorf("create output directory: %w", err)
					}
				}
				file, err = os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				w = file
			}

			n, err := application.Catalog().Export(cmd.Context(), w, fmtName, filter)
			if file != nil {
				err = closeExport(file, output, err)
			}
			if err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d posts to %s\n", n, output)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d posts\n", n)
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "export format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

// closeExport closes the export file and reports its error unless the
// export itself already failed.
func closeExport(c io.Closer, name string, err error) error {
	if cerr := c.Close(); cerr != nil && err == nil {
		return fmt.Errorf("close %s: %w", name, cerr)
	}
	return err
}
