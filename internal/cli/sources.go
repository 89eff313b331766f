package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"BlogScraper/internal/app"
	"BlogScraper/internal/infrastructure/parser"
)

func newSourcesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Print the blogs with dedicated extraction rules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			registry, err := parser.NewRegistry(app.SourceOverrides(cfg.Sources))
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Key", "Index", "Feed", "Enabled"})
			for _, src := range registry.All() {
				t.AppendRow(table.Row{src.Name, src.Key, src.BaseURL, src.FeedURL, !src.Disabled})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}
