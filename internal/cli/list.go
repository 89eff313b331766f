package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"BlogScraper/internal/domain"
)

func newListCommand(root *rootOptions) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored blog posts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filters.filter()
			if err != nil {
				return err
			}

			application, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			posts, err := application.Catalog().List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(posts) == 0 {
				fmt.Fprintln(out, "No posts found matching the criteria.")
				return nil
			}

			total, err := application.Catalog().Count(cmd.Context(), filter)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Title", "Author", "Company", "Date", "URL"})
			for _, post := range posts {
				t.AppendRow(table.Row{post.Title, post.Author, post.Company, formatDay(post.PublishedDate), post.URL})
			}
			t.AppendFooter(table.Row{"Total posts", total})
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}

func formatDay(date *time.Time) string {
	if date == nil {
		return "-"
	}
	return date.Format(domain.DayLayout)
}
