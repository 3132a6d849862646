package commands

import (
	"io"

	"bookcatalog/lib/catalog"
	"bookcatalog/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

func renderBooks(out io.Writer, books []catalog.Book) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Title", "Genre"})
	for _, book := range books {
		t.AppendRow(table.Row{book.ID, book.Title, book.Genre})
	}
	t.AppendFooter(table.Row{"", "Total", len(books)})
	t.Render()
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Renders every book in the catalog as a table.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		client, err := catalog.NewClient(cmd.Context(), catalog.ClientOptions{
			BaseUrl: cfg.BaseUrl,
			Timeout: cfg.Timeout,
			DumpDir: cfg.DumpDir,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize catalog client", err)
		}
		books, err := client.ListBooks(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list books", err)
		}
		renderBooks(cmd.OutOrStdout(), books)
	},
}
