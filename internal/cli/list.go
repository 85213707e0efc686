package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored statements and index status",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	names, err := app.Store.ListFilenames()
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	stats, err := app.Index.Stats()
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	fmt.Fprintf(out, "\n%d documents\n", stats.Documents)
	if stats.IndexVersion == "" {
		fmt.Fprintln(out, "Index: not built")
		return nil
	}
	fmt.Fprintf(out, "Index: %s, %d chunks, built %s\n",
		stats.IndexVersion, stats.Chunks, stats.IndexedAt.Local().Format(time.DateTime))
	return nil
}
