package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rederive bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the vector index from stored narrations",
	Long: `Chunk every stored narration, embed the chunks and persist a new index.

Retrieval rebuilds the index on demand, so this is only needed to pay the
embedding cost up front or after changing the embedding settings.

With --rederive, records and narrations are first re-extracted from the
stored raw files.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&rederive, "rederive", false, "re-extract records and narrations before indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()

	if rederive {
		res := app.Ingest.Rederive()
		fmt.Fprintf(out, "Re-derived %d documents (%d records)\n", len(res.Ingested), res.Records)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
	}

	result, err := app.Index.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	if result.Empty() {
		fmt.Fprintln(out, result.Message)
		return nil
	}

	fmt.Fprintf(out, "Indexed %d documents (%d chunks) in %s\n",
		result.Documents, result.Chunks, formatDuration(result.Duration))
	fmt.Fprintf(out, "Index version: %s\n", result.Version)
	return nil
}
