package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"finrag/internal/domain"
	"finrag/internal/usecase"
)

var (
	retrieveQuery  string
	retrieveK      int
	retrieveScores bool
	retrieveJSON   bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Find the statement closest to a query",
	Long: `Embed the query and return the file whose narration chunk is most
similar to it. The index is rebuilt first if documents changed since the last
build.

Examples:
  finrag retrieve -q "salary credit in may"
  finrag retrieve "atm withdrawal" --scores -k 5
  finrag retrieve -q "emi" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveQuery, "query", "q", "", "query text")
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", 0, "neighbors to consider (default from config)")
	retrieveCmd.Flags().BoolVar(&retrieveScores, "scores", false, "print every hit with its score")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

type retrieveOutput struct {
	usecase.Result
	Hits []domain.Hit `json:"hits,omitempty"`
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := retrieveQuery
	if query == "" && len(args) == 1 {
		query = args[0]
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	res, err := app.Retrieve.RetrieveClosestDocument(ctx, query, retrieveK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	var hits []domain.Hit
	if retrieveScores {
		// Usually a query cache hit after the call above.
		hits, err = app.Retrieve.Search(ctx, query, retrieveK)
		if err != nil {
			return fmt.Errorf("retrieval failed: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if retrieveJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(retrieveOutput{Result: res, Hits: hits})
	}

	if res.Found {
		fmt.Fprintln(out, res.Filename)
	} else {
		fmt.Fprintln(out, res.Message)
	}
	for i, h := range hits {
		fmt.Fprintf(out, "%3d. %.4f  %s  (chunk %d)\n", i+1, h.Score, h.Filename, h.Position)
	}
	return nil
}
