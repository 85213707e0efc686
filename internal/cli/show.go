package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finrag/internal/adapter/narration"
	"finrag/internal/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Show the records, narration and totals of a stored statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	name := args[0]
	doc, err := app.Store.Get(name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no stored document named %q", name)
	}
	if err != nil {
		return err
	}
	records, err := app.Store.Records(name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	text, err := app.Store.Narration(name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s, %d bytes)\n\n", doc.Filename, doc.ContentType, len(doc.Content))

	if len(records) == 0 {
		fmt.Fprintln(out, "No records extracted.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Date.Or("-"), r.Description.Or("-"), r.Debit.Or("-"), r.Credit.Or("-"), r.Balance.Or("-"))
	}
	tw.Flush()

	t := narration.Sum(records)
	fmt.Fprintf(out, "\n%d records, debits %s, credits %s, net %s",
		t.Count, t.Debit.StringFixed(2), t.Credit.StringFixed(2), t.Net().StringFixed(2))
	if t.Skipped > 0 {
		fmt.Fprintf(out, " (%d unparseable amounts skipped)", t.Skipped)
	}
	fmt.Fprintf(out, "\n\n%s\n", text)
	return nil
}
