package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <filename>...",
	Short: "Remove stored statements",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		for _, name := range args {
			if err := app.Ingest.Delete(name); err != nil {
				return fmt.Errorf("failed to delete %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored statement and the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Ingest.Clear(); err != nil {
			return fmt.Errorf("failed to clear store: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Store cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}
