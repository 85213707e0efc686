package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"finrag/internal/adapter/fs"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Store statements and derive their records and narration",
	Long: `Ingest statement files. Directories are walked using the include and
exclude patterns from the config. Each file is stored under its base name,
replacing any earlier file with the same name.

A file whose table cannot be extracted is still stored and reported as an
error. Ingesting invalidates the index; the next retrieval rebuilds it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	files, err := walker.Walk(args...)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching files")
		return nil
	}

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	start := time.Now()
	bar := newProgressBar(len(paths), "Ingesting")
	result := app.Ingest.IngestFiles(paths, func(string) {
		bar.Add(1)
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ingested %d files (%d records) in %s\n",
		len(result.Ingested), result.Records, formatDuration(time.Since(start)))
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "%d files failed:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
	}
	return nil
}

func newProgressBar(total int, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
