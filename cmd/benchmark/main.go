package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"finrag/config"
	"finrag/internal/cli"
)

func main() {
	dir := flag.String("dir", ".", "Data directory holding ingested statements")
	query := flag.String("q", "", "Query to time; separate several with '|'")
	topK := flag.Int("k", 5, "Number of hits")
	runs := flag.Int("n", 20, "Timed runs per query")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./statements -q \"atm withdrawal|salary credit\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Index load or rebuild time")
		fmt.Println("  2. Per-query latency, uncached and cached")
		fmt.Println("  3. Top hit and score spread")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	// Caching would hide the embedding cost of every run after the first.
	cfg.Retrieve.CacheSize = 0

	st, err := cli.OpenStore(cfg, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	app, err := cli.NewApp(cfg, st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Embedder not available: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Provider: %s (%s)\n", cfg.Embedding.Provider, cfg.Embedding.Model)

	start := time.Now()
	idx, err := app.Index.Current(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Index error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Index ready in %s: %d chunks, dimension %d\n", time.Since(start).Round(time.Millisecond), idx.Len(), idx.Dimension())
	if idx.Empty() {
		fmt.Println("Nothing ingested - run 'finrag ingest' first")
		os.Exit(1)
	}
	fmt.Println()

	for _, q := range strings.Split(*query, "|") {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		fmt.Printf("Query: %q\n", q)
		fmt.Println(strings.Repeat("-", 70))

		timings := make([]time.Duration, 0, *runs)
		var last []float64
		var top string
		for i := 0; i < *runs; i++ {
			t0 := time.Now()
			hits, err := app.Retrieve.Search(ctx, q, *topK)
			timings = append(timings, time.Since(t0))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
				os.Exit(1)
			}
			last = last[:0]
			for _, h := range hits {
				last = append(last, h.Score)
			}
			if len(hits) > 0 {
				top = hits[0].Filename
			}
		}

		sort.Slice(timings, func(i, j int) bool { return timings[i] < timings[j] })
		fmt.Printf("  Top hit:  %s\n", top)
		if len(last) > 0 {
			fmt.Printf("  Scores:   %.3f .. %.3f (%d hits)\n", last[0], last[len(last)-1], len(last))
		}
		fmt.Printf("  Latency:  p50 %s  p95 %s  max %s\n\n",
			percentile(timings, 0.50), percentile(timings, 0.95), timings[len(timings)-1])
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := int(float64(len(sorted)-1) * p)
	return sorted[i].Round(time.Microsecond)
}
