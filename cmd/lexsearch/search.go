package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/lexdex/internal/engine"
	"github.com/wizenheimer/lexdex/internal/index"
	"github.com/wizenheimer/lexdex/internal/metrics"
	"github.com/wizenheimer/lexdex/internal/rank"
)

var (
	queryArg     string
	topK         int
	outputFormat string
)

func init() {
	rootCmd.Flags().StringVarP(&queryArg, "query", "q", "", "The query string to search for (required)")
	rootCmd.Flags().IntVar(&topK, "topk", 10, "Number of results to return")
	rootCmd.Flags().StringVar(&outputFormat, "output-format", "text", `Output format: "text" or "json"`)
	rootCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("invalid --output-format %q, want \"text\" or \"json\"", outputFormat)
	}

	idx, err := index.Open(dictFile, postingsFile, metadataFile)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	eng := engine.New(idx, rank.DefaultConfig(), metrics.NullObserver{})

	results, err := eng.Search(context.Background(), queryArg, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}

	switch outputFormat {
	case "json":
		encoded, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	default:
		strs := make([]string, len(ids))
		for i, id := range ids {
			strs[i] = strconv.Itoa(id)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(strs, " "))
	}
	return nil
}
