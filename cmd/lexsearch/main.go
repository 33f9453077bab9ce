// Command lexsearch is the CLI front door over the index: a one-shot
// "search" (the default, flagless invocation) and a "serve" subcommand
// that exposes the same engine over HTTP and WebSocket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	dictFile     string
	postingsFile string
	metadataFile string
)

var rootCmd = &cobra.Command{
	Use:   "lexsearch",
	Short: "Search a court-opinion index from the command line",
	Long: `lexsearch queries a dictionary/postings/metadata index built from a
corpus of court opinions, ranking matches with a TF-IDF-and-zone scorer
and supporting AND/OR/NOT boolean queries alongside free text.

Examples:
  # Free-text query, ten results as plain text
  lexsearch --query "breach of contract" --topk 10

  # Boolean query, JSON output
  lexsearch -q "contract AND breach" --output-format json

  # Serve the same index over HTTP and WebSocket
  lexsearch serve --addr :8080`,
	RunE: runSearch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dictFile, "dict-file", "d", "dictionary.txt", "Path to the dictionary file")
	rootCmd.PersistentFlags().StringVarP(&postingsFile, "postings-file", "p", "postings.txt", "Path to the postings file")
	rootCmd.PersistentFlags().StringVarP(&metadataFile, "metadata-file", "m", "metadata.tsv", "Path to the metadata file (optional)")

	rootCmd.AddCommand(serveCmd)
}
