package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"embedkit/internal/domain"
	"embedkit/internal/vecindex"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Search an index",
	Long: `Embed the query text and return the nearest chunks from a named index,
ranked ascending by Euclidean distance.

Examples:
  embedkit query notes -q "how are backups restored"
  embedkit query notes -q "retention policy" -k 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	name := args[0]

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	indexer, err := newIndexer(st)
	if err != nil {
		return err
	}

	topK := cfg.Search.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	results, err := indexer.Search(name, queryText, topK)
	if err != nil {
		if errors.Is(err, vecindex.ErrNotFound) {
			return fmt.Errorf("index %q not found. Run 'embedkit create %s' first", name, name)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if cfg.Search.MinScore > 0 {
		filtered := results[:0:0]
		for _, r := range results {
			if r.Score >= cfg.Search.MinScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for _, r := range results {
		printResult(r)
	}
	return nil
}

func printResult(r domain.SearchResult) {
	fmt.Printf("--- [%d] chunk %d (distance: %.4f, score: %.4f) ---\n", r.Rank, r.ChunkID, r.Distance, r.Score)
	text := r.Text
	if len(text) > 500 {
		text = text[:500] + "..."
	}
	fmt.Println(text)
	fmt.Println()
}
