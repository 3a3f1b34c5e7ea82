package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"embedkit/internal/vecindex"
)

var updateTexts []string

var updateCmd = &cobra.Command{
	Use:   "update <name> [path]",
	Short: "Append a corpus to an existing index",
	Long: `Embed new texts and append them to an existing named index. Existing
chunks keep their ids and positions. The index must already exist; use
'embedkit create' for new indexes.

Examples:
  embedkit update notes ./more-docs
  embedkit update notes --text "one more chunk"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringArrayVar(&updateTexts, "text", nil, "inline text to append (repeatable)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name := args[0]

	texts := updateTexts
	if len(texts) == 0 {
		path := rootDir
		if len(args) > 1 {
			var err error
			path, err = filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}
		}
		var err error
		texts, err = gatherTexts(path)
		if err != nil {
			return err
		}
	}
	if len(texts) == 0 {
		return fmt.Errorf("nothing to append")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	indexer, err := newIndexer(st)
	if err != nil {
		return err
	}

	fmt.Printf("Embedding %d chunks...\n", len(texts))
	idx, err := indexer.Update(name, texts, embedProgress("Embedding"))
	if err != nil {
		if errors.Is(err, vecindex.ErrNotFound) {
			return fmt.Errorf("index %q not found. Run 'embedkit create %s' first", name, name)
		}
		return fmt.Errorf("failed to update index: %w", err)
	}

	fmt.Printf("\nIndex updated:\n")
	fmt.Printf("  Name:   %s\n", name)
	fmt.Printf("  Added:  %d\n", len(texts))
	fmt.Printf("  Chunks: %d\n", idx.Len())
	return nil
}
