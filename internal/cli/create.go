package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var createTexts []string

var createCmd = &cobra.Command{
	Use:   "create <name> [path]",
	Short: "Create a new index from a corpus",
	Long: `Embed a corpus and build a new named index.

The corpus is either a directory (walked with the configured include and
exclude patterns), a single file, or inline --text flags.

Examples:
  embedkit create notes ./docs
  embedkit create scratch --text "first chunk" --text "second chunk"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringArrayVar(&createTexts, "text", nil, "inline text to index (repeatable)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]

	texts := createTexts
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

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	if ok, err := st.Exists(name); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("index %q already exists. Use 'embedkit update %s' to append", name, name)
	}

	indexer, err := newIndexer(st)
	if err != nil {
		return err
	}

	fmt.Printf("Embedding %d chunks...\n", len(texts))
	idx, err := indexer.Create(name, texts, embedProgress("Embedding"))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	meta := idx.Metadata()
	fmt.Printf("\nIndex created:\n")
	fmt.Printf("  Name:      %s\n", name)
	fmt.Printf("  Chunks:    %d\n", meta.TotalChunks)
	fmt.Printf("  Dimension: %d\n", meta.Dimension)
	fmt.Printf("  Model:     %s\n", meta.Model)
	return nil
}
