package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored indexes",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	names, err := st.List()
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No indexes found.")
		return nil
	}

	for _, name := range names {
		idx, err := st.Load(name)
		if err != nil {
			fmt.Printf("%-20s (unreadable: %v)\n", name, err)
			continue
		}
		meta := idx.Metadata()
		fmt.Printf("%-20s %6d chunks  dim %-5d model %s\n", name, meta.TotalChunks, meta.Dimension, meta.Model)
	}
	return nil
}
