package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"embedkit/internal/adapter/chunker"
	"embedkit/internal/adapter/fs"
	"embedkit/internal/usecase"
)

// gatherTexts walks a corpus directory (or single file) and splits its
// contents into embeddable chunks.
func gatherTexts(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}

	chk := chunker.NewParagraphChunker(cfg.Index.ChunkChars)

	if !info.IsDir() {
		content, err := fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return chk.Chunk(content), nil
	}

	walker := fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)
	files, err := walker.Walk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	var texts []string
	for _, file := range files {
		content, err := fs.ReadFile(file.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", file.Path, err)
			continue
		}
		texts = append(texts, chk.Chunk(content)...)
	}
	return texts, nil
}

// embedProgress returns a ProgressFunc driving a progress bar over the
// embedding phase.
func embedProgress(description string) usecase.ProgressFunc {
	var bar *progressbar.ProgressBar

	return func(processed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}
}
