// Package chunker splits document text into chunks sized for embedding.
package chunker

import "strings"

// ParagraphChunker splits text on blank lines and merges adjacent paragraphs
// up to a rune budget. Paragraphs larger than the budget are split hard so
// no chunk ever exceeds it.
type ParagraphChunker struct {
	maxRunes int
}

func NewParagraphChunker(maxRunes int) *ParagraphChunker {
	if maxRunes <= 0 {
		maxRunes = 2000
	}
	return &ParagraphChunker{maxRunes: maxRunes}
}

// Chunk returns non-empty chunks in document order.
func (c *ParagraphChunker) Chunk(text string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range splitParagraphs(text) {
		runes := []rune(para)

		// Oversized paragraph: emit what we have, then hard-split it.
		if len(runes) > c.maxRunes {
			flush()
			for len(runes) > 0 {
				n := c.maxRunes
				if n > len(runes) {
					n = len(runes)
				}
				piece := strings.TrimSpace(string(runes[:n]))
				if piece != "" {
					chunks = append(chunks, piece)
				}
				runes = runes[n:]
			}
			continue
		}

		if current.Len() > 0 && len([]rune(current.String()))+len(runes)+2 > c.maxRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}
