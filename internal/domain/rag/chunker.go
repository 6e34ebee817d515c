package rag

import "strings"

// ParagraphChunker splits text on blank lines and accumulates paragraphs
// into chunks bounded by a target chunk size.
type ParagraphChunker struct{}

// NewParagraphChunker constructs the chunker.
func NewParagraphChunker() *ParagraphChunker {
	return &ParagraphChunker{}
}

// Chunk splits text into paragraph-aligned chunks no larger than
// chunkSize bytes, except a single paragraph that alone exceeds
// chunkSize, which is kept whole rather than split mid-paragraph.
func (c *ParagraphChunker) Chunk(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}

	var chunks []string
	var buffer strings.Builder

	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		chunks = append(chunks, buffer.String())
		buffer.Reset()
	}

	for _, raw := range strings.Split(text, "\n\n") {
		paragraph := strings.TrimSpace(raw)
		if paragraph == "" {
			continue
		}
		if buffer.Len() > 0 && buffer.Len()+len(paragraph)+2 > chunkSize {
			flush()
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n\n")
		}
		buffer.WriteString(paragraph)
	}
	flush()

	return chunks
}

var _ Chunker = (*ParagraphChunker)(nil)
