package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParagraphChunker_SplitsOnBlankLines(t *testing.T) {
	c := NewParagraphChunker()
	text := "first paragraph\n\nsecond paragraph\n\nthird paragraph"

	chunks := c.Chunk(text, 1000)
	require.Equal(t, []string{"first paragraph\n\nsecond paragraph\n\nthird paragraph"}, chunks)
}

func TestParagraphChunker_BoundsByChunkSize(t *testing.T) {
	c := NewParagraphChunker()
	text := "aaaaaaaaaa\n\nbbbbbbbbbb\n\ncccccccccc"

	chunks := c.Chunk(text, 15)
	require.Equal(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}, chunks)
}

func TestParagraphChunker_NeverSplitsAnOversizedParagraph(t *testing.T) {
	c := NewParagraphChunker()
	huge := strings.Repeat("x", 50)
	text := "short\n\n" + huge

	chunks := c.Chunk(text, 10)
	require.Equal(t, []string{"short", huge}, chunks)
}

func TestParagraphChunker_DropsEmptyParagraphs(t *testing.T) {
	c := NewParagraphChunker()
	text := "one\n\n\n\n   \n\ntwo"

	chunks := c.Chunk(text, 1000)
	require.Equal(t, []string{"one\n\ntwo"}, chunks)
}

func TestParagraphChunker_EmptyInputProducesNoChunks(t *testing.T) {
	c := NewParagraphChunker()
	require.Empty(t, c.Chunk("", 1000))
	require.Empty(t, c.Chunk("   \n\n  ", 1000))
}

func TestParagraphChunker_NonPositiveChunkSizeFallsBackToDefault(t *testing.T) {
	c := NewParagraphChunker()
	text := "alpha\n\nbeta"

	chunks := c.Chunk(text, 0)
	require.Equal(t, []string{"alpha\n\nbeta"}, chunks)
}
