package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Retriva/internal/core"
)

func TestChunkTextSingleChunk(t *testing.T) {
	chunks, err := ChunkText("hello", 10, 2)

	require.NoError(t, err)
	require.Equal(t, []string{"hello"}, chunks)
}

func TestChunkTextExactFit(t *testing.T) {
	chunks, err := ChunkText("abcdefghij", 10, 2)

	require.NoError(t, err)
	require.Equal(t, []string{"abcdefghij"}, chunks)
}

func TestChunkTextOverlap(t *testing.T) {
	chunks, err := ChunkText("abcdefghij", 4, 2)

	require.NoError(t, err)
	require.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, chunks)
}

func TestChunkTextShortTail(t *testing.T) {
	chunks, err := ChunkText("abcdefghijk", 4, 2)

	require.NoError(t, err)
	require.Equal(t, []string{"abcd", "cdef", "efgh", "ghij", "ijk"}, chunks)
}

func TestChunkTextNoOverlap(t *testing.T) {
	chunks, err := ChunkText("abcdef", 2, 0)

	require.NoError(t, err)
	require.Equal(t, []string{"ab", "cd", "ef"}, chunks)
}

func TestChunkTextEmpty(t *testing.T) {
	chunks, err := ChunkText("", 4, 2)

	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestChunkTextMultibyte(t *testing.T) {
	chunks, err := ChunkText("héllo wörld", 4, 1)

	require.NoError(t, err)
	for _, ch := range chunks {
		assert.True(t, len([]rune(ch)) <= 4)
	}
	assert.Equal(t, "héll", chunks[0])
}

func TestChunkTextInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 4, -1},
		{"overlap equals size", 4, 4},
		{"overlap exceeds size", 4, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ChunkText("some text", tc.size, tc.overlap)

			require.Error(t, err)
			var cfgErr *core.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestChunkTextLargeInput(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks, err := ChunkText(text, 1000, 200)

	require.NoError(t, err)
	// ceil((2500-200)/(1000-200)) = 3
	require.Len(t, chunks, 3)
	assert.Equal(t, 1000, len(chunks[0]))
	assert.Equal(t, 1000, len(chunks[1]))
	assert.Equal(t, 900, len(chunks[2]))
}
