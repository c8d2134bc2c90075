package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Retriva/internal/models"
)

func TestBootstrapSQLRendersEmbedDim(t *testing.T) {
	script, err := bootstrapSQL(768)

	require.NoError(t, err)
	assert.Contains(t, script, "vector(768)")
	assert.NotContains(t, script, "{{embed_dim}}")
}

func TestBootstrapSQLRejectsInvalidDim(t *testing.T) {
	for _, dim := range []int{0, -1} {
		_, err := bootstrapSQL(dim)
		require.Error(t, err, "dim %d", dim)
	}
}

func TestCheckEmbeddingDims(t *testing.T) {
	chunks := []models.DocumentChunk{
		{DocumentID: "d", ChunkIndex: 0, Embedding: make([]float32, 768)},
		{DocumentID: "d", ChunkIndex: 1, Embedding: make([]float32, 768)},
	}
	require.NoError(t, checkEmbeddingDims(chunks, 768))

	chunks[1].Embedding = make([]float32, 1536)
	err := checkEmbeddingDims(chunks, 768)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1536")
	assert.Contains(t, err.Error(), "768")
}
