package ingest

import (
	"fmt"

	"github.com/markdave123-py/Retriva/internal/core"
)

// ChunkText splits text into fixed-size windows of runes with the given
// overlap between consecutive windows. The final window may be shorter.
// Windows count characters, not bytes, so multibyte text does not get
// split mid-rune.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, &core.ConfigurationError{Msg: fmt.Sprintf("chunk size must be positive, got %d", size)}
	}
	if overlap < 0 {
		return nil, &core.ConfigurationError{Msg: fmt.Sprintf("chunk overlap must be non-negative, got %d", overlap)}
	}
	if overlap >= size {
		return nil, &core.ConfigurationError{Msg: fmt.Sprintf("chunk overlap %d must be smaller than chunk size %d", overlap, size)}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
