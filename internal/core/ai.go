package core

import "context"

type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// KeywordExtractor derives a small set of salient lowercased terms from free
// text. Implementations never fail; at worst they degrade to naive
// tokenization.
type KeywordExtractor interface {
	Extract(text string) []string
}
