package keywords

import (
	"log"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/markdave123-py/Retriva/internal/core"
)

var _ core.KeywordExtractor = (*Extractor)(nil)

// stopwords are common terms that carry no retrieval signal even when the
// tagger classifies them as nouns or verbs.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "up": {},
	"about": {}, "into": {}, "through": {}, "during": {}, "before": {},
	"after": {}, "above": {}, "below": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"should": {}, "could": {}, "can": {}, "may": {}, "might": {}, "must": {},
	"shall": {}, "this": {}, "that": {}, "these": {}, "those": {}, "a": {},
	"an": {}, "as": {}, "if": {}, "each": {}, "how": {}, "what": {},
	"where": {}, "when": {}, "why": {}, "who": {}, "which": {},
}

var rePunct = regexp.MustCompile(`[^\w\s]`)

// Extractor derives salient search terms from free text using
// part-of-speech tagging, with a plain tokenizer as the safety net.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the deduplicated, lowercased nouns, verbs and adjectives
// of the text, plus its plain word tokens, all at least 3 characters and not
// stopwords. It never fails; on tagger errors it degrades to tokenization
// alone, which may be empty for a very short query.
func (e *Extractor) Extract(text string) []string {
	terms := posTerms(text)
	terms = append(terms, tokenize(text)...)

	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if len(term) < 3 {
			continue
		}
		if _, stop := stopwords[term]; stop {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// posTerms pulls nouns (NN*), verbs (VB*) and adjectives (JJ*) out of the
// text. Returns nil when tagging fails.
func posTerms(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		log.Printf("keywords: pos tagging failed, falling back to tokens: %v", err)
		return nil
	}

	var terms []string
	for _, tok := range doc.Tokens() {
		switch {
		case strings.HasPrefix(tok.Tag, "NN"),
			strings.HasPrefix(tok.Tag, "VB"),
			strings.HasPrefix(tok.Tag, "JJ"):
			terms = append(terms, tok.Text)
		}
	}
	return terms
}

// tokenize is the naive fallback: strip punctuation, split on whitespace.
func tokenize(text string) []string {
	return strings.Fields(rePunct.ReplaceAllString(strings.ToLower(text), ""))
}
