package core

// ExtractionSource records which strategy produced the text, so downstream
// ingestion can log and branch on provenance without string sniffing.
type ExtractionSource string

const (
	SourcePlain    ExtractionSource = "plain"    // .txt / .md raw decode
	SourceDocconv  ExtractionSource = "docconv"  // .doc / .docx conversion
	SourcePrimary  ExtractionSource = "primary"  // structured PDF parse
	SourceLayout   ExtractionSource = "layout"   // BT..ET / stream scan fallback
	SourceLoose    ExtractionSource = "loose"    // whole-file pattern fallback
	SourceSentinel ExtractionSource = "sentinel" // extraction failed; placeholder text
)

// ExtractedText is the result of text extraction.
type ExtractedText struct {
	Source ExtractionSource
	Text   string
}

// Degraded reports whether the text is the failure placeholder rather than
// real document content.
func (e ExtractedText) Degraded() bool { return e.Source == SourceSentinel }

// DocumentExtractor turns raw file bytes into a single text string, choosing
// its strategy from the declared extension and content type.
type DocumentExtractor interface {
	Extract(data []byte, extension, contentType string) (ExtractedText, error)
}
