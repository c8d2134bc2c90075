package extractor

import (
	"bytes"
	"errors"
	"strings"

	"code.sajari.com/docconv"

	"github.com/markdave123-py/Retriva/internal/core"
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// Options carries the extraction validation floors. Both are empirically
// chosen cutoffs to reject near-empty extractions, not business rules.
type Options struct {
	MinAlnumChars  int // primary PDF parse must yield at least this many alphanumerics
	MinUsableChars int // fallback-extracted text must exceed this length
}

// DocconvExtractor extracts plain text from uploaded files. txt/md are
// decoded directly, doc/docx go through docconv, and PDFs run a chain of
// strategies from a structured parse down to raw byte scanning.
type DocconvExtractor struct {
	opts Options
}

func New(opts Options) *DocconvExtractor {
	if opts.MinAlnumChars <= 0 {
		opts.MinAlnumChars = 20
	}
	if opts.MinUsableChars <= 0 {
		opts.MinUsableChars = 50
	}
	return &DocconvExtractor{opts: opts}
}

// Extract returns the text for the given file bytes. The error is always an
// *core.ExtractionError when non-nil. PDF extraction never errors here: when
// every stage fails it returns sentinel placeholder text instead, so
// ingestion can proceed with a clearly marked degraded document.
func (e *DocconvExtractor) Extract(data []byte, extension, contentType string) (core.ExtractedText, error) {
	switch strings.ToLower(extension) {
	case ".txt", ".md":
		return core.ExtractedText{Source: core.SourcePlain, Text: string(data)}, nil

	case ".doc", ".docx":
		res, err := docconv.Convert(bytes.NewReader(data), mimeType(extension, contentType), false)
		if err != nil {
			return core.ExtractedText{}, &core.ExtractionError{Extension: extension, Err: err}
		}
		return core.ExtractedText{Source: core.SourceDocconv, Text: res.Body}, nil

	case ".pdf":
		return e.extractPDF(data), nil

	default:
		return core.ExtractedText{}, &core.ExtractionError{
			Extension: extension,
			Err:       errors.New("unsupported file extension"),
		}
	}
}

// mimeType prefers the declared content type and falls back to the one
// implied by the extension.
func mimeType(extension, contentType string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(extension) {
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	default:
		return "text/plain"
	}
}
