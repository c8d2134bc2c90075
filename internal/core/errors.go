package core

import "fmt"

// The error kinds that cross component boundaries. Anything else is handled
// internally (extraction fallback stages in particular) and never propagates.

// ExtractionError means a document's text could not be extracted at all:
// the extension is unsupported, or every PDF fallback stage came up short.
type ExtractionError struct {
	Extension string
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed for %q", e.Extension)
	}
	return fmt.Sprintf("extraction failed for %q: %v", e.Extension, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid chunk size/overlap combination.
// Fatal to the ingestion run that carries it.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "invalid configuration: " + e.Msg }

// EmbeddingError wraps an upstream embedding-service failure. Fatal to the
// whole document's ingestion; no partial chunk sets are persisted.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

// StorageError wraps a failed chunk-store write.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("chunk store write failed: %v", e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// RetrievalError is surfaced to search callers when the query embedding or
// the store query failed outright. Distinguishes "query failed" from the
// perfectly valid empty result set.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval failed: %v", e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }
