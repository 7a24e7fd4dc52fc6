package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity or stored artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates a page, file or URL could not be turned into text.
	// Callers absorb it and continue with placeholder content.
	ErrExtraction = errors.New("extraction failed")

	// ErrCorruptIndex indicates a named index exists but cannot be decoded.
	// Callers treat it like ErrNotFound when a rebuild path exists.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrGeneration indicates the hosted LLM or embedding call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrStorageWrite indicates persisting an index or session log failed.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrKnowledgeBaseUnavailable indicates no index is loaded for the session.
	ErrKnowledgeBaseUnavailable = errors.New("knowledge base unavailable")
)

// GenerationError wraps a failed LLM or embedding call.
// It matches ErrGeneration with errors.Is.
type GenerationError struct {
	// Op names the call that failed (e.g. "chat", "embed").
	Op string

	// Err is the underlying transport or provider error.
	Err error
}

// NewGenerationError wraps err as a GenerationError for op.
func NewGenerationError(op string, err error) *GenerationError {
	return &GenerationError{Op: op, Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrGeneration, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", ErrGeneration, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// StorageWriteError wraps a failed blob or item write.
// It matches ErrStorageWrite with errors.Is.
type StorageWriteError struct {
	// Key is the destination that could not be written.
	Key string

	// Err is the underlying storage error.
	Err error
}

// NewStorageWriteError wraps err as a StorageWriteError for key.
func NewStorageWriteError(key string, err error) *StorageWriteError {
	return &StorageWriteError{Key: key, Err: err}
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageWrite, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageWriteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorageWrite.
func (e *StorageWriteError) Is(target error) bool { return target == ErrStorageWrite }

// IsIndexUnavailable reports whether err means a named index cannot be used
// and should be rebuilt from source text when possible.
func IsIndexUnavailable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruptIndex)
}
