package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusNotReady signals retrieval attempted before any successful corpus load.
	ErrCorpusNotReady = errors.New("corpus not ready")
	// ErrCorpusLoad signals a failed corpus load attempt.
	ErrCorpusLoad = errors.New("corpus load failed")
	// ErrDimensionMismatch signals disagreeing corpus and query vector dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrBudgetExceeded signals an exhausted daily embedding token budget.
	ErrBudgetExceeded = errors.New("embedding token budget exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyQuery signals a blank retrieval query.
	ErrEmptyQuery = errors.New("query text is required")
	// ErrRateLimited signals a rate limit hit on the embedding provider.
	ErrRateLimited = errors.New("rate limited")
)

// CorpusLoadError carries the corpus directory and the underlying cause.
// A failed load never installs a partial corpus.
type CorpusLoadError struct {
	Dir string
	Err error
}

func (e *CorpusLoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCorpusLoad.Error(), e.Dir, e.Err)
}

func (e *CorpusLoadError) Unwrap() error { return e.Err }

// Is matches ErrCorpusLoad regardless of the wrapped cause.
func (e *CorpusLoadError) Is(target error) bool { return target == ErrCorpusLoad }

// NewCorpusLoadError creates a corpus load error for the given directory.
func NewCorpusLoadError(dir string, err error) error {
	return &CorpusLoadError{Dir: dir, Err: err}
}

// DimensionMismatchError wraps ErrDimensionMismatch with both dimensions.
type DimensionMismatchError struct {
	Want int // corpus dimension
	Got  int // query vector dimension
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: corpus has %d, query has %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionMismatchError{Want: want, Got: got}
}
