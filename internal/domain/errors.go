package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key sommelier writes to Valkey/Redis.
const KeyPrefix = "sommelier:"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals an empty or oversized question.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRetrieval signals a failure of the passage retrieval backend.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrSynthesis signals an answer synthesizer failure.
	ErrSynthesis = errors.New("synthesis failed")
	// ErrSynthesisQuotaExceeded signals an exhausted synthesis token budget.
	ErrSynthesisQuotaExceeded = errors.New("synthesis quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrKeywordSearchNotSupported signals that the backend lacks keyword search.
	ErrKeywordSearchNotSupported = errors.New("keyword search not supported by backend")
)

// HandlerError wraps a failure raised by a domain handler together with the handler's domain.
type HandlerError struct {
	Domain string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s: %v", e.Domain, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
