package sommelier

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/sommelier/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrNotFound               = domain.ErrNotFound
	ErrRateLimited            = domain.ErrRateLimited
	ErrSynthesisQuotaExceeded = domain.ErrSynthesisQuotaExceeded
	ErrRetrieval              = domain.ErrRetrieval
	ErrUnauthorized           = errors.New("unauthorized")
)

var codeSentinels = map[string]error{
	"validation_failed":        ErrInvalidQuery,
	"bad_request":              ErrInvalidQuery,
	"unauthorized":             ErrUnauthorized,
	"not_found":                ErrNotFound,
	"rate_limited":             ErrRateLimited,
	"synthesis_quota_exceeded": ErrSynthesisQuotaExceeded,
	"retrieval_failed":         ErrRetrieval,
}

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("sommelier: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sommelier: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap maps the error code to one of the package sentinels.
func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
