// Package query holds the immutable representation of a single user question.
package query

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/sommelier/internal/domain"
)

// MaxLength is the maximum accepted question length in bytes.
const MaxLength = 2048

// Query is a validated user question. Zero value is not usable; construct with New.
type Query struct {
	raw        string
	normalized string
	requestID  string
	sessionID  string
}

// New validates raw text and builds a Query. An empty requestID is replaced by a fresh UUID.
func New(raw, sessionID, requestID string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if len(trimmed) > MaxLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d bytes)", domain.ErrInvalidQuery, MaxLength)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return Query{
		raw:        trimmed,
		normalized: Normalize(trimmed),
		requestID:  requestID,
		sessionID:  strings.TrimSpace(sessionID),
	}, nil
}

// Normalize lower-cases, trims and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Raw returns the trimmed question as typed by the user.
func (q Query) Raw() string { return q.raw }

// Normalized returns the trimmed, lower-cased, whitespace-collapsed form.
func (q Query) Normalized() string { return q.normalized }

// RequestID returns the opaque tracing identifier.
func (q Query) RequestID() string { return q.requestID }

// SessionID returns the conversation the question belongs to ("" for anonymous).
func (q Query) SessionID() string { return q.sessionID }
