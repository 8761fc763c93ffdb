// Package conversation tracks multi-turn clarification state.
//
// When a response asks the user to choose between several entities, the question
// becomes pending. The next question of the same session is then matched against
// the offered candidates; a match resolves the pending question and yields a
// follow-up classification pinned to the chosen entity.
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/sommelier/internal/domain/bundle"
	"github.com/kailas-cloud/sommelier/internal/domain/catalog"
	"github.com/kailas-cloud/sommelier/internal/domain/fold"
	"github.com/kailas-cloud/sommelier/internal/domain/intent"
	"github.com/kailas-cloud/sommelier/internal/domain/passage"
	"github.com/kailas-cloud/sommelier/internal/domain/query"
	"github.com/kailas-cloud/sommelier/internal/metrics"
)

// DefaultMarkers are phrases that identify a clarification request in a response.
var DefaultMarkers = []string{
	"which one",
	"which of these",
	"could you clarify",
	"did you mean",
	"we have several",
	"which vintage",
	"please specify",
	"would you like to know about",
}

// Defaults.
const (
	DefaultMaxSessions = 10000
	DefaultSessionTTL  = 30 * time.Minute
)

// CatalogProvider returns the catalog used to resolve follow-up aliases.
type CatalogProvider interface {
	Catalog() *catalog.Catalog
}

// Options configures a Tracker.
type Options struct {
	MaxSessions int
	SessionTTL  time.Duration
	Markers     []string
}

// Tracker holds clarification state per session. Anonymous questions (empty session
// id) are not tracked. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *session]
	catalogs CatalogProvider
	markers  []string
	now      func() time.Time
}

// NewTracker creates a tracker.
func NewTracker(catalogs CatalogProvider, opts Options) (*Tracker, error) {
	if catalogs == nil {
		return nil, errors.New("conversation: catalog provider is required")
	}
	if opts.MaxSessions < 0 || opts.SessionTTL < 0 {
		return nil, fmt.Errorf("conversation: invalid limits %d sessions, ttl %s", opts.MaxSessions, opts.SessionTTL)
	}
	if opts.MaxSessions == 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	markers := opts.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	lower := make([]string, 0, len(markers))
	for _, m := range markers {
		lower = append(lower, strings.ToLower(m))
	}
	return &Tracker{
		sessions: expirable.NewLRU[string, *session](opts.MaxSessions, nil, opts.SessionTTL),
		catalogs: catalogs,
		markers:  lower,
		now:      time.Now,
	}, nil
}

// IsClarification reports whether a response asks the user to disambiguate.
func (t *Tracker) IsClarification(response string) bool {
	lower := strings.ToLower(response)
	for _, m := range t.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// PreviousTurn returns the last recorded turn of a session.
func (t *Tracker) PreviousTurn(sessionID string) (Turn, bool) {
	if sessionID == "" {
		return Turn{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions.Peek(sessionID)
	if !ok || s.previous == nil {
		return Turn{}, false
	}
	return *s.previous, true
}

// State returns the clarification state of a normalized question in a session.
func (t *Tracker) State(sessionID, normalized string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions.Peek(sessionID)
	if !ok {
		return State{}
	}
	return s.states[normalized]
}

// RecordResponse records an answered question. A clarification response marks the
// question pending and captures the offered candidates from the bundle; any other
// response abandons a pending clarification. It reports whether the response was a
// clarification.
func (t *Tracker) RecordResponse(q query.Query, response string, b bundle.Bundle) bool {
	clarification := t.IsClarification(response)
	if q.SessionID() == "" {
		return clarification
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session(q.SessionID())
	s.previous = &Turn{Query: q.Normalized(), Response: response}

	if !clarification {
		if s.pending != "" {
			metrics.ClarificationsTotal.WithLabelValues("abandoned").Inc()
			s.pending = ""
		}
		return false
	}
	s.states[q.Normalized()] = State{
		Phase:      PendingClarification,
		Family:     b.Classification.Family(),
		Candidates: candidatesFrom(b),
		UpdatedAt:  t.now(),
	}
	s.pending = q.Normalized()
	metrics.ClarificationsTotal.WithLabelValues("requested").Inc()
	return true
}

// ResolveFollowUp checks a question against the clarification pending from the
// immediately preceding turn. Resolution tries catalog follow-up aliases, then
// candidate name words, then a vintage, then an ordinal ("the second one"). On a
// match the pending question becomes Resolved and a follow-up classification for
// the chosen entity is returned.
func (t *Tracker) ResolveFollowUp(q query.Query) (intent.Classification, bool) {
	if q.SessionID() == "" {
		return intent.Classification{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions.Get(q.SessionID())
	if !ok || s.pending == "" || s.previous == nil || s.previous.Query != s.pending {
		return intent.Classification{}, false
	}
	st := s.states[s.pending]
	if st.Phase != PendingClarification {
		return intent.Classification{}, false
	}

	cat := t.catalogs.Catalog()
	folded := fold.String(q.Raw())
	variant := passage.ParseVariant(folded)

	var ref *intent.EntityRef
	if e, ok := cat.MatchFollowUp(folded, st.Family); ok {
		ref = e.Ref()
	} else if c, ok := resolveCandidate(cat, st, folded, variant); ok {
		ref = refFor(cat, c, st.Family)
	}
	if ref == nil {
		return intent.Classification{}, false
	}
	if variant == "" {
		for _, c := range st.Candidates {
			if c.Pattern == ref.Pattern {
				variant = c.Variant
				break
			}
		}
	}

	st.Phase = Resolved
	st.ResolvedWith = ref.Pattern
	st.UpdatedAt = t.now()
	s.states[s.pending] = st
	s.pending = ""
	metrics.ClarificationsTotal.WithLabelValues("resolved").Inc()

	return intent.New(intent.ProductIntent{
		Kind:    intent.SubtypeSpecific,
		Entity:  ref,
		Terms:   ref.Terms,
		Variant: variant,
	}).AsFollowUp(), true
}

// Forget drops a session.
func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions.Remove(sessionID)
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions.Len()
}

func (t *Tracker) session(id string) *session {
	s, ok := t.sessions.Get(id)
	if !ok {
		s = &session{states: make(map[string]State)}
	}
	// Add also refreshes the expiry.
	t.sessions.Add(id, s)
	return s
}
