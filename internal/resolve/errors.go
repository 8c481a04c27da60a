package resolve

import (
	"fmt"
	"strings"
)

// Kind classifies a resolution failure.
type Kind int

const (
	// KindAccessDenied: the board is not in the configured allow-list. Fatal, not retried.
	KindAccessDenied Kind = iota
	// KindUpstream: the upstream API returned a non-success response. Caller owns retry.
	KindUpstream
	// KindNotFound: the listing returned no candidates at all.
	KindNotFound
	// KindAmbiguous: the top two fuzzy scores are too close to trust.
	KindAmbiguous
	// KindNoMatch: the best fuzzy score is below the acceptance threshold.
	KindNoMatch
)

// Error is a resolution failure carrying enough context for a calling
// agent to self-correct: the requested name, the failure kind, and a
// bounded list of nearby candidate names.
type Error struct {
	Kind       Kind
	Resource   string // "board", "list", or "card"
	Name       string
	Candidates []string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAccessDenied:
		return fmt.Sprintf("access to board %q is not allowed%s", e.Name, e.hint("allowed boards"))
	case KindUpstream:
		return fmt.Sprintf("upstream error while resolving %s %q: %v", e.Resource, e.Name, e.Err)
	case KindNotFound:
		return fmt.Sprintf("no %ss found in this scope while resolving %q", e.Resource, e.Name)
	case KindAmbiguous:
		return fmt.Sprintf("%s name %q is ambiguous, be more specific%s", e.Resource, e.Name, e.hint("close candidates"))
	case KindNoMatch:
		return fmt.Sprintf("no %s found matching %q%s", e.Resource, e.Name, e.hint("nearest names"))
	}
	return fmt.Sprintf("failed to resolve %s %q", e.Resource, e.Name)
}

func (e *Error) hint(label string) string {
	if len(e.Candidates) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s: %s)", label, strings.Join(e.Candidates, ", "))
}

func (e *Error) Unwrap() error { return e.Err }
