package crawl

import (
	"context"
	"strings"

	"github.com/pageparse/crawler/internal/backend"
)

// Routine is a pluggable extraction unit. Run reads from the current page
// through the handle and writes its field(s) into the record. It returns nil
// on success, a Failure for a semantic miss (after writing a null
// placeholder, so the record stays complete), or the backend error it hit.
// Routines run against the same record must write disjoint keys; the
// orchestrator does not enforce that.
type Routine struct {
	// Description is a human-readable one-liner used only for log lines.
	Description string
	Run         func(ctx context.Context, h backend.Handle, data Record) error
}

// FailureError is a routine-declared failure: the routine ran cleanly but
// could not extract its field.
type FailureError struct {
	Reason string
}

func (e *FailureError) Error() string {
	return e.Reason
}

// Failure builds a routine-declared failure from a human-readable reason.
func Failure(reason string) error {
	return &FailureError{Reason: reason}
}

// Routines deduplicates a routine list by description, keeping the first
// registration of each and preserving registration order.
func Routines(list ...Routine) []Routine {
	seen := make(map[string]struct{}, len(list))
	out := make([]Routine, 0, len(list))
	for _, r := range list {
		key := firstLine(r.Description)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// firstLine trims a description to its first line for log output.
func firstLine(s string) string {
	if line, _, found := strings.Cut(s, "\n"); found {
		return line
	}
	return s
}
