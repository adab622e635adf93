// Package thread computes conversation-grouping keys and assembles
// flat message lists into threaded, date-bucketed views.
package thread

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
)

// LookupFunc resolves a message identity to its persisted thread key.
// The second result is false when no such message is stored or the
// stored message has no key.
type LookupFunc func(ctx context.Context, identity string) (string, bool)

// Resolve computes the thread key for a message given its parsed
// headers. The parent chain is authoritative when available: a reply
// whose parent is already persisted joins the parent's conversation
// even if the subject changed mid-thread. Otherwise the key is derived
// deterministically from the subject, so clients that omit threading
// headers still collapse "Launch plan" and "Re: Launch plan" into one
// conversation. A message with neither parent nor subject gets no key
// and stands alone.
//
// The result is the empty string when no key could be derived.
func Resolve(ctx context.Context, headers map[string]string, lookup LookupFunc) string {
	parent := headers["In-Reply-To"]
	if parent == "" {
		parent = headers["References"]
	}
	if parent != "" && lookup != nil {
		if key, ok := lookup(ctx, parent); ok {
			return key
		}
	}

	subject, ok := headers["Subject"]
	if !ok {
		return ""
	}
	return SubjectKey(subject)
}

// SubjectKey derives a thread key from a subject line alone:
// lower-case, drop "re:" tokens, trim, then SHA-256 rendered as
// uppercase hex. Two messages with equivalent subjects collide into
// the same key even without header linkage.
func SubjectKey(subject string) string {
	normalized := NormalizeSubject(subject)
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%X", sum)
}

// NormalizeSubject lower-cases a subject and strips reply prefixes.
func NormalizeSubject(subject string) string {
	s := strings.ToLower(subject)
	s = strings.ReplaceAll(s, "re:", "")
	return strings.TrimSpace(s)
}
