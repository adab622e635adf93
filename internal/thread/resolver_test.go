package thread

import (
	"context"
	"testing"
)

func staticLookup(table map[string]string) LookupFunc {
	return func(_ context.Context, identity string) (string, bool) {
		key, ok := table[identity]
		return key, ok
	}
}

func TestResolveParentWins(t *testing.T) {
	lookup := staticLookup(map[string]string{"<root@x>": "KEY-ROOT"})

	headers := map[string]string{
		"In-Reply-To": "<root@x>",
		"Subject":     "Re: something else entirely",
	}
	if got := Resolve(context.Background(), headers, lookup); got != "KEY-ROOT" {
		t.Errorf("Resolve = %q, want parent's persisted key", got)
	}
}

func TestResolveReferencesFallback(t *testing.T) {
	lookup := staticLookup(map[string]string{"<root@x>": "KEY-ROOT"})

	headers := map[string]string{
		"References": "<root@x>",
		"Subject":    "whatever",
	}
	if got := Resolve(context.Background(), headers, lookup); got != "KEY-ROOT" {
		t.Errorf("Resolve = %q, want key via References", got)
	}
}

func TestResolveUnknownParentFallsBackToSubject(t *testing.T) {
	lookup := staticLookup(nil)

	headers := map[string]string{
		"In-Reply-To": "<missing@x>",
		"Subject":     "Launch plan",
	}
	if got := Resolve(context.Background(), headers, lookup); got != SubjectKey("Launch plan") {
		t.Errorf("Resolve = %q, want subject-derived key", got)
	}
}

func TestResolveSubjectEquivalence(t *testing.T) {
	a := Resolve(context.Background(), map[string]string{"Subject": "Launch plan"}, nil)
	b := Resolve(context.Background(), map[string]string{"Subject": "Re: Launch plan"}, nil)
	c := Resolve(context.Background(), map[string]string{"Subject": "RE: re: launch plan"}, nil)

	if a == "" {
		t.Fatal("subject-derived key is empty")
	}
	if a != b || b != c {
		t.Errorf("reply variants diverged: %q / %q / %q", a, b, c)
	}

	other := Resolve(context.Background(), map[string]string{"Subject": "Budget review"}, nil)
	if other == a {
		t.Error("distinct subjects produced the same key")
	}
}

func TestResolveNoParentNoSubject(t *testing.T) {
	if got := Resolve(context.Background(), map[string]string{}, nil); got != "" {
		t.Errorf("Resolve = %q, want no key", got)
	}
}

func TestResolveEmptySubjectStillKeyed(t *testing.T) {
	// A present-but-empty Subject is a real value and hashes like any
	// other; only a missing header yields no key.
	if got := Resolve(context.Background(), map[string]string{"Subject": ""}, nil); got != SubjectKey("") {
		t.Errorf("Resolve = %q, want hash of empty subject", got)
	}
}

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Launch plan", "launch plan"},
		{"Re: Launch plan", "launch plan"},
		{"RE: re: Launch plan", "launch plan"},
		{"  Spaced  ", "spaced"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSubject(tt.in); got != tt.want {
			t.Errorf("NormalizeSubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
