package display

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFromLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice Smith <alice@example.com>", "Alice Smith"},
		{"alice@example.com", "alice@example.com"},
		{"Alice <a@x.com>, Bob <b@x.com>", "Alice"},
		{"not an address", "not an address"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FromLabel(tt.in); got != tt.want {
			t.Errorf("FromLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"today shows time", "Sat, 15 Jun 2024 09:30:00 +0000", "09:30 AM"},
		{"same year shows month and day", "Mon, 03 Jun 2024 10:00:00 +0000", "Jun 03"},
		{"other year shows full date", "Sun, 31 Dec 2023 10:00:00 +0000", "12/31/2023"},
		{"unparseable renders empty", "not a date", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeDate(tt.in, now); got != tt.want {
				t.Errorf("RelativeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 32); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	long := "a very long subject line that keeps going and going"
	got := truncate(long, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncate length = %d, want 10", len([]rune(got)))
	}
}

func TestTruncateMultibyte(t *testing.T) {
	// Cutting mid-rune would emit invalid UTF-8 before the ellipsis.
	name := "Jürgen Müßig und die längste Betreffzeile überhaupt"
	got := truncate(name, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if n := len([]rune(got)); n != 10 {
		t.Errorf("truncate length = %d runes, want 10", n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncate = %q, want ellipsis suffix", got)
	}
}
