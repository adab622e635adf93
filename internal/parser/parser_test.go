package parser

import (
	"strings"
	"testing"

	"github.com/nhle/mailscope/internal/model"
)

func lines(ls ...string) []byte {
	return []byte(strings.Join(ls, "\r\n"))
}

func TestParseMultipart(t *testing.T) {
	raw := lines(
		"Message-ID: <m1@example.com>",
		"From: Alice <alice@example.com>",
		"Subject: Launch plan",
		"MIME-Version: 1.0",
		"Content-Type: multipart/alternative; boundary=\"b1\"",
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"Hello=20world",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"Content-Transfer-Encoding: base64",
		"",
		"PHA+SGVsbG8gd29ybGQ8L3A+",
		"--b1--",
		"",
	)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := parsed.Header("Message-ID"); got != "<m1@example.com>" {
		t.Errorf("Message-ID = %q", got)
	}
	if got := parsed.Identity(); got != "<m1@example.com>" {
		t.Errorf("Identity() = %q", got)
	}
	if parsed.TextBody == nil || *parsed.TextBody != "Hello world" {
		t.Errorf("TextBody = %v, want decoded quoted-printable", parsed.TextBody)
	}
	if parsed.HTMLBody == nil || *parsed.HTMLBody != "<p>Hello world</p>" {
		t.Errorf("HTMLBody = %v, want decoded base64", parsed.HTMLBody)
	}
}

func TestParseSinglePartHTML(t *testing.T) {
	raw := lines(
		"Message-ID: <m2@example.com>",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>only html</p>",
	)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.TextBody != nil {
		t.Errorf("TextBody = %q, want none", *parsed.TextBody)
	}
	if parsed.HTMLBody == nil || !strings.Contains(*parsed.HTMLBody, "only html") {
		t.Errorf("HTMLBody = %v", parsed.HTMLBody)
	}
}

func TestParseSinglePartDefaultsToText(t *testing.T) {
	raw := lines(
		"Message-ID: <m3@example.com>",
		"",
		"plain body",
	)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.TextBody == nil || !strings.Contains(*parsed.TextBody, "plain body") {
		t.Errorf("TextBody = %v", parsed.TextBody)
	}
	if parsed.HTMLBody != nil {
		t.Errorf("HTMLBody = %q, want none", *parsed.HTMLBody)
	}
}

func TestParseBinaryPartYieldsNoBody(t *testing.T) {
	raw := lines(
		"Message-ID: <m4@example.com>",
		"Content-Type: multipart/mixed; boundary=\"b2\"",
		"",
		"--b2",
		"Content-Type: application/octet-stream",
		"Content-Transfer-Encoding: base64",
		"",
		"AAEC",
		"--b2--",
		"",
	)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.TextBody != nil || parsed.HTMLBody != nil {
		t.Errorf("binary part produced a body candidate: text=%v html=%v",
			parsed.TextBody, parsed.HTMLBody)
	}
}

func TestParseRepeatedHeaderLastWins(t *testing.T) {
	raw := lines(
		"X-Tag: first",
		"X-Tag: second",
		"X-Tag: third",
		"",
		"body",
	)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Header("X-Tag"); got != "third" {
		t.Errorf("repeated header collapsed to %q, want last occurrence", got)
	}
}

func TestParseMissingIdentitySentinel(t *testing.T) {
	raw := lines(
		"Subject: no id here",
		"",
		"body",
	)

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Identity(); got != model.MissingIdentity {
		t.Errorf("Identity() = %q, want sentinel", got)
	}
}

func TestParentIDPrecedence(t *testing.T) {
	withBoth, err := Parse(lines(
		"In-Reply-To: <a@x>",
		"References: <b@x>",
		"",
		"body",
	))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if withBoth.ParentID() == nil || *withBoth.ParentID() != "<a@x>" {
		t.Errorf("ParentID = %v, want In-Reply-To to win", withBoth.ParentID())
	}

	refsOnly, err := Parse(lines(
		"References: <b@x>",
		"",
		"body",
	))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if refsOnly.ParentID() == nil || *refsOnly.ParentID() != "<b@x>" {
		t.Errorf("ParentID = %v, want References fallback", refsOnly.ParentID())
	}

	neither, err := Parse(lines("Subject: s", "", "body"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if neither.ParentID() != nil {
		t.Errorf("ParentID = %q, want nil", *neither.ParentID())
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("this is not a message header\r\nat all")); err == nil {
		t.Fatal("expected error for untokenizable input")
	}
}
