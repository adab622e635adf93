// Package parser turns raw transport-format message bytes into a
// header map plus decoded text and HTML body candidates.
package parser

import (
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"

	"github.com/nhle/mailscope/internal/model"
)

// ErrMalformed is returned when the transport bytes cannot be
// tokenized into headers and body at all. Such a message is dropped by
// the caller, never partially ingested.
var ErrMalformed = errors.New("malformed message")

// ParsedMessage is the result of parsing one raw message. It carries
// decoded headers and at most one body candidate per kind.
type ParsedMessage struct {
	// Headers maps canonical header names to values. When a header
	// repeats, the occurrence appearing last in the message wins; the
	// collapse to a single value is deliberate, not accidental.
	Headers map[string]string

	// TextBody and HTMLBody are the decoded body candidates. Nil means
	// no part of that kind was found. Binary parts never produce a
	// candidate.
	TextBody *string
	HTMLBody *string
}

// Header returns the value of the named header, or the empty string.
// The lookup is case-insensitive.
func (p *ParsedMessage) Header(name string) string {
	return p.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// Lookup returns the value of the named header and whether the header
// was present at all, distinguishing a missing header from an empty
// one.
func (p *ParsedMessage) Lookup(name string) (string, bool) {
	v, ok := p.Headers[textproto.CanonicalMIMEHeaderKey(name)]
	return v, ok
}

// Identity returns the message's Message-ID header value, or the
// deterministic sentinel when the header is absent.
func (p *ParsedMessage) Identity() string {
	if id := p.Header("Message-ID"); id != "" {
		return id
	}
	return model.MissingIdentity
}

// ParentID returns the raw parent reference: In-Reply-To when present,
// else References. Nil when the message carries neither.
func (p *ParsedMessage) ParentID() *string {
	if v := p.Header("In-Reply-To"); v != "" {
		return &v
	}
	if v := p.Header("References"); v != "" {
		return &v
	}
	return nil
}

// Parse decodes raw transport bytes into a ParsedMessage. It is a pure
// function over its input: no I/O, no shared state.
func Parse(raw []byte) (*ParsedMessage, error) {
	entity, err := message.Read(strings.NewReader(string(raw)))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	parsed := &ParsedMessage{Headers: make(map[string]string)}

	// Fields() yields occurrences in message order; overwriting on each
	// assignment implements last-occurrence-wins for repeated headers.
	fields := entity.Header.Fields()
	for fields.Next() {
		key := textproto.CanonicalMIMEHeaderKey(fields.Key())
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		parsed.Headers[key] = value
	}

	if mr := entity.MultipartReader(); mr != nil {
		parsed.TextBody, parsed.HTMLBody = bodiesFromParts(mr)
	} else {
		parsed.TextBody, parsed.HTMLBody = bodyFromEntity(entity, parsed.Header("Content-Type"))
	}

	return parsed, nil
}

// bodiesFromParts walks the direct subparts once and picks the first
// text/plain part as the text body and the first text/html part as the
// HTML body. Transfer decoding (base64, quoted-printable, 7/8-bit) is
// handled by the entity reader.
func bodiesFromParts(mr message.MultipartReader) (textBody, htmlBody *string) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		contentType := strings.ToLower(part.Header.Get("Content-Type"))
		switch {
		case textBody == nil && strings.HasPrefix(contentType, "text/plain"):
			if body, err := io.ReadAll(part.Body); err == nil {
				s := string(body)
				textBody = &s
			}
		case htmlBody == nil && strings.HasPrefix(contentType, "text/html"):
			if body, err := io.ReadAll(part.Body); err == nil {
				s := string(body)
				htmlBody = &s
			}
		}
	}
	return textBody, htmlBody
}

// bodyFromEntity handles non-multipart messages: the single top-level
// body is applied to whichever kind the top-level Content-Type header
// declares. Anything other than text yields no candidate.
func bodyFromEntity(entity *message.Entity, contentType string) (textBody, htmlBody *string) {
	body, err := io.ReadAll(entity.Body)
	if err != nil {
		return nil, nil
	}
	s := string(body)

	contentType = strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(contentType, "text/html"):
		htmlBody = &s
	case strings.HasPrefix(contentType, "text/plain") || contentType == "":
		textBody = &s
	}
	return textBody, htmlBody
}
