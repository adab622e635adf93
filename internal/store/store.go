package store

import (
	"context"
	"errors"

	"github.com/nhle/mailscope/internal/model"
)

// ErrConflict is returned by InsertMessage when a message with the
// same identity is already stored. Duplicate ingestion is a no-op
// failure, never an overwrite.
var ErrConflict = errors.New("message identity already stored")

// ErrNotFound is returned by point lookups when no record matches.
var ErrNotFound = errors.New("message not found")

// ErrUnavailable is returned when the storage engine cannot be
// reached. It aborts the current sync pass; per-message errors do not.
var ErrUnavailable = errors.New("message store unavailable")

// Filter controls the threaded listing query.
type Filter struct {
	// Query is an optional free-text filter matched as a substring
	// against content, subject, to, cc, and from. Matching is
	// case-insensitive for ASCII (SQLite LIKE semantics); that choice
	// is fixed, not incidental.
	Query *string
}

// DefaultPageSize caps the number of distinct conversations a single
// threaded listing returns.
const DefaultPageSize = 100

// Store is the persistence interface for raw and normalized messages.
type Store interface {
	// InsertMessage persists the raw capture and the normalized record
	// as one atomic unit: both rows become visible together or not at
	// all.
	InsertMessage(ctx context.Context, raw model.RawMessage, msg model.Message) error

	// FindByIdentity returns the stored message with the given
	// identity, or ErrNotFound.
	FindByIdentity(ctx context.Context, identity string) (*model.Message, error)

	// ListThreaded returns the messages of the most recently active
	// conversations matching the filter, flat and ordered by send date
	// descending. At most limit distinct conversations are included;
	// a single busy thread never crowds out other conversations.
	ListThreaded(ctx context.Context, filter Filter, limit int) ([]model.Message, error)

	// GetBody returns the text and HTML bodies for a message identity.
	GetBody(ctx context.Context, identity string) (textBody, htmlBody string, err error)

	// GetRaw returns the stored wire bytes for a message identity.
	GetRaw(ctx context.Context, identity string) ([]byte, error)

	// CountMessages reports the number of normalized records.
	CountMessages(ctx context.Context) (int, error)

	Close() error
}
