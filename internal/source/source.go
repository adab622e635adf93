// Package source defines the contract between the sync pipeline and
// the transports that deliver raw account mail.
package source

import (
	"context"
	"errors"
	"fmt"
)

// AuthError indicates that authentication has failed for an account.
type AuthError struct {
	Account string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Account, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// FetchOptions controls which slice of a mailbox a fetch returns.
type FetchOptions struct {
	// Folder is the mailbox to read, e.g. "INBOX".
	Folder string

	// Limit caps the number of messages fetched; Page selects
	// successive windows of that size, newest first, starting at 0.
	Limit int
	Page  int
}

// Source yields raw transport-format message blobs for one account.
// The pipeline treats the blobs as opaque until they reach the parser.
type Source interface {
	// Fetch returns up to Limit raw messages from the given folder.
	Fetch(ctx context.Context, opts FetchOptions) ([][]byte, error)
}
