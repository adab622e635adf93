// Package email implements the raw message source over IMAP.
package email

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/mailscope/internal/source"
)

// Client fetches raw messages from an IMAP server for one account.
type Client struct {
	account  string
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewClient creates a new IMAP client configuration.
func NewClient(
	account, host, port, username, password string, tls bool,
) *Client {
	return &Client{
		account:  account,
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout on the returned client.
func (c *Client) Connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.AuthError{
			Account: c.account,
			Message: fmt.Sprintf(
				"authentication failed for %s: %v",
				c.username, err,
			),
		}
	}

	return client, nil
}

// Fetch connects to IMAP, selects the requested folder, and returns
// the full raw bytes of the newest messages in the requested window.
// The bytes are returned untouched; parsing happens downstream.
func (c *Client) Fetch(
	ctx context.Context, opts source.FetchOptions,
) ([][]byte, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	folder := opts.Folder
	if folder == "" {
		folder = "INBOX"
	}

	if _, err := client.Select(folder, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", folder, err)
	}

	searchData, err := client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := windowUIDs(searchData.AllUIDs(), opts.Limit, opts.Page)
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}

	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)

	var raws [][]byte
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		if raw := buf.FindBodySection(bodySection); raw != nil {
			raws = append(raws, raw)
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return raws, fmt.Errorf("fetching messages: %w", err)
	}

	return raws, nil
}

// windowUIDs selects the page-th window of limit UIDs counting back
// from the newest message. IMAP search results are oldest first.
func windowUIDs(uids []imap.UID, limit, page int) []imap.UID {
	if limit <= 0 {
		limit = 10
	}
	if page < 0 {
		page = 0
	}

	end := len(uids) - page*limit
	if end <= 0 {
		return nil
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	return uids[start:end]
}
