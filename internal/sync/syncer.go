// Package sync drives the ingestion pipeline: fetch raw mail, parse,
// resolve the thread key, persist.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"

	"github.com/google/uuid"

	"github.com/nhle/mailscope/internal/model"
	"github.com/nhle/mailscope/internal/parser"
	"github.com/nhle/mailscope/internal/source"
	"github.com/nhle/mailscope/internal/store"
	"github.com/nhle/mailscope/internal/thread"
)

// OpenSourceFunc opens the message source for one configured account.
type OpenSourceFunc func(account model.AccountConfig) (source.Source, error)

// Result summarizes one account's sync pass.
type Result struct {
	Account  string
	Fetched  int
	Ingested int
	Skipped  int
}

// Syncer orchestrates ingestion for configured accounts. Accounts
// share no mutable state beyond the message store itself.
type Syncer struct {
	store store.Store
	open  OpenSourceFunc
}

// New creates a Syncer that persists into s and opens account sources
// with open.
func New(s store.Store, open OpenSourceFunc) *Syncer {
	return &Syncer{store: s, open: open}
}

// SyncAll runs one sync pass over each account in turn. A failing
// account aborts the pass; per-message failures within an account do
// not.
func (s *Syncer) SyncAll(
	ctx context.Context,
	accounts []model.AccountConfig,
	opts source.FetchOptions,
) ([]Result, error) {
	var results []Result
	for _, account := range accounts {
		result, err := s.SyncAccount(ctx, account, opts)
		results = append(results, result)
		if err != nil {
			return results, fmt.Errorf("syncing account %s: %w", account.Name, err)
		}
	}
	return results, nil
}

// SyncAccount fetches a batch of raw messages for one account and
// ingests them one at a time: parse, resolve the thread key against
// prior writes, persist raw and normalized records together. A
// message that fails to parse, or that is already stored, is logged
// and skipped; the rest of the batch continues. Only a store that has
// become unreachable aborts the run.
func (s *Syncer) SyncAccount(
	ctx context.Context,
	account model.AccountConfig,
	opts source.FetchOptions,
) (Result, error) {
	run := uuid.New().String()[:8]
	result := Result{Account: account.Name}

	src, err := s.open(account)
	if err != nil {
		return result, fmt.Errorf("opening source for %s: %w", account.Name, err)
	}

	raws, err := src.Fetch(ctx, opts)
	if err != nil {
		return result, fmt.Errorf("fetching for %s: %w", account.Name, err)
	}
	result.Fetched = len(raws)
	log.Printf("sync %s: fetched %d messages for %s", run, len(raws), account.Name)

	folder := opts.Folder
	if folder == "" {
		folder = "INBOX"
	}

	for _, raw := range raws {
		parsed, err := parser.Parse(raw)
		if err != nil {
			result.Skipped++
			log.Printf("sync %s: skipping unparseable message: %v", run, err)
			continue
		}

		record := buildRecord(parsed, account.Name, folder)
		if key := thread.Resolve(ctx, parsed.Headers, s.lookupThreadKey); key != "" {
			record.ThreadKey = &key
		}

		rawRecord := model.RawMessage{
			MessageID: record.MessageID,
			Message:   raw,
		}

		if err := s.store.InsertMessage(ctx, rawRecord, record); err != nil {
			if errors.Is(err, store.ErrConflict) {
				result.Skipped++
				log.Printf("sync %s: skipping duplicate %s", run, record.MessageID)
				continue
			}
			return result, fmt.Errorf("persisting %s: %w", record.MessageID, err)
		}
		result.Ingested++
	}

	log.Printf("sync %s: %s done, ingested %d, skipped %d",
		run, account.Name, result.Ingested, result.Skipped)
	return result, nil
}

// lookupThreadKey adapts the store's point lookup for the resolver:
// it reports the persisted thread key of a parent identity, if any.
// The per-message round trip is deliberate; parent-based linking needs
// the most recently persisted state.
func (s *Syncer) lookupThreadKey(ctx context.Context, identity string) (string, bool) {
	msg, err := s.store.FindByIdentity(ctx, identity)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("thread key lookup for %s: %v", identity, err)
		}
		return "", false
	}
	if msg.ThreadKey == nil {
		log.Printf("parent %s has no thread key", identity)
		return "", false
	}
	return *msg.ThreadKey, true
}

// buildRecord maps a parsed message onto the normalized record shape.
func buildRecord(parsed *parser.ParsedMessage, account, folder string) model.Message {
	record := model.Message{
		MessageID: parsed.Identity(),
		Account:   account,
		ParentID:  parsed.ParentID(),
		Subject:   headerPtr(parsed, "Subject"),
		SentAt:    headerPtr(parsed, "Date"),
		From:      headerPtr(parsed, "From"),
		To:        headerPtr(parsed, "To"),
		Cc:        headerPtr(parsed, "Cc"),
		Bcc:       headerPtr(parsed, "Bcc"),
		Folder:    &folder,
		TextBody:  parsed.TextBody,
		HTMLBody:  parsed.HTMLBody,
	}

	// content is the first body present, text preferred; it is what
	// free-text search matches against.
	if parsed.TextBody != nil {
		record.Content = parsed.TextBody
	} else if parsed.HTMLBody != nil {
		record.Content = parsed.HTMLBody
	}

	if record.SentAt != nil {
		record.SentDate = dateEpoch(*record.SentAt)
	}

	return record
}

// headerPtr returns a pointer to the named header value, or nil when
// the header is absent.
func headerPtr(parsed *parser.ParsedMessage, name string) *string {
	if v, ok := parsed.Lookup(name); ok {
		return &v
	}
	return nil
}

// dateEpoch parses an RFC 5322 date header into epoch seconds. Nil
// means unparseable; such messages sort last in listings.
func dateEpoch(s string) *int64 {
	t, err := mail.ParseDate(s)
	if err != nil {
		return nil
	}
	epoch := t.Unix()
	return &epoch
}
