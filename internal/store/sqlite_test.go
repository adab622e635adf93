package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nhle/mailscope/internal/model"
	"github.com/nhle/mailscope/internal/store"
	"github.com/nhle/mailscope/tests/testutil"
)

func ptr[T any](v T) *T { return &v }

func testMessage(id, threadKey string, sentDate int64) (model.RawMessage, model.Message) {
	raw := model.RawMessage{
		MessageID: id,
		Message:   []byte("Message-ID: " + id + "\r\n\r\nbody"),
	}
	msg := model.Message{
		MessageID: id,
		Account:   "work",
		Subject:   ptr("subject of " + id),
		SentDate:  ptr(sentDate),
		From:      ptr("alice@example.com"),
		To:        ptr("bob@example.com"),
		TextBody:  ptr("text of " + id),
		HTMLBody:  ptr("<p>html of " + id + "</p>"),
		Content:   ptr("text of " + id),
	}
	if threadKey != "" {
		msg.ThreadKey = &threadKey
	}
	return raw, msg
}

func mustInsert(t *testing.T, s store.Store, id, threadKey string, sentDate int64) {
	t.Helper()
	raw, msg := testMessage(id, threadKey, sentDate)
	if err := s.InsertMessage(context.Background(), raw, msg); err != nil {
		t.Fatalf("inserting %s: %v", id, err)
	}
}

func TestInsertMessageDuplicateConflicts(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "<m1@x>", "K1", 1000)

	raw, msg := testMessage("<m1@x>", "K1", 2000)
	err := s.InsertMessage(ctx, raw, msg)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate insert error = %v, want ErrConflict", err)
	}

	count, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}
	if count != 1 {
		t.Errorf("message count after duplicate = %d, want 1", count)
	}
}

func TestInsertMessageAtomicity(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "<m1@x>", "K1", 1000)

	// The rejected duplicate must leave no raw row behind either.
	raw, msg := testMessage("<m1@x>", "K1", 2000)
	raw.Message = []byte("other bytes")
	if err := s.InsertMessage(ctx, raw, msg); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate insert error = %v, want ErrConflict", err)
	}

	stored, err := s.GetRaw(ctx, "<m1@x>")
	if err != nil {
		t.Fatalf("GetRaw: %v", err)
	}
	if string(stored) == "other bytes" {
		t.Error("duplicate insert overwrote the raw capture")
	}
}

func TestFindByIdentity(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if _, err := s.FindByIdentity(ctx, "<missing@x>"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing lookup error = %v, want ErrNotFound", err)
	}

	mustInsert(t, s, "<m1@x>", "K1", 1000)

	found, err := s.FindByIdentity(ctx, "<m1@x>")
	if err != nil {
		t.Fatalf("FindByIdentity: %v", err)
	}
	if found.MessageID != "<m1@x>" {
		t.Errorf("MessageID = %q", found.MessageID)
	}
	if found.ThreadKey == nil || *found.ThreadKey != "K1" {
		t.Errorf("ThreadKey = %v, want K1", found.ThreadKey)
	}
	if found.TextBody != nil || found.HTMLBody != nil {
		t.Error("point lookup returned body columns; projection should exclude them")
	}
}

func TestGetBody(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "<m1@x>", "K1", 1000)

	text, html, err := s.GetBody(ctx, "<m1@x>")
	if err != nil {
		t.Fatalf("GetBody: %v", err)
	}
	if text != "text of <m1@x>" {
		t.Errorf("text body = %q", text)
	}
	if html != "<p>html of <m1@x></p>" {
		t.Errorf("html body = %q", html)
	}

	if _, _, err := s.GetBody(ctx, "<missing@x>"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing body error = %v, want ErrNotFound", err)
	}
}

func TestListThreadedOrderingAndKeyless(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "<a1@x>", "KA", 1000)
	mustInsert(t, s, "<a2@x>", "KA", 3000)
	mustInsert(t, s, "<b1@x>", "KB", 2000)
	mustInsert(t, s, "<loner@x>", "", 4000)

	messages, err := s.ListThreaded(ctx, store.Filter{}, 0)
	if err != nil {
		t.Fatalf("ListThreaded: %v", err)
	}

	// The keyless message never appears in the threaded listing.
	wantIDs := []string{"<a2@x>", "<b1@x>", "<a1@x>"}
	if len(messages) != len(wantIDs) {
		t.Fatalf("got %d messages, want %d", len(messages), len(wantIDs))
	}
	for i, want := range wantIDs {
		if messages[i].MessageID != want {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i].MessageID, want)
		}
	}
}

func TestListThreadedConversationCap(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// 150 conversations of 3 messages each; more recent conversations
	// get larger send dates.
	const threads, perThread = 150, 3
	for i := 0; i < threads; i++ {
		key := fmt.Sprintf("K%03d", i)
		for j := 0; j < perThread; j++ {
			id := fmt.Sprintf("<t%03d-m%d@x>", i, j)
			mustInsert(t, s, id, key, int64(i*10+j))
		}
	}

	messages, err := s.ListThreaded(ctx, store.Filter{}, store.DefaultPageSize)
	if err != nil {
		t.Fatalf("ListThreaded: %v", err)
	}

	keys := make(map[string]int)
	for _, m := range messages {
		keys[*m.ThreadKey]++
	}
	if len(keys) != store.DefaultPageSize {
		t.Fatalf("got %d distinct conversations, want %d", len(keys), store.DefaultPageSize)
	}
	if len(messages) != store.DefaultPageSize*perThread {
		t.Errorf("got %d messages, want %d", len(messages), store.DefaultPageSize*perThread)
	}

	// The cap keeps the most recently active conversations: the oldest
	// 50 must be gone, the newest retained complete.
	if _, ok := keys["K049"]; ok {
		t.Error("conversation K049 survived the cap; it should have been dropped")
	}
	if got := keys["K149"]; got != perThread {
		t.Errorf("newest conversation has %d messages, want %d", got, perThread)
	}
}

func TestListThreadedQueryFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	rawA, msgA := testMessage("<a1@x>", "KA", 1000)
	msgA.Subject = ptr("Quarterly budget review")
	if err := s.InsertMessage(ctx, rawA, msgA); err != nil {
		t.Fatalf("insert: %v", err)
	}
	mustInsert(t, s, "<b1@x>", "KB", 2000)

	// Substring match on subject, case-insensitive.
	messages, err := s.ListThreaded(ctx, store.Filter{Query: ptr("BUDGET")}, 0)
	if err != nil {
		t.Fatalf("ListThreaded: %v", err)
	}
	if len(messages) != 1 || messages[0].MessageID != "<a1@x>" {
		t.Fatalf("filtered result = %+v, want only <a1@x>", messages)
	}

	messages, err = s.ListThreaded(ctx, store.Filter{Query: ptr("no such token")}, 0)
	if err != nil {
		t.Fatalf("ListThreaded: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages for a non-matching query, want 0", len(messages))
	}
}

func TestGetRaw(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	mustInsert(t, s, "<m1@x>", "K1", 1000)

	raw, err := s.GetRaw(ctx, "<m1@x>")
	if err != nil {
		t.Fatalf("GetRaw: %v", err)
	}
	if want := "Message-ID: <m1@x>\r\n\r\nbody"; string(raw) != want {
		t.Errorf("raw = %q, want %q", raw, want)
	}

	if _, err := s.GetRaw(ctx, "<missing@x>"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing raw error = %v, want ErrNotFound", err)
	}
}
