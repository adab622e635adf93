package model

// RawMessage is the immutable wire-format capture of a fetched message.
// It is written once at ingestion time and kept for replay and debugging.
type RawMessage struct {
	// ID is the internal row identifier, assigned by the store.
	ID int64 `json:"id"`

	// MessageID is the transport Message-ID header value, or the
	// MissingIdentity sentinel when the header was absent.
	MessageID string `json:"message_id"`

	// Message holds the untouched transport bytes.
	Message []byte `json:"message"`
}

// MissingIdentity is substituted when a message carries no Message-ID
// header. The sentinel is deterministic so that re-ingesting the same
// bytes stays idempotent; the cost is that two unrelated messages
// without an identity collide on it.
const MissingIdentity = "no id found!"

// Message is the normalized, queryable record for a single ingested
// email. Optional headers are pointers so the store can distinguish
// "absent" from "empty"; downstream threading and listing logic depends
// on that distinction.
type Message struct {
	// ID is the internal row identifier, assigned by the store.
	ID int64 `json:"id"`

	// MessageID is the message identity used for point lookups.
	// Unique per ingested message unless the MissingIdentity sentinel
	// was substituted.
	MessageID string `json:"message_id"`

	// Account names the configured account this message was fetched for.
	Account string `json:"account"`

	// ParentID is the raw In-Reply-To (or References) header value,
	// kept for debugging and thread repair. It is distinct from the
	// computed ThreadKey.
	ParentID *string `json:"parent_id"`

	// ThreadKey is the resolved conversation-grouping key. Nil when the
	// message has neither a resolvable parent nor a subject.
	ThreadKey *string `json:"thread_key"`

	Subject *string `json:"subject"`

	// SentAt is the original Date header text; SentDate is the parsed
	// epoch used for ordering. SentDate is nil when the header is
	// missing or unparseable, and such messages sort last.
	SentAt   *string `json:"sent_at"`
	SentDate *int64  `json:"sent_date"`

	// Raw address-list header text, not pre-split.
	From *string `json:"from"`
	To   *string `json:"to"`
	Cc   *string `json:"cc"`
	Bcc  *string `json:"bcc"`

	Folder *string `json:"folder"`

	// TextBody and HTMLBody are the decoded body candidates; Content is
	// whichever of them is present first (text preferred) and is the
	// column free-text search runs against.
	TextBody *string `json:"text_body"`
	HTMLBody *string `json:"html_body"`
	Content  *string `json:"content"`

	// Triage state. The booleans are authoritative; the timestamps
	// record when each flag was last set.
	Pinned     bool    `json:"pinned"`
	PinnedAt   *string `json:"pinned_at"`
	Done       bool    `json:"done"`
	DoneAt     *string `json:"done_at"`
	Reminder   bool    `json:"reminder"`
	ReminderAt *string `json:"reminder_at"`
}

// Identity returns the grouping identity for a message that has no
// thread key: the message stands alone, keyed by its own MessageID.
func (m *Message) Identity() string {
	return m.MessageID
}

// Epoch returns the parsed send time, or 0 when the date was
// unparseable.
func (m *Message) Epoch() int64 {
	if m.SentDate == nil {
		return 0
	}
	return *m.SentDate
}
