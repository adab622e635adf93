package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id   TEXT NOT NULL,
	account      TEXT NOT NULL,
	parent_id    TEXT,
	thread_key   TEXT,
	subject      TEXT,
	sent_at      TEXT,
	sent_date    INTEGER,
	message_from TEXT,
	message_to   TEXT,
	message_cc   TEXT,
	message_bcc  TEXT,
	folder       TEXT,
	content      TEXT,
	text_body    TEXT,
	html_body    TEXT,
	pinned       INTEGER NOT NULL DEFAULT 0 CHECK(pinned IN (0, 1)),
	pinned_at    TEXT,
	done         INTEGER NOT NULL DEFAULT 0 CHECK(done IN (0, 1)),
	done_at      TEXT,
	reminder     INTEGER NOT NULL DEFAULT 0 CHECK(reminder IN (0, 1)),
	reminder_at  TEXT
);

CREATE TABLE IF NOT EXISTS raw_messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL,
	message    BLOB NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_message_id ON messages(message_id);
CREATE INDEX IF NOT EXISTS idx_messages_thread_key ON messages(thread_key);
CREATE INDEX IF NOT EXISTS idx_messages_sent_date ON messages(sent_date);
CREATE INDEX IF NOT EXISTS idx_raw_messages_message_id ON raw_messages(message_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
