package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailscope/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// liteColumns is the projection used by lookups and the threaded
// listing. The body columns are deliberately excluded; bodies are
// fetched on demand via GetBody.
const liteColumns = `id, message_id, account, parent_id, thread_key, subject,
	sent_at, sent_date, message_from, message_to, message_cc, message_bcc,
	folder, pinned, pinned_at, done, done_at, reminder, reminder_at`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %v: %w", err, ErrUnavailable)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %v: %w", err, ErrUnavailable)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// InsertMessage inserts the raw capture and the normalized record in
// one transaction. A message identity that is already stored yields
// ErrConflict and leaves the store untouched.
func (s *SQLiteStore) InsertMessage(
	ctx context.Context,
	raw model.RawMessage,
	msg model.Message,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %v: %w", err, ErrUnavailable)
	}
	defer tx.Rollback()

	var existing int
	err = tx.GetContext(ctx, &existing,
		"SELECT COUNT(*) FROM messages WHERE message_id = ?", msg.MessageID,
	)
	if err != nil {
		return fmt.Errorf("checking for existing message %s: %w", msg.MessageID, err)
	}
	if existing > 0 {
		return fmt.Errorf("inserting message %s: %w", msg.MessageID, ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (
			message_id, account, parent_id, thread_key, subject,
			sent_at, sent_date, message_from, message_to, message_cc, message_bcc,
			folder, content, text_body, html_body,
			pinned, pinned_at, done, done_at, reminder, reminder_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?, ?
		)`,
		msg.MessageID, msg.Account, msg.ParentID, msg.ThreadKey, msg.Subject,
		msg.SentAt, msg.SentDate, msg.From, msg.To, msg.Cc, msg.Bcc,
		msg.Folder, msg.Content, msg.TextBody, msg.HTMLBody,
		boolToInt(msg.Pinned), msg.PinnedAt,
		boolToInt(msg.Done), msg.DoneAt,
		boolToInt(msg.Reminder), msg.ReminderAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting message %s: %w", msg.MessageID, ErrConflict)
		}
		return fmt.Errorf("inserting message %s: %w", msg.MessageID, err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO raw_messages (message_id, message) VALUES (?, ?)",
		raw.MessageID, raw.Message,
	)
	if err != nil {
		return fmt.Errorf("inserting raw message %s: %w", raw.MessageID, err)
	}

	return tx.Commit()
}

// FindByIdentity retrieves the stored message with the given identity.
// If the identity is duplicated (the missing-id sentinel), the most
// recently sent record wins.
func (s *SQLiteStore) FindByIdentity(
	ctx context.Context,
	identity string,
) (*model.Message, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+liteColumns+` FROM messages
			WHERE message_id = ?
			ORDER BY sent_date DESC, id DESC LIMIT 1`,
		identity,
	)

	msg, err := scanMessageRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", identity, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding message %s: %w", identity, err)
	}

	return &msg, nil
}

// ListThreaded runs the two-pass conversation query. The first pass
// selects the distinct thread keys of the most recently active
// matching conversations, capped at limit; the second fetches every
// message belonging to those keys, send date descending. Two passes
// because "most recent N conversations" is not "most recent N
// messages": one busy thread must not crowd out the rest.
func (s *SQLiteStore) ListThreaded(
	ctx context.Context,
	filter Filter,
	limit int,
) ([]model.Message, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	where := "thread_key IS NOT NULL"
	var args []interface{}
	if filter.Query != nil && *filter.Query != "" {
		where += ` AND (content LIKE ? OR subject LIKE ? OR message_to LIKE ?
			OR message_cc LIKE ? OR message_from LIKE ?)`
		q := "%" + *filter.Query + "%"
		args = append(args, q, q, q, q, q)
	}

	query := `SELECT thread_key FROM messages WHERE ` + where + `
		GROUP BY thread_key
		ORDER BY MAX(sent_date) DESC
		LIMIT ?`
	args = append(args, limit)

	var keys []string
	if err := s.db.SelectContext(ctx, &keys, query, args...); err != nil {
		return nil, fmt.Errorf("selecting thread keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	inQuery, inArgs, err := sqlx.In(
		"SELECT "+liteColumns+` FROM messages
			WHERE thread_key IN (?)
			ORDER BY sent_date DESC, id DESC`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("building thread query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, inQuery, inArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying threaded messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// GetBody retrieves the text and HTML bodies for a message identity.
// Identity is unique per the insert invariant; the sent-date ordering
// is a defensive tie-break for sentinel identities.
func (s *SQLiteStore) GetBody(
	ctx context.Context,
	identity string,
) (string, string, error) {
	var body struct {
		Text sql.NullString `db:"text_body"`
		HTML sql.NullString `db:"html_body"`
	}
	err := s.db.GetContext(ctx, &body, `
		SELECT text_body, html_body FROM messages
			WHERE message_id = ?
			ORDER BY sent_date DESC, id DESC LIMIT 1`,
		identity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("message %s: %w", identity, ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("getting body for %s: %w", identity, err)
	}

	return body.Text.String, body.HTML.String, nil
}

// GetRaw retrieves the stored wire bytes for a message identity.
func (s *SQLiteStore) GetRaw(
	ctx context.Context,
	identity string,
) ([]byte, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		"SELECT message FROM raw_messages WHERE message_id = ? ORDER BY id DESC LIMIT 1",
		identity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("raw message %s: %w", identity, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting raw message %s: %w", identity, err)
	}

	return raw, nil
}

// CountMessages reports the number of normalized records.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM messages"); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

// scanMessage scans a message row from a sqlx.Rows result set.
func scanMessage(rows *sqlx.Rows) (model.Message, error) {
	var (
		msg                    model.Message
		pinned, done, reminder int
	)

	err := rows.Scan(
		&msg.ID, &msg.MessageID, &msg.Account, &msg.ParentID, &msg.ThreadKey,
		&msg.Subject, &msg.SentAt, &msg.SentDate,
		&msg.From, &msg.To, &msg.Cc, &msg.Bcc, &msg.Folder,
		&pinned, &msg.PinnedAt, &done, &msg.DoneAt, &reminder, &msg.ReminderAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("scanning message row: %w", err)
	}

	msg.Pinned = pinned != 0
	msg.Done = done != 0
	msg.Reminder = reminder != 0

	return msg, nil
}

// scanMessageRow scans a single message row from a sqlx.Row.
func scanMessageRow(row *sqlx.Row) (model.Message, error) {
	var (
		msg                    model.Message
		pinned, done, reminder int
	)

	err := row.Scan(
		&msg.ID, &msg.MessageID, &msg.Account, &msg.ParentID, &msg.ThreadKey,
		&msg.Subject, &msg.SentAt, &msg.SentDate,
		&msg.From, &msg.To, &msg.Cc, &msg.Bcc, &msg.Folder,
		&pinned, &msg.PinnedAt, &done, &msg.DoneAt, &reminder, &msg.ReminderAt,
	)
	if err != nil {
		return model.Message{}, err
	}

	msg.Pinned = pinned != 0
	msg.Done = done != 0
	msg.Reminder = reminder != 0

	return msg, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure. The modernc driver exposes no typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
