// Package session persists conversation transcripts in a local SQLite
// database so a conversation can be resumed across runs.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/calebhart/drift/internal/provider"
)

// Session is one stored conversation.
type Session struct {
	ID        string
	Workspace string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists sessions and their messages.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the session database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging session db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating session db: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	workspace  TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_workspace
	ON sessions(workspace, updated_at);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Create starts a new session for the given workspace.
func (s *Store) Create(ctx context.Context, workspace string) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		Workspace: workspace,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, workspace, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Workspace, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Append stores messages at the end of a session's transcript.
func (s *Store) Append(ctx context.Context, sessionID string, messages ...provider.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("appending messages: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, msg := range messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
			sessionID, msg.Role, msg.Content, now); err != nil {
			return fmt.Errorf("appending messages: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, sessionID); err != nil {
		return fmt.Errorf("appending messages: %w", err)
	}
	return tx.Commit()
}

// Load returns a session's transcript in insertion order.
func (s *Store) Load(ctx context.Context, sessionID string) ([]provider.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM messages WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []provider.Message
	for rows.Next() {
		var msg provider.Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// RecentForWorkspace returns the most recently updated session for a
// workspace, if any.
func (s *Store) RecentForWorkspace(ctx context.Context, workspace string) (Session, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, workspace, created_at, updated_at FROM sessions
		 WHERE workspace = ? ORDER BY updated_at DESC LIMIT 1`, workspace)

	var sess Session
	var created, updated string
	if err := row.Scan(&sess.ID, &sess.Workspace, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("looking up recent session: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return sess, true, nil
}
