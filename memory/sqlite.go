package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petasbytes/frontogether/internal/conversation"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system', 'tool')),
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, sequence)
);
`

// SQLiteStore keeps many sessions in one database; each store value is bound
// to one session id.
type SQLiteStore struct {
	db        *sql.DB
	sessionID string
}

// OpenSQLite opens (creating if needed) the database at path and binds the
// store to sessionID.
func OpenSQLite(ctx context.Context, path, sessionID string) (*SQLiteStore, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sqlite store: empty session id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO sessions (id) VALUES (?)`, sessionID); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &SQLiteStore{db: db, sessionID: sessionID}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (conversation.Log, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM messages WHERE session_id = ? ORDER BY sequence ASC`, s.sessionID)
	if err != nil {
		return conversation.Log{}, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []conversation.Message
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return conversation.Log{}, fmt.Errorf("scan message: %w", err)
		}
		m, err := conversation.UnmarshalMessage([]byte(body))
		if err != nil {
			return conversation.Log{}, fmt.Errorf("decode message %d: %w", len(msgs), err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return conversation.Log{}, err
	}
	return conversation.NewLog(msgs...), nil
}

// Append inserts msgs after the session's last message in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, msgs ...conversation.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(sequence) FROM messages WHERE session_id = ?`, s.sessionID).Scan(&maxSeq); err != nil {
		return fmt.Errorf("get max sequence: %w", err)
	}
	seq := 0
	if maxSeq.Valid {
		seq = int(maxSeq.Int64) + 1
	}

	for _, m := range msgs {
		body, err := conversation.MarshalMessage(m)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, sequence, role, body) VALUES (?, ?, ?, ?)`,
			s.sessionID, seq, string(m.Role()), string(body)); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		seq++
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now(), s.sessionID); err != nil {
		return fmt.Errorf("update session timestamp: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
