package chatlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"travelchat/internal/domain"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS chat_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   TEXT NOT NULL,
	session_id  TEXT,
	user_input  TEXT NOT NULL,
	model_reply TEXT NOT NULL
);`

// SQLite stores entries in a chat_logs table.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{conn: conn}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Append inserts one row.
func (s *SQLite) Append(ctx context.Context, entry domain.ChatLogEntry) error {
	var session sql.NullString
	if entry.SessionID != "" {
		session = sql.NullString{String: entry.SessionID, Valid: true}
	}
	_, err := s.conn.ExecContext(
		ctx,
		`INSERT INTO chat_logs (timestamp, session_id, user_input, model_reply) VALUES (?, ?, ?, ?)`,
		entry.Timestamp.Format(time.RFC3339Nano),
		session,
		entry.UserInput,
		entry.ModelReply,
	)
	if err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

// Entries returns all rows in insertion order.
func (s *SQLite) Entries(ctx context.Context) ([]domain.ChatLogEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT timestamp, session_id, user_input, model_reply FROM chat_logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query chat logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChatLogEntry
	for rows.Next() {
		var (
			entry   domain.ChatLogEntry
			ts      string
			session sql.NullString
		)
		if err := rows.Scan(&ts, &session, &entry.UserInput, &entry.ModelReply); err != nil {
			return nil, fmt.Errorf("scan chat log: %w", err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		entry.SessionID = session.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat logs: %w", err)
	}
	return entries, nil
}

// ReadAll renders every row as a JSON line, matching the JSONL sink.
func (s *SQLite) ReadAll(ctx context.Context) (string, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return "", err
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
