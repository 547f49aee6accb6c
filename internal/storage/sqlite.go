package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codesentry/internal/conversation"
)

// Store is the on-device durable store for conversation records. Write-through
// only: records are replaced wholesale on Put, never mutated independently.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer keeps things simple and lock-free
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		original_code TEXT,
		detected_issues TEXT,
		messages TEXT,
		created_at INTEGER,
		updated_at INTEGER
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put upserts a record. An existing row keeps its original created_at so
// updated_at never precedes it.
func (s *Store) Put(record conversation.ConversationRecord) error {
	issuesJSON, err := json.Marshal(record.DetectedIssues)
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	messagesJSON, err := json.Marshal(record.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO conversations (id, original_code, detected_issues, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			original_code = excluded.original_code,
			detected_issues = excluded.detected_issues,
			messages = excluded.messages,
			updated_at = excluded.updated_at
	`, record.ID, record.OriginalCodeSnippet, string(issuesJSON), string(messagesJSON),
		record.CreatedAt.Unix(), record.UpdatedAt.Unix())
	return err
}

// Get returns the record with the given id, or (nil, nil) when absent.
func (s *Store) Get(id string) (*conversation.ConversationRecord, error) {
	var (
		record               conversation.ConversationRecord
		issuesJSON           string
		messagesJSON         string
		createdAt, updatedAt int64
	)

	err := s.db.QueryRow(`
		SELECT id, original_code, detected_issues, messages, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id).Scan(&record.ID, &record.OriginalCodeSnippet, &issuesJSON, &messagesJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(issuesJSON), &record.DetectedIssues); err != nil {
		return nil, fmt.Errorf("decode issues for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &record.Messages); err != nil {
		return nil, fmt.Errorf("decode messages for %s: %w", id, err)
	}
	record.CreatedAt = time.Unix(createdAt, 0)
	record.UpdatedAt = time.Unix(updatedAt, 0)

	return &record, nil
}

// ConversationSummary is the listing projection: metadata only.
type ConversationSummary struct {
	ID           string    `json:"conversation_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// List returns summaries for all stored conversations, most recent first.
func (s *Store) List() ([]ConversationSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, messages, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var (
			sum                  ConversationSummary
			messagesJSON         string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&sum.ID, &messagesJSON, &createdAt, &updatedAt); err != nil {
			continue
		}
		var messages []conversation.PersistedMessage
		if err := json.Unmarshal([]byte(messagesJSON), &messages); err == nil {
			sum.MessageCount = len(messages)
		}
		sum.CreatedAt = time.Unix(createdAt, 0)
		sum.UpdatedAt = time.Unix(updatedAt, 0)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Delete removes a conversation. Reports whether a row existed.
func (s *Store) Delete(id string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
