package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/docvoice/docvoice/internal/core/domain"
)

// recordName keys the single persisted session record.
const recordName = "current_session"

// Vault stores at most one session record in a local SQLite database.
// Writes are whole-row upserts, so a reader either sees the previous
// record or the new one, never a partial write.
type Vault struct {
	db *sql.DB
}

func Open(path string) (*Vault, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open vault database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping vault database: %w", err)
	}

	vault := &Vault{db: db}
	if err := vault.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return vault, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB) *Vault {
	return &Vault{db: db}
}

func (v *Vault) Close() error {
	return v.db.Close()
}

func (v *Vault) ensureSchema() error {
	_, err := v.db.Exec(`
		CREATE TABLE IF NOT EXISTS session_record (
			name     TEXT PRIMARY KEY,
			payload  TEXT NOT NULL,
			saved_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure vault schema: %w", err)
	}
	return nil
}

type sessionPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

// Load returns the persisted session, nil when none exists, and
// domain.ErrCorruptedSession when the record no longer parses.
func (v *Vault) Load(ctx context.Context) (*domain.Session, error) {
	row := v.db.QueryRowContext(ctx,
		`SELECT payload FROM session_record WHERE name = ?`, recordName)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session record: %w", err)
	}

	var payload sessionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, domain.WrapError(domain.ErrCorruptedSession, "parse session record", err)
	}
	if payload.UserID == "" {
		return nil, domain.WrapError(domain.ErrCorruptedSession, "parse session record",
			errors.New("missing user id"))
	}

	return &domain.Session{
		UserID:      payload.UserID,
		DisplayName: payload.DisplayName,
		Token:       payload.Token,
	}, nil
}

func (v *Vault) Save(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(sessionPayload{
		UserID:      session.UserID,
		DisplayName: session.DisplayName,
		Token:       session.Token,
	})
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	_, err = v.db.ExecContext(ctx, `
		INSERT INTO session_record (name, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, recordName, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

func (v *Vault) Delete(ctx context.Context) error {
	if _, err := v.db.ExecContext(ctx,
		`DELETE FROM session_record WHERE name = ?`, recordName); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}
