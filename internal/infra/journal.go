package infra

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// Ensure sqlcipher driver is registered.
var _ = sqlcipher.ErrBusy

const (
	journalDBName = "journal.db"
)

// EncryptedJournal implements domain.BlockJournal using a SQLCipher
// encrypted SQLite database. Browsing history is sensitive, so records
// never touch disk in the clear.
type EncryptedJournal struct {
	db     *sql.DB
	dbPath string
}

// NewEncryptedJournal opens (or creates) the journal in dataDir.
// The key is used as the SQLCipher passphrase via PRAGMA key.
func NewEncryptedJournal(dataDir string, key []byte) (*EncryptedJournal, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, journalDBName)
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, hex.EncodeToString(key))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// A wrong key surfaces here, not at open.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	j := &EncryptedJournal{db: db, dbPath: dbPath}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

func (j *EncryptedJournal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS block_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		category TEXT NOT NULL,
		app_id TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		blocked_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_block_events_blocked_at ON block_events (blocked_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends an accepted decision.
func (j *EncryptedJournal) Record(rec domain.BlockRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO block_events (target, category, app_id, address, blocked_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Target, string(rec.Category), rec.AppID, rec.Address, rec.BlockedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record block: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *EncryptedJournal) Recent(limit int) ([]domain.BlockRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := j.db.Query(`
		SELECT target, category, app_id, address, blocked_at
		FROM block_events ORDER BY blocked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BlockRecord
	for rows.Next() {
		var rec domain.BlockRecord
		var category string
		var blockedAt int64
		if err := rows.Scan(&rec.Target, &category, &rec.AppID, &rec.Address, &blockedAt); err != nil {
			return nil, err
		}
		rec.Category = domain.BlockCategory(category)
		rec.BlockedAt = time.Unix(0, blockedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountSince returns block counts per category for records at or after t.
func (j *EncryptedJournal) CountSince(t time.Time) (map[domain.BlockCategory]int, error) {
	rows, err := j.db.Query(`
		SELECT category, COUNT(*) FROM block_events
		WHERE blocked_at >= ? GROUP BY category`, t.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.BlockCategory]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[domain.BlockCategory(category)] = n
	}
	return counts, rows.Err()
}

// Path returns the database file path.
func (j *EncryptedJournal) Path() string {
	return j.dbPath
}

// Close releases the database connection.
func (j *EncryptedJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// OpenJournal opens the journal in dataDir with the key from keys, creating
// both on first use. A nil keys uses the key file next to the database.
func OpenJournal(dataDir string, keys domain.KeyProvider) (*EncryptedJournal, error) {
	dbPath := filepath.Join(dataDir, journalDBName)
	if keys == nil {
		keys = NewJournalKeyFile(dbPath)
	}

	key, err := journalKey(keys, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal key: %w", err)
	}
	return NewEncryptedJournal(dataDir, key)
}

// Ensure EncryptedJournal implements domain.BlockJournal.
var _ domain.BlockJournal = (*EncryptedJournal)(nil)
