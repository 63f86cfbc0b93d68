package infra

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// journalKeySize is the raw SQLCipher key length (256 bits).
const journalKeySize = 32

// JournalKeyFile implements domain.KeyProvider for one journal database.
// The key lives next to the database as "<db>.key", hex encoded exactly as
// it is passed to PRAGMA key, readable only by its owner.
type JournalKeyFile struct {
	path string
}

// NewJournalKeyFile creates the key file provider for the journal at dbPath.
func NewJournalKeyFile(dbPath string) *JournalKeyFile {
	return &JournalKeyFile{path: dbPath + ".key"}
}

// Path returns the key file location.
func (k *JournalKeyFile) Path() string {
	return k.path
}

// GetKey reads the key. Surrounding whitespace from hand edits is ignored.
func (k *JournalKeyFile) GetKey() ([]byte, error) {
	raw, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal key: %w", err)
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("journal key is not hex: %w", err)
	}
	if err := checkJournalKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// StoreKey writes key with 0600 permissions next to the journal.
func (k *JournalKeyFile) StoreKey(key []byte) error {
	if err := checkJournalKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	if err := os.WriteFile(k.path, []byte(hex.EncodeToString(key)), 0600); err != nil {
		return fmt.Errorf("failed to write journal key: %w", err)
	}
	return nil
}

// KeyExists reports whether the key file is present.
func (k *JournalKeyFile) KeyExists() bool {
	_, err := os.Stat(k.path)
	return err == nil
}

// GenerateKey returns a new random journal key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, journalKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate journal key: %w", err)
	}
	return key, nil
}

func checkJournalKey(key []byte) error {
	if len(key) != journalKeySize {
		return fmt.Errorf("invalid journal key size: got %d, want %d", len(key), journalKeySize)
	}
	return nil
}

// ErrJournalKeyLost means a journal exists but its key does not, so the
// records can no longer be decrypted.
var ErrJournalKeyLost = errors.New("journal exists but its key is missing")

// journalKey returns the key for the journal at dbPath. A key is generated
// and stored only for a journal that does not exist yet: a fresh key would
// never open an existing one.
func journalKey(keys domain.KeyProvider, dbPath string) ([]byte, error) {
	if keys.KeyExists() {
		return keys.GetKey()
	}
	if _, err := os.Stat(dbPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrJournalKeyLost, dbPath)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := keys.StoreKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Ensure JournalKeyFile implements domain.KeyProvider.
var _ domain.KeyProvider = (*JournalKeyFile)(nil)
