package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrMessageExists   = errors.New("message already archived")
	ErrInvalidMessage  = errors.New("invalid message")
)

// passwordCheck is sealed with the derived key so a wrong password is
// detected on open rather than on the first read.
var passwordCheck = []byte("zentalk-didcomm-archive")

// MessageDB is an archive of assembled DIDComm messages. Envelopes are
// encrypted at rest because key-sharing bodies carry private key material.
type MessageDB struct {
	db            *sql.DB
	encryptionKey []byte // Derived from user password
}

// NewMessageDB opens (or creates) an encrypted message archive
func NewMessageDB(dbPath string, password string) (*MessageDB, error) {
	// Open SQLite database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	mdb := &MessageDB{db: db}

	// Initialize schema
	if err := mdb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	if err := mdb.unlock(password); err != nil {
		db.Close()
		return nil, err
	}

	return mdb, nil
}

// initSchema creates database tables
func (db *MessageDB) initSchema() error {
	schema := `
	-- Key derivation parameters
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);

	-- Archived envelopes
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT UNIQUE NOT NULL,
		message_type TEXT NOT NULL,
		from_did TEXT,
		recipients TEXT NOT NULL,
		created_time INTEGER,
		expires_time INTEGER,
		attachment_count INTEGER NOT NULL DEFAULT 0,
		payload BLOB NOT NULL,
		archived_at INTEGER NOT NULL
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(message_type, id DESC);
	CREATE INDEX IF NOT EXISTS idx_messages_expires ON messages(expires_time);
	`

	_, err := db.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// unlock derives the archive key from password and checks it against the
// stored verifier, creating salt and verifier on first use.
func (db *MessageDB) unlock(password string) error {
	salt, err := db.setting("salt")
	if errors.Is(err, ErrNotFound) {
		return db.initKey(password)
	}
	if err != nil {
		return err
	}

	key := crypto.DeriveKey(password, salt)

	verifier, err := db.setting("verifier")
	if err != nil {
		return err
	}

	plain, err := crypto.AESDecrypt(verifier, key)
	if err != nil || !bytes.Equal(plain, passwordCheck) {
		return ErrInvalidPassword
	}

	db.encryptionKey = key
	return nil
}

func (db *MessageDB) initKey(password string) error {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key := crypto.DeriveKey(password, salt)

	verifier, err := crypto.AESEncrypt(passwordCheck, key)
	if err != nil {
		return fmt.Errorf("failed to seal verifier: %w", err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for k, v := range map[string][]byte{"salt": salt, "verifier": verifier} {
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("failed to store %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	db.encryptionKey = key
	return nil
}

func (db *MessageDB) setting(key string) ([]byte, error) {
	var value []byte
	err := db.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return value, err
}

// Close closes the database connection
func (db *MessageDB) Close() error {
	return db.db.Close()
}
