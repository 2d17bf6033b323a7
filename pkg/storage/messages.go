package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// StoredMessage is an archived envelope with its indexed metadata
type StoredMessage struct {
	ID              int64            `json:"rowId"`
	MessageID       string           `json:"messageId"`
	Type            string           `json:"type"`
	From            string           `json:"from,omitempty"`
	To              []string         `json:"to,omitempty"`
	CreatedTime     *uint64          `json:"createdTime,omitempty"`
	ExpiresTime     *uint64          `json:"expiresTime,omitempty"`
	AttachmentCount int              `json:"attachmentCount"`
	ArchivedAt      int64            `json:"archivedAt"`
	Message         *didcomm.Message `json:"message"`
}

// ListOptions filters ListMessages
type ListOptions struct {
	Type   string // Only messages of this type URI
	Limit  int    // Defaults to 50
	Offset int
}

const defaultListLimit = 50

// ===== MESSAGE OPERATIONS =====

// SaveMessage archives a finalized message. Messages that fail
// validation are rejected with ErrInvalidMessage and nothing is written.
func (db *MessageDB) SaveMessage(msg *didcomm.Message) (*StoredMessage, error) {
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	// Encrypt envelope
	encrypted, err := crypto.AESEncrypt(payload, db.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt message: %w", err)
	}

	recipients, err := json.Marshal(nonNil(msg.To))
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO messages (
			message_id, message_type, from_did, recipients,
			created_time, expires_time, attachment_count, payload, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.db.Exec(
		query,
		msg.ID,
		msg.Type,
		nullString(msg.From),
		string(recipients),
		nullUint(msg.CreatedTime),
		nullUint(msg.ExpiresTime),
		len(msg.Attachments),
		encrypted,
		time.Now().Unix(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrMessageExists
		}
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.getBy("id", id)
}

// GetMessage retrieves an archived message by its DIDComm id
func (db *MessageDB) GetMessage(messageID string) (*StoredMessage, error) {
	return db.getBy("message_id", messageID)
}

const selectColumns = `
	SELECT id, message_id, message_type, from_did, recipients,
	       created_time, expires_time, attachment_count, payload, archived_at
	FROM messages
`

func (db *MessageDB) getBy(column string, value any) (*StoredMessage, error) {
	row := db.db.QueryRow(selectColumns+" WHERE "+column+" = ?", value)

	msg, err := db.scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return msg, err
}

// ListMessages returns archived messages, newest first
func (db *MessageDB) ListMessages(opts ListOptions) ([]*StoredMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		where []string
		args  []any
	)
	if opts.Type != "" {
		where = append(where, "message_type = ?")
		args = append(args, opts.Type)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*StoredMessage
	for rows.Next() {
		msg, err := db.scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// CountMessages returns the number of archived messages
func (db *MessageDB) CountMessages() (int, error) {
	var n int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

// DeleteMessage removes an archived message
func (db *MessageDB) DeleteMessage(messageID string) error {
	result, err := db.db.Exec(`DELETE FROM messages WHERE message_id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// PurgeExpired deletes messages whose expires_time is at or before now
// (Unix seconds) and returns how many were removed.
func (db *MessageDB) PurgeExpired(now uint64) (int64, error) {
	result, err := db.db.Exec(
		`DELETE FROM messages WHERE expires_time IS NOT NULL AND expires_time <= ?`,
		int64(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge messages: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func (db *MessageDB) scanMessage(row scanner) (*StoredMessage, error) {
	var (
		msg         StoredMessage
		from        sql.NullString
		recipients  string
		createdTime sql.NullInt64
		expiresTime sql.NullInt64
		encrypted   []byte
	)

	err := row.Scan(
		&msg.ID,
		&msg.MessageID,
		&msg.Type,
		&from,
		&recipients,
		&createdTime,
		&expiresTime,
		&msg.AttachmentCount,
		&encrypted,
		&msg.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}

	msg.From = from.String
	msg.CreatedTime = uintFromNull(createdTime)
	msg.ExpiresTime = uintFromNull(expiresTime)

	if err := json.Unmarshal([]byte(recipients), &msg.To); err != nil {
		return nil, fmt.Errorf("failed to decode recipients: %w", err)
	}
	if len(msg.To) == 0 {
		msg.To = nil
	}

	// Decrypt envelope
	payload, err := crypto.AESDecrypt(encrypted, db.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt message: %w", err)
	}

	// Validated on save
	if err := json.Unmarshal(payload, &msg.Message); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	return &msg, nil
}
