package didcomm

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingID     = errors.New("message id is required")
	ErrMissingType   = errors.New("message type is required")
	ErrMissingBody   = errors.New("message body is required")
	ErrInvalidTyp    = errors.New("unsupported message typ")
	ErrInvalidFormat = errors.New("invalid message format")
)

// Message is a finalized plaintext DIDComm message
type Message struct {
	ID          string          `json:"id"`
	Typ         string          `json:"typ"`
	Type        string          `json:"type"`
	Body        json.RawMessage `json:"body"`
	From        string          `json:"from,omitempty"`
	To          []string        `json:"to,omitempty"`
	CreatedTime *uint64         `json:"created_time,omitempty"`
	ExpiresTime *uint64         `json:"expires_time,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`
}

// MessageBuilder assembles a Message. Recipients and attachments keep the
// order in which they were added.
type MessageBuilder struct {
	msg Message
}

// Build starts a new message with the given id, type URI and body
func Build(id, typ string, body json.RawMessage) *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			ID:   id,
			Typ:  PlaintextMediaType,
			Type: typ,
			Body: body,
		},
	}
}

// To appends a recipient DID
func (b *MessageBuilder) To(to string) *MessageBuilder {
	b.msg.To = append(b.msg.To, to)
	return b
}

// From sets the sender DID
func (b *MessageBuilder) From(from string) *MessageBuilder {
	b.msg.From = from
	return b
}

// CreatedTime sets the creation time in Unix seconds
func (b *MessageBuilder) CreatedTime(t uint64) *MessageBuilder {
	b.msg.CreatedTime = &t
	return b
}

// ExpiresTime sets the expiration time in Unix seconds
func (b *MessageBuilder) ExpiresTime(t uint64) *MessageBuilder {
	b.msg.ExpiresTime = &t
	return b
}

// Attachment appends an attachment
func (b *MessageBuilder) Attachment(a Attachment) *MessageBuilder {
	b.msg.Attachments = append(b.msg.Attachments, a)
	return b
}

// Finalize returns the assembled message. The result shares no memory with
// the builder, so further builder calls do not affect it.
func (b *MessageBuilder) Finalize() *Message {
	return b.msg.Clone()
}

// Clone returns a deep copy of the message
func (m *Message) Clone() *Message {
	out := *m

	if m.Body != nil {
		out.Body = append(json.RawMessage(nil), m.Body...)
	}
	if m.To != nil {
		out.To = append([]string(nil), m.To...)
	}
	if m.CreatedTime != nil {
		t := *m.CreatedTime
		out.CreatedTime = &t
	}
	if m.ExpiresTime != nil {
		t := *m.ExpiresTime
		out.ExpiresTime = &t
	}
	if m.Attachments != nil {
		out.Attachments = make([]Attachment, len(m.Attachments))
		for i, a := range m.Attachments {
			out.Attachments[i] = a.clone()
		}
	}

	return &out
}

// Validate checks the structural invariants of a plaintext message
func (m *Message) Validate() error {
	if m.ID == "" {
		return ErrMissingID
	}

	if m.Type == "" {
		return ErrMissingType
	}

	if m.Typ != PlaintextMediaType {
		return fmt.Errorf("%w: %q", ErrInvalidTyp, m.Typ)
	}

	if len(m.Body) == 0 || string(m.Body) == "null" {
		return ErrMissingBody
	}

	for i := range m.Attachments {
		if err := m.Attachments[i].Validate(); err != nil {
			return fmt.Errorf("attachment %d: %w", i, err)
		}
	}

	return nil
}

// ParseMessage decodes and validates a plaintext message
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return &msg, nil
}

// IsExpired reports whether the message has an expiry at or before now (Unix seconds)
func (m *Message) IsExpired(now uint64) bool {
	return m.ExpiresTime != nil && *m.ExpiresTime <= now
}
