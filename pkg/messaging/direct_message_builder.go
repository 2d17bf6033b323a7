package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// DirectMessageBuilder builds basic text messages
type DirectMessageBuilder struct {
	hdr     header
	message *string
}

// NewDirectMessageBuilder returns an empty builder
func NewDirectMessageBuilder() DirectMessageBuilder {
	return DirectMessageBuilder{}
}

// ID sets the message id
func (b DirectMessageBuilder) ID(id string) DirectMessageBuilder {
	b.hdr = b.hdr.withID(id)
	return b
}

// To adds a recipient
func (b DirectMessageBuilder) To(did string) DirectMessageBuilder {
	b.hdr = b.hdr.withTo(did)
	return b
}

// From sets the sender
func (b DirectMessageBuilder) From(did string) DirectMessageBuilder {
	b.hdr = b.hdr.withFrom(did)
	return b
}

// CreatedTime sets the creation time in Unix seconds
func (b DirectMessageBuilder) CreatedTime(t uint64) DirectMessageBuilder {
	b.hdr = b.hdr.withCreatedTime(t)
	return b
}

// CreatedNow sets the creation time to the current time
func (b DirectMessageBuilder) CreatedNow() DirectMessageBuilder {
	b.hdr = b.hdr.withCreatedNow()
	return b
}

// ExpiresTime sets the expiration time in Unix seconds
func (b DirectMessageBuilder) ExpiresTime(t uint64) DirectMessageBuilder {
	b.hdr = b.hdr.withExpiresTime(t)
	return b
}

// Message sets the text content
func (b DirectMessageBuilder) Message(content string) DirectMessageBuilder {
	b.message = &content
	return b
}

// Build returns the finalized message, or ErrMissingMessage when no content
// was set.
func (b DirectMessageBuilder) Build() (*didcomm.Message, error) {
	if b.message == nil {
		return nil, ErrMissingMessage
	}

	body, err := json.Marshal(struct {
		Content string `json:"content"`
	}{*b.message})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	mb := didcomm.Build(b.hdr.messageID(), didcomm.TypeBasicMessage, body)
	return b.hdr.apply(mb).Finalize(), nil
}
