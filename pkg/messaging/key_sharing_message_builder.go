package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// KeySharingMessageBuilder builds messages that share a JWK set
type KeySharingMessageBuilder struct {
	hdr  header
	keys []JSONWebKey
}

// NewKeySharingMessageBuilder returns an empty builder
func NewKeySharingMessageBuilder() KeySharingMessageBuilder {
	return KeySharingMessageBuilder{}
}

func (b KeySharingMessageBuilder) ID(id string) KeySharingMessageBuilder {
	b.hdr = b.hdr.withID(id)
	return b
}

func (b KeySharingMessageBuilder) To(did string) KeySharingMessageBuilder {
	b.hdr = b.hdr.withTo(did)
	return b
}

func (b KeySharingMessageBuilder) From(did string) KeySharingMessageBuilder {
	b.hdr = b.hdr.withFrom(did)
	return b
}

func (b KeySharingMessageBuilder) CreatedTime(t uint64) KeySharingMessageBuilder {
	b.hdr = b.hdr.withCreatedTime(t)
	return b
}

func (b KeySharingMessageBuilder) CreatedNow() KeySharingMessageBuilder {
	b.hdr = b.hdr.withCreatedNow()
	return b
}

func (b KeySharingMessageBuilder) ExpiresTime(t uint64) KeySharingMessageBuilder {
	b.hdr = b.hdr.withExpiresTime(t)
	return b
}

// AddKey appends a key to the shared set
func (b KeySharingMessageBuilder) AddKey(key JSONWebKey) KeySharingMessageBuilder {
	b.keys = appendCopy(b.keys, key)
	return b
}

// Build returns the finalized message, or ErrMissingKey when no key was added.
func (b KeySharingMessageBuilder) Build() (*didcomm.Message, error) {
	if len(b.keys) == 0 {
		return nil, ErrMissingKey
	}

	body, err := json.Marshal(struct {
		Keys []JSONWebKey `json:"keys"`
	}{b.keys})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	mb := didcomm.Build(b.hdr.messageID(), didcomm.TypeKeySharing, body)
	return b.hdr.apply(mb).Finalize(), nil
}
