package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// HeaderOptions are the optional header fields shared by every option bundle
type HeaderOptions struct {
	ID          *string  `json:"id,omitempty"`
	CreatedTime *uint64  `json:"createdTime,omitempty"`
	ExpiresTime *uint64  `json:"expiresTime,omitempty"`
	To          []string `json:"to,omitempty"`
	From        *string  `json:"from,omitempty"`
}

// DirectMessageOptions describes a direct message in one value
type DirectMessageOptions struct {
	HeaderOptions
	Message string `json:"message"`
}

// KeySharingMessageOptions describes a key-sharing message in one value.
// Keys are structured as a JWK set.
type KeySharingMessageOptions struct {
	HeaderOptions
	Keys []JSONWebKey `json:"keys"`
}

// MediaItemsMessageOptions describes a media-sharing message in one value
type MediaItemsMessageOptions struct {
	HeaderOptions
	MediaItems MediaItems `json:"mediaItems"`
}

// headerSetter is implemented by all three builders
type headerSetter[B any] interface {
	ID(string) B
	To(string) B
	From(string) B
	CreatedTime(uint64) B
	ExpiresTime(uint64) B
}

// applyHeader sets the configured options in the order from, to, created
// time, expires time, id.
func applyHeader[B headerSetter[B]](b B, o HeaderOptions) B {
	if o.From != nil {
		b = b.From(*o.From)
	}
	for _, to := range o.To {
		b = b.To(to)
	}
	if o.CreatedTime != nil {
		b = b.CreatedTime(*o.CreatedTime)
	}
	if o.ExpiresTime != nil {
		b = b.ExpiresTime(*o.ExpiresTime)
	}
	if o.ID != nil {
		b = b.ID(*o.ID)
	}
	return b
}

func buildFailed(err error) error {
	return fmt.Errorf("failed to build message: %w", err)
}

// CreateDirectMessage builds a direct message from options
func CreateDirectMessage(o DirectMessageOptions) (*didcomm.Message, error) {
	msg, err := applyHeader(NewDirectMessageBuilder(), o.HeaderOptions).
		Message(o.Message).
		Build()
	if err != nil {
		return nil, buildFailed(err)
	}
	return msg, nil
}

// CreateKeySharingMessage builds a key-sharing message from options
func CreateKeySharingMessage(o KeySharingMessageOptions) (*didcomm.Message, error) {
	b := applyHeader(NewKeySharingMessageBuilder(), o.HeaderOptions)
	for _, key := range o.Keys {
		b = b.AddKey(key)
	}

	msg, err := b.Build()
	if err != nil {
		return nil, buildFailed(err)
	}
	return msg, nil
}

// CreateMediaItemMessage builds a media-sharing message from options
func CreateMediaItemMessage(o MediaItemsMessageOptions) (*didcomm.Message, error) {
	b := applyHeader(NewMediaSharingMessageBuilder(), o.HeaderOptions)
	for _, item := range o.MediaItems {
		b = b.MediaItem(item)
	}

	msg, err := b.Build()
	if err != nil {
		return nil, buildFailed(err)
	}
	return msg, nil
}

// MarshalMessage renders a message as its JSON wire form
func MarshalMessage(msg *didcomm.Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return string(data), nil
}
