package messaging

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

var ErrUnknownMediaItem = errors.New("media item is neither inlined nor referenced")

// MediaItem is either a MediaItemInlined or a MediaItemReferenced.
type MediaItem interface {
	// bodyItem returns the entry placed in the message body's item list
	bodyItem() (json.RawMessage, error)
	// attachment returns the envelope attachment descriptor
	attachment() didcomm.Attachment
}

// MediaItemInlined is a media item whose content travels in the message
type MediaItemInlined struct {
	ID          string `json:"id"`                    // Attachment ID
	MediaType   string `json:"media_type"`            // Media type of file
	Filename    string `json:"filename,omitempty"`    // File name
	Description string `json:"description,omitempty"` // File description
	Base64      string `json:"base64"`                // File contents encoded as base64
}

// MediaItemReferenced is a media item stored elsewhere and referenced by link
type MediaItemReferenced struct {
	ID          string `json:"id"`
	MediaType   string `json:"media_type"`
	Filename    string `json:"filename,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link"`
	// Hash is the multihash of the content, used as an integrity check
	Hash string `json:"hash"`
	// Ciphering describes how the referenced content is encrypted
	Ciphering json.RawMessage `json:"ciphering,omitempty"`
}

// BodySummary is the body entry that points at an attachment
type BodySummary struct {
	ID           string          `json:"@id"`
	AttachmentID string          `json:"attachment_id"`
	Ciphering    json.RawMessage `json:"ciphering,omitempty"`
}

func marshalBodySummary(s BodySummary) (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: body item %s: %v", ErrSerialization, s.AttachmentID, err)
	}
	return data, nil
}

func (m MediaItemInlined) bodyItem() (json.RawMessage, error) {
	return marshalBodySummary(BodySummary{
		ID:           newID(),
		AttachmentID: m.ID,
	})
}

func (m MediaItemInlined) attachment() didcomm.Attachment {
	return didcomm.Attachment{
		ID:          m.ID,
		MediaType:   m.MediaType,
		Filename:    m.Filename,
		Description: m.Description,
		Data:        didcomm.Base64AttachmentData{Base64: m.Base64},
	}
}

func (m MediaItemReferenced) bodyItem() (json.RawMessage, error) {
	return marshalBodySummary(BodySummary{
		ID:           newID(),
		AttachmentID: m.ID,
		Ciphering:    presentOrNil(m.Ciphering),
	})
}

func (m MediaItemReferenced) attachment() didcomm.Attachment {
	return didcomm.Attachment{
		ID:          m.ID,
		MediaType:   m.MediaType,
		Filename:    m.Filename,
		Description: m.Description,
		Data: didcomm.LinksAttachmentData{
			Links: []string{m.Link},
			Hash:  m.Hash,
		},
	}
}

// presentOrNil treats a JSON null like an absent value
func presentOrNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

// NewMediaItemInlined wraps raw content as an inlined media item
func NewMediaItemInlined(id, mediaType string, content []byte) MediaItemInlined {
	return MediaItemInlined{
		ID:        id,
		MediaType: mediaType,
		Base64:    base64.StdEncoding.EncodeToString(content),
	}
}

// NewMediaItemReferenced builds a referenced media item whose hash is the
// BLAKE2b-256 multihash of content.
func NewMediaItemReferenced(id, mediaType, link string, content []byte) (MediaItemReferenced, error) {
	hash, err := crypto.ContentHash(crypto.HashBlake2b256, content)
	if err != nil {
		return MediaItemReferenced{}, err
	}

	return MediaItemReferenced{
		ID:        id,
		MediaType: mediaType,
		Link:      link,
		Hash:      hash,
	}, nil
}

// DecodeMediaItem decodes an untagged media item: objects carrying "link"
// and "hash" are referenced, objects carrying "base64" are inlined. Both
// kinds require "id" and "media_type".
func DecodeMediaItem(data []byte) (MediaItem, error) {
	var fields struct {
		ID        *string `json:"id"`
		MediaType *string `json:"media_type"`
		Link      *string `json:"link"`
		Hash      *string `json:"hash"`
		Base64    *string `json:"base64"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	if fields.ID == nil || fields.MediaType == nil {
		return nil, fmt.Errorf("%w: id and media_type are required", ErrUnknownMediaItem)
	}

	switch {
	case fields.Link != nil && fields.Hash != nil:
		var item MediaItemReferenced
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		return item, nil
	case fields.Base64 != nil:
		var item MediaItemInlined
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		return item, nil
	default:
		return nil, ErrUnknownMediaItem
	}
}

// MediaItems is a list of media items of either kind
type MediaItems []MediaItem

// UnmarshalJSON decodes each element with DecodeMediaItem
func (m *MediaItems) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items := make(MediaItems, 0, len(raw))
	for i, r := range raw {
		item, err := DecodeMediaItem(r)
		if err != nil {
			return fmt.Errorf("media item %d: %w", i, err)
		}
		items = append(items, item)
	}

	*m = items
	return nil
}
