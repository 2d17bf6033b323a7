package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// MediaSharingMessageBuilder builds messages that share media items
type MediaSharingMessageBuilder struct {
	hdr        header
	inlined    []MediaItemInlined
	referenced []MediaItemReferenced
}

// NewMediaSharingMessageBuilder returns an empty builder
func NewMediaSharingMessageBuilder() MediaSharingMessageBuilder {
	return MediaSharingMessageBuilder{}
}

func (b MediaSharingMessageBuilder) ID(id string) MediaSharingMessageBuilder {
	b.hdr = b.hdr.withID(id)
	return b
}

func (b MediaSharingMessageBuilder) To(did string) MediaSharingMessageBuilder {
	b.hdr = b.hdr.withTo(did)
	return b
}

func (b MediaSharingMessageBuilder) From(did string) MediaSharingMessageBuilder {
	b.hdr = b.hdr.withFrom(did)
	return b
}

func (b MediaSharingMessageBuilder) CreatedTime(t uint64) MediaSharingMessageBuilder {
	b.hdr = b.hdr.withCreatedTime(t)
	return b
}

func (b MediaSharingMessageBuilder) CreatedNow() MediaSharingMessageBuilder {
	b.hdr = b.hdr.withCreatedNow()
	return b
}

func (b MediaSharingMessageBuilder) ExpiresTime(t uint64) MediaSharingMessageBuilder {
	b.hdr = b.hdr.withExpiresTime(t)
	return b
}

// MediaItemInlined adds an inlined media item
func (b MediaSharingMessageBuilder) MediaItemInlined(item MediaItemInlined) MediaSharingMessageBuilder {
	b.inlined = appendCopy(b.inlined, item)
	return b
}

// MediaItemReferenced adds a referenced media item
func (b MediaSharingMessageBuilder) MediaItemReferenced(item MediaItemReferenced) MediaSharingMessageBuilder {
	b.referenced = appendCopy(b.referenced, item)
	return b
}

// MediaItem adds an item of either kind. Nil items are ignored.
func (b MediaSharingMessageBuilder) MediaItem(item MediaItem) MediaSharingMessageBuilder {
	switch it := item.(type) {
	case MediaItemInlined:
		return b.MediaItemInlined(it)
	case MediaItemReferenced:
		return b.MediaItemReferenced(it)
	case *MediaItemInlined:
		if it != nil {
			return b.MediaItemInlined(*it)
		}
	case *MediaItemReferenced:
		if it != nil {
			return b.MediaItemReferenced(*it)
		}
	}
	return b
}

// items returns inlined items first, then referenced ones
func (b MediaSharingMessageBuilder) items() []MediaItem {
	items := make([]MediaItem, 0, len(b.inlined)+len(b.referenced))
	for _, it := range b.inlined {
		items = append(items, it)
	}
	for _, it := range b.referenced {
		items = append(items, it)
	}
	return items
}

// Build returns the finalized message, or ErrMissingMediaItem when no item of
// either kind was added. Body items and attachments list inlined items
// before referenced ones.
func (b MediaSharingMessageBuilder) Build() (*didcomm.Message, error) {
	items := b.items()
	if len(items) == 0 {
		return nil, ErrMissingMediaItem
	}

	bodyItems := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		bi, err := item.bodyItem()
		if err != nil {
			return nil, err
		}
		bodyItems = append(bodyItems, bi)
	}

	body, err := json.Marshal(struct {
		Items []json.RawMessage `json:"items"`
	}{bodyItems})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	mb := b.hdr.apply(didcomm.Build(b.hdr.messageID(), didcomm.TypeMediaSharing, body))
	for _, item := range items {
		mb = mb.Attachment(item.attachment())
	}

	return mb.Finalize(), nil
}
