package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
)

// Replaced in tests.
var (
	now   = time.Now
	newID = uuid.NewString
)

// header holds the fields every message kind shares. Its methods return
// updated copies.
type header struct {
	id          *string
	to          []string
	from        *string
	createdTime *uint64
	expiresTime *uint64
}

func (h header) withID(id string) header {
	h.id = &id
	return h
}

func (h header) withTo(did string) header {
	h.to = appendCopy(h.to, did)
	return h
}

func (h header) withFrom(did string) header {
	h.from = &did
	return h
}

func (h header) withCreatedTime(t uint64) header {
	h.createdTime = &t
	return h
}

func (h header) withCreatedNow() header {
	return h.withCreatedTime(uint64(now().Unix()))
}

func (h header) withExpiresTime(t uint64) header {
	h.expiresTime = &t
	return h
}

// messageID returns the configured id or a fresh UUIDv4
func (h header) messageID() string {
	if h.id != nil {
		return *h.id
	}
	return newID()
}

// apply merges the header into an envelope in the fixed order recipients,
// sender, created time, expires time. Unset fields are skipped.
func (h header) apply(b *didcomm.MessageBuilder) *didcomm.MessageBuilder {
	for _, to := range h.to {
		b = b.To(to)
	}

	if h.from != nil {
		b = b.From(*h.from)
	}

	if h.createdTime != nil {
		b = b.CreatedTime(*h.createdTime)
	}

	if h.expiresTime != nil {
		b = b.ExpiresTime(*h.expiresTime)
	}

	return b
}

// appendCopy appends v to a copy of s so builder values never share a
// backing array.
func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}
