package didcomm

// PlaintextMediaType is the "typ" header of unsigned, unencrypted messages.
const PlaintextMediaType = "application/didcomm-plain+json"

// Well-known message type URIs
const (
	TypeBasicMessage = "https://didcomm.org/basicmessage/2.0/message"
	TypeKeySharing   = "https://didcomm.org/key-sharing/1.0/send-keys"
	TypeMediaSharing = "https://didcomm.org/media-sharing/1.0/share-media"
)
