// Package didcomm implements the DIDComm v2 plaintext message envelope.
//
// The package owns the wire shape of a message: the JSON field names, the
// "typ" media type and the attachment data variants. Higher level packages
// build envelopes through MessageBuilder and never assemble the JSON by hand.
//
// # Envelope Format
//
// A plaintext message is a JSON object with the following members:
//   - id: unique message identifier (required)
//   - typ: always "application/didcomm-plain+json"
//   - type: message type URI (required)
//   - body: message type specific payload (required)
//   - from, to: sender DID and recipient DIDs (optional)
//   - created_time, expires_time: Unix seconds (optional)
//   - attachments: list of attachments (optional)
//
// # Attachments
//
// Every attachment carries exactly one data variant:
//   - base64: inlined content
//   - links + hash: content stored elsewhere, with an integrity hash
//   - json: inlined JSON content
//
// # Usage Example
//
//	msg := didcomm.Build("message-id", "https://didcomm.org/basicmessage/2.0/message", body).
//	    From("did:example:alice").
//	    To("did:example:bob").
//	    CreatedTime(1700000000).
//	    Finalize()
//
//	data, err := json.Marshal(msg)
//
// # Security Considerations
//
// Plaintext messages are neither encrypted nor signed. They must be packed
// (signed and/or encrypted) before they leave the local trust boundary.
package didcomm
