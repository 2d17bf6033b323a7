// Package messaging assembles DIDComm application messages.
//
// Three builders cover the supported message kinds:
//   - DirectMessageBuilder: basic text messages (basicmessage/2.0)
//   - KeySharingMessageBuilder: JWK sets (key-sharing/1.0)
//   - MediaSharingMessageBuilder: inlined or referenced media (media-sharing/1.0)
//
// Builders are values. Every setter returns an updated copy and leaves the
// receiver untouched, so a partially configured builder can be reused as a
// template:
//
//	base := messaging.NewDirectMessageBuilder().From("did:example:alice")
//	toBob, err := base.To("did:example:bob").Message("hi Bob").Build()
//	toCarol, err := base.To("did:example:carol").Message("hi Carol").Build()
//
// Build validates the kind specific content and returns either a finalized
// *didcomm.Message or one of the sentinel errors in errors.go, never both.
//
// Header fields shared by all builders:
//   - ID: defaults to a random UUIDv4 when not set
//   - To: appends a recipient, call order preserved
//   - From: last call wins
//   - CreatedTime / CreatedNow: Unix seconds, explicit or wall clock
//   - ExpiresTime: Unix seconds
//
// Media-sharing bodies reference their attachments through body items whose
// "@id" is freshly generated on every Build, so two builds of the same input
// differ in those ids.
package messaging
