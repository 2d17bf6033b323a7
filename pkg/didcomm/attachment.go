package didcomm

import (
	"encoding/json"
	"errors"
)

var (
	ErrMissingAttachmentData = errors.New("attachment data is required")
	ErrUnknownAttachmentData = errors.New("unknown attachment data variant")
)

// Attachment is an envelope-level attachment descriptor
type Attachment struct {
	ID          string         `json:"id,omitempty"`
	Description string         `json:"description,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	MediaType   string         `json:"media_type,omitempty"`
	Format      string         `json:"format,omitempty"`
	LastmodTime *uint64        `json:"lastmod_time,omitempty"`
	ByteCount   *uint64        `json:"byte_count,omitempty"`
	Data        AttachmentData `json:"data"`
}

// AttachmentData is one of Base64AttachmentData, LinksAttachmentData or
// JSONAttachmentData.
type AttachmentData interface {
	attachmentData()
}

// Base64AttachmentData carries inlined content
type Base64AttachmentData struct {
	Base64 string          `json:"base64"`
	JWS    json.RawMessage `json:"jws,omitempty"`
}

// LinksAttachmentData references content stored elsewhere
type LinksAttachmentData struct {
	Links []string        `json:"links"`
	Hash  string          `json:"hash"`
	JWS   json.RawMessage `json:"jws,omitempty"`
}

// JSONAttachmentData carries inlined JSON content
type JSONAttachmentData struct {
	JSON json.RawMessage `json:"json"`
	JWS  json.RawMessage `json:"jws,omitempty"`
}

func (Base64AttachmentData) attachmentData() {}
func (LinksAttachmentData) attachmentData()  {}
func (JSONAttachmentData) attachmentData()   {}

type attachmentAlias Attachment

// UnmarshalJSON picks the data variant from the keys present in "data"
func (a *Attachment) UnmarshalJSON(b []byte) error {
	aux := struct {
		*attachmentAlias
		Data json.RawMessage `json:"data"`
	}{attachmentAlias: (*attachmentAlias)(a)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	data, err := decodeAttachmentData(aux.Data)
	if err != nil {
		return err
	}
	a.Data = data

	return nil
}

func decodeAttachmentData(raw json.RawMessage) (AttachmentData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrMissingAttachmentData
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	switch {
	case fields["base64"] != nil:
		var d Base64AttachmentData
		err := json.Unmarshal(raw, &d)
		return d, err
	case fields["links"] != nil:
		var d LinksAttachmentData
		err := json.Unmarshal(raw, &d)
		return d, err
	case fields["json"] != nil:
		var d JSONAttachmentData
		err := json.Unmarshal(raw, &d)
		return d, err
	default:
		return nil, ErrUnknownAttachmentData
	}
}

// Validate checks that the attachment carries a known data variant
func (a *Attachment) Validate() error {
	switch d := a.Data.(type) {
	case nil:
		return ErrMissingAttachmentData
	case LinksAttachmentData:
		if len(d.Links) == 0 {
			return errors.New("links attachment requires at least one link")
		}
	case Base64AttachmentData, JSONAttachmentData:
	default:
		return ErrUnknownAttachmentData
	}
	return nil
}

func (a Attachment) clone() Attachment {
	if a.LastmodTime != nil {
		t := *a.LastmodTime
		a.LastmodTime = &t
	}
	if a.ByteCount != nil {
		n := *a.ByteCount
		a.ByteCount = &n
	}
	if d, ok := a.Data.(LinksAttachmentData); ok {
		d.Links = append([]string(nil), d.Links...)
		a.Data = d
	}
	return a
}
