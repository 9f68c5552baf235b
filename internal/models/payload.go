package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Fixed wire values.
const (
	SMSOriginator     = "SignOTP"
	SMSMsgType        = "text"
	SMSDataCoding     = "text"
	RecipientTypeUser = "individual"

	ContentTypeText       = "TEXT"
	ContentTypeAttachment = "ATTACHMENT"
	ContentTypeTemplate   = "TEMPLATE"
)

// SMSPayload is the body POSTed to the SMS send endpoint.
type SMSPayload struct {
	Messages       []SMSMessage `json:"messages"`
	MessageGlobals SMSGlobals   `json:"message_globals"`
}

// SMSMessage is a single SMS message entry.
type SMSMessage struct {
	Channel    string   `json:"channel"`
	ClientRef  string   `json:"client_ref,omitempty"`
	Recipients []string `json:"recipients"`
	Content    string   `json:"content"`
	MsgType    string   `json:"msg_type"`
	DataCoding string   `json:"data_coding"`
}

// SMSGlobals carries values applied to every message in an SMS payload.
type SMSGlobals struct {
	Originator string `json:"originator"`
}

// WhatsAppPayload is the body POSTed to the WhatsApp send endpoint.
type WhatsAppPayload struct {
	Messages []WhatsAppMessage `json:"messages"`
}

// WhatsAppMessage is a single WhatsApp message entry.
type WhatsAppMessage struct {
	Originator string              `json:"originator"`
	Content    WhatsAppContent     `json:"content"`
	Recipients []WhatsAppRecipient `json:"recipients"`
}

// WhatsAppRecipient wraps a destination number.
type WhatsAppRecipient struct {
	Recipient     string `json:"recipient"`
	RecipientType string `json:"recipient_type"`
}

// WhatsAppContent is a tagged union keyed by MessageType. Exactly one of
// Text, Attachment or Template is set.
type WhatsAppContent struct {
	MessageType string             `json:"message_type"`
	Text        *TextContent       `json:"text,omitempty"`
	Attachment  *AttachmentContent `json:"attachment,omitempty"`
	Template    *TemplateContent   `json:"template,omitempty"`
}

// TextContent is a freeform service text.
type TextContent struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// AttachmentContent is a freeform service media message.
type AttachmentContent struct {
	Type    string `json:"type"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// TemplateContent references a provider-side template.
type TemplateContent struct {
	TemplateID          string            `json:"template_id"`
	Language            string            `json:"language"`
	BodyParameterValues map[string]string `json:"body_parameter_values"`
	Media               *TemplateMedia    `json:"media,omitempty"`
}

// TemplateMedia is the media header of a media template.
type TemplateMedia struct {
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
}

// OutboundPayload holds the payload for exactly one channel.
type OutboundPayload struct {
	Channel  Channel
	SMS      *SMSPayload
	WhatsApp *WhatsAppPayload
}

var errEmptyPayload = errors.New("outbound payload: no channel body set")

// Body returns the channel specific body.
func (p *OutboundPayload) Body() any {
	if p == nil {
		return nil
	}
	switch p.Channel {
	case ChannelSMS:
		if p.SMS != nil {
			return p.SMS
		}
	case ChannelWhatsApp:
		if p.WhatsApp != nil {
			return p.WhatsApp
		}
	}
	return nil
}

// MarshalJSON serialises the channel body only.
func (p *OutboundPayload) MarshalJSON() ([]byte, error) {
	body := p.Body()
	if body == nil {
		return nil, errEmptyPayload
	}
	return EncodeWire(body)
}

// EncodeWire serialises v the way request bodies go on the wire: no HTML
// escaping and no trailing newline.
func EncodeWire(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
