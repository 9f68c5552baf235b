package models

// Channel identifies the top-level transport used for a send.
type Channel string

// Supported channels.
const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// MessageType selects the WhatsApp message variant. It is ignored for SMS.
type MessageType string

// Supported WhatsApp message types.
const (
	MessageTypeUtilityText    MessageType = "utilityText"
	MessageTypeUtilityMedia   MessageType = "utilityMedia"
	MessageTypeMarketingText  MessageType = "marketingText"
	MessageTypeMarketingMedia MessageType = "marketingMedia"
	MessageTypeServiceText    MessageType = "serviceText"
	MessageTypeServiceMedia   MessageType = "serviceMedia"
)

// MediaType enumerates the media kinds accepted by attachments and media templates.
type MediaType string

// Supported media types.
const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// Defaults applied when the corresponding form value is left empty.
const (
	DefaultChannel        = ChannelSMS
	DefaultMessageType    = MessageTypeUtilityText
	DefaultMediaType      = MediaTypeImage
	DefaultLanguage       = "en"
	DefaultCredentialName = "d7Api"
)

// BodyParameter is one key/value pair of a template's body parameters. The
// order of a []BodyParameter only matters when keys collide.
type BodyParameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ComposeRequest is the flat set of form parameters collected by a host. Only
// the fields required by the resolved channel and message type are read.
type ComposeRequest struct {
	RequestID      string          `json:"requestId,omitempty"`
	Channel        string          `json:"channel,omitempty"`
	MessageType    string          `json:"messageType,omitempty"`
	Originator     string          `json:"originator,omitempty"`
	Recipients     string          `json:"recipients"`
	Content        string          `json:"content,omitempty"`
	ClientRef      string          `json:"clientRef,omitempty"`
	TemplateID     string          `json:"templateId,omitempty"`
	Language       string          `json:"language,omitempty"`
	BodyParameters []BodyParameter `json:"bodyParameters,omitempty"`
	MessageBody    string          `json:"messageBody,omitempty"`
	PreviewURL     *bool           `json:"previewUrl,omitempty"`
	MediaURL       string          `json:"mediaUrl,omitempty"`
	MediaType      string          `json:"mediaType,omitempty"`
	MediaCaption   string          `json:"mediaCaption,omitempty"`
	APIKey         string          `json:"apiKey,omitempty"`
	CredentialName string          `json:"credential,omitempty"`
}

// PreviewURLOrDefault returns the preview flag, defaulting to true when unset.
func (r *ComposeRequest) PreviewURLOrDefault() bool {
	if r.PreviewURL == nil {
		return true
	}
	return *r.PreviewURL
}
