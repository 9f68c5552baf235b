package composer

import (
	"fmt"
	"strings"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
)

// Form field names as collected by hosts.
const (
	FieldChannel      = "channel"
	FieldMessageType  = "messageType"
	FieldOriginator   = "originator"
	FieldRecipients   = "recipients"
	FieldContent      = "content"
	FieldTemplateID   = "templateId"
	FieldLanguage     = "language"
	FieldMessageBody  = "messageBody"
	FieldPreviewURL   = "previewUrl"
	FieldMediaURL     = "mediaUrl"
	FieldMediaType    = "mediaType"
	FieldMediaCaption = "mediaCaption"
	FieldAPIKey       = "apiKey"
)

// ShapeKind is the closed set of payload shapes the builder can produce.
type ShapeKind int

const (
	ShapeSMSText ShapeKind = iota + 1
	ShapeTemplate
	ShapeTemplateMedia
	ShapeText
	ShapeAttachment
)

var shapeNames = map[ShapeKind]string{
	ShapeSMSText:       "sms_text",
	ShapeTemplate:      "template",
	ShapeTemplateMedia: "template_media",
	ShapeText:          "text",
	ShapeAttachment:    "attachment",
}

func (k ShapeKind) String() string {
	if name, ok := shapeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(k))
}

// Shapes lists every shape in declaration order.
func Shapes() []ShapeKind {
	return []ShapeKind{ShapeSMSText, ShapeTemplate, ShapeTemplateMedia, ShapeText, ShapeAttachment}
}

// RequiredFields returns the form fields a shape needs. The API key is
// required everywhere and is enforced by the credential resolver.
func RequiredFields(kind ShapeKind) []string {
	switch kind {
	case ShapeSMSText:
		return []string{FieldRecipients, FieldContent}
	case ShapeTemplate:
		return []string{FieldOriginator, FieldRecipients, FieldTemplateID}
	case ShapeTemplateMedia:
		return []string{FieldOriginator, FieldRecipients, FieldTemplateID, FieldMediaURL}
	case ShapeText:
		return []string{FieldOriginator, FieldRecipients, FieldMessageBody}
	case ShapeAttachment:
		return []string{FieldOriginator, FieldRecipients, FieldMediaURL}
	}
	return nil
}

// ParseChannel maps a form value to a Channel. Empty means the default.
func ParseChannel(raw string) (models.Channel, error) {
	switch v := models.Channel(strings.TrimSpace(raw)); v {
	case "":
		return models.DefaultChannel, nil
	case models.ChannelSMS, models.ChannelWhatsApp:
		return v, nil
	default:
		return "", common.NewInvalidParameter(FieldChannel, raw)
	}
}

// ParseMessageType maps a form value to a MessageType. Empty means the default.
func ParseMessageType(raw string) (models.MessageType, error) {
	switch v := models.MessageType(strings.TrimSpace(raw)); v {
	case "":
		return models.DefaultMessageType, nil
	case models.MessageTypeUtilityText, models.MessageTypeUtilityMedia,
		models.MessageTypeMarketingText, models.MessageTypeMarketingMedia,
		models.MessageTypeServiceText, models.MessageTypeServiceMedia:
		return v, nil
	default:
		return "", common.NewInvalidParameter(FieldMessageType, raw)
	}
}

// ParseMediaType maps a form value to a MediaType. Empty means the default.
func ParseMediaType(raw string) (models.MediaType, error) {
	switch v := models.MediaType(strings.TrimSpace(raw)); v {
	case "":
		return models.DefaultMediaType, nil
	case models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeDocument:
		return v, nil
	default:
		return "", common.NewInvalidParameter(FieldMediaType, raw)
	}
}

// SelectShape decides the payload shape. For SMS the message type is ignored.
func SelectShape(channel models.Channel, messageType models.MessageType) (ShapeKind, error) {
	switch channel {
	case models.ChannelSMS:
		return ShapeSMSText, nil
	case models.ChannelWhatsApp:
		switch messageType {
		case models.MessageTypeUtilityText, models.MessageTypeMarketingText:
			return ShapeTemplate, nil
		case models.MessageTypeUtilityMedia, models.MessageTypeMarketingMedia:
			return ShapeTemplateMedia, nil
		case models.MessageTypeServiceText:
			return ShapeText, nil
		case models.MessageTypeServiceMedia:
			return ShapeAttachment, nil
		default:
			return 0, common.NewInvalidParameter(FieldMessageType, string(messageType))
		}
	default:
		return 0, common.NewInvalidParameter(FieldChannel, string(channel))
	}
}

// Resolve parses the request's channel and message type and selects the shape.
func Resolve(req *models.ComposeRequest) (models.Channel, ShapeKind, error) {
	channel, err := ParseChannel(req.Channel)
	if err != nil {
		return "", 0, err
	}
	if channel == models.ChannelSMS {
		return channel, ShapeSMSText, nil
	}
	messageType, err := ParseMessageType(req.MessageType)
	if err != nil {
		return "", 0, err
	}
	kind, err := SelectShape(channel, messageType)
	if err != nil {
		return "", 0, err
	}
	return channel, kind, nil
}

func checkRequired(kind ShapeKind, req *models.ComposeRequest) error {
	for _, field := range RequiredFields(kind) {
		if strings.TrimSpace(fieldValue(req, field)) == "" {
			return common.NewMissingField(field)
		}
	}
	return nil
}

func fieldValue(req *models.ComposeRequest, field string) string {
	switch field {
	case FieldOriginator:
		return req.Originator
	case FieldRecipients:
		return req.Recipients
	case FieldContent:
		return req.Content
	case FieldTemplateID:
		return req.TemplateID
	case FieldMessageBody:
		return req.MessageBody
	case FieldMediaURL:
		return req.MediaURL
	}
	return ""
}
