package composer

import (
	"errors"
	"strings"

	"github.com/example/d7-messaging/internal/models"
)

// LegacyClientRef is the client reference the SMS-only integration sends.
const LegacyClientRef = "D7-AirTableSMS"

var errNilRequest = errors.New("composer: request is nil")

// Build turns a request into the wire payload for its channel. It performs no
// I/O and returns a fresh payload on every call.
func Build(req *models.ComposeRequest) (*models.OutboundPayload, error) {
	if req == nil {
		return nil, errNilRequest
	}
	channel, kind, err := Resolve(req)
	if err != nil {
		return nil, err
	}
	return buildShape(channel, kind, req)
}

func buildShape(channel models.Channel, kind ShapeKind, req *models.ComposeRequest) (*models.OutboundPayload, error) {
	if err := checkRequired(kind, req); err != nil {
		return nil, err
	}

	if kind == ShapeSMSText {
		return &models.OutboundPayload{Channel: channel, SMS: buildSMS(req)}, nil
	}

	content, err := buildContent(kind, req)
	if err != nil {
		return nil, err
	}
	return &models.OutboundPayload{
		Channel: channel,
		WhatsApp: &models.WhatsAppPayload{
			Messages: []models.WhatsAppMessage{{
				Originator: req.Originator,
				Content:    content,
				Recipients: WhatsAppRecipients(req.Recipients),
			}},
		},
	}, nil
}

// The SMS originator is always SignOTP; a request originator is ignored.
func buildSMS(req *models.ComposeRequest) *models.SMSPayload {
	return &models.SMSPayload{
		Messages: []models.SMSMessage{{
			Channel:    string(models.ChannelSMS),
			ClientRef:  req.ClientRef,
			Recipients: SplitRecipients(req.Recipients),
			Content:    req.Content,
			MsgType:    models.SMSMsgType,
			DataCoding: models.SMSDataCoding,
		}},
		MessageGlobals: models.SMSGlobals{Originator: models.SMSOriginator},
	}
}

func buildContent(kind ShapeKind, req *models.ComposeRequest) (models.WhatsAppContent, error) {
	switch kind {
	case ShapeText:
		return models.WhatsAppContent{
			MessageType: models.ContentTypeText,
			Text: &models.TextContent{
				PreviewURL: req.PreviewURLOrDefault(),
				Body:       req.MessageBody,
			},
		}, nil

	case ShapeAttachment:
		mediaType, err := ParseMediaType(req.MediaType)
		if err != nil {
			return models.WhatsAppContent{}, err
		}
		return models.WhatsAppContent{
			MessageType: models.ContentTypeAttachment,
			Attachment: &models.AttachmentContent{
				Type:    string(mediaType),
				URL:     req.MediaURL,
				Caption: req.MediaCaption,
			},
		}, nil

	case ShapeTemplate, ShapeTemplateMedia:
		tmpl := &models.TemplateContent{
			TemplateID:          req.TemplateID,
			Language:            languageOrDefault(req.Language),
			BodyParameterValues: BodyParameterValues(req.BodyParameters),
		}
		if kind == ShapeTemplateMedia {
			mediaType, err := ParseMediaType(req.MediaType)
			if err != nil {
				return models.WhatsAppContent{}, err
			}
			tmpl.Media = &models.TemplateMedia{
				MediaType: string(mediaType),
				MediaURL:  req.MediaURL,
			}
		}
		return models.WhatsAppContent{
			MessageType: models.ContentTypeTemplate,
			Template:    tmpl,
		}, nil
	}
	return models.WhatsAppContent{}, errors.New("composer: no whatsapp content for shape " + kind.String())
}

func languageOrDefault(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return models.DefaultLanguage
	}
	return lang
}
