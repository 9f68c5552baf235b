package composer

import (
	"errors"
	"reflect"
	"testing"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/models"
)

func TestSelectShape(t *testing.T) {
	cases := []struct {
		channel     models.Channel
		messageType models.MessageType
		want        ShapeKind
	}{
		{models.ChannelSMS, "", ShapeSMSText},
		{models.ChannelSMS, models.MessageTypeServiceMedia, ShapeSMSText},
		{models.ChannelSMS, "nonsense", ShapeSMSText},
		{models.ChannelWhatsApp, models.MessageTypeUtilityText, ShapeTemplate},
		{models.ChannelWhatsApp, models.MessageTypeMarketingText, ShapeTemplate},
		{models.ChannelWhatsApp, models.MessageTypeUtilityMedia, ShapeTemplateMedia},
		{models.ChannelWhatsApp, models.MessageTypeMarketingMedia, ShapeTemplateMedia},
		{models.ChannelWhatsApp, models.MessageTypeServiceText, ShapeText},
		{models.ChannelWhatsApp, models.MessageTypeServiceMedia, ShapeAttachment},
	}

	for _, tc := range cases {
		got, err := SelectShape(tc.channel, tc.messageType)
		if err != nil {
			t.Fatalf("SelectShape(%s, %s) error: %v", tc.channel, tc.messageType, err)
		}
		if got != tc.want {
			t.Fatalf("SelectShape(%s, %s) = %s, want %s", tc.channel, tc.messageType, got, tc.want)
		}
	}
}

func TestSelectShapeRejectsUnknownValues(t *testing.T) {
	_, err := SelectShape("telegram", models.MessageTypeServiceText)
	assertInvalid(t, err, FieldChannel)

	_, err = SelectShape(models.ChannelWhatsApp, "serviceAudio")
	assertInvalid(t, err, FieldMessageType)
}

func TestResolveDefaults(t *testing.T) {
	channel, kind, err := Resolve(&models.ComposeRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channel != models.ChannelSMS || kind != ShapeSMSText {
		t.Fatalf("expected sms defaults, got %s/%s", channel, kind)
	}

	channel, kind, err = Resolve(&models.ComposeRequest{Channel: "whatsapp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channel != models.ChannelWhatsApp || kind != ShapeTemplate {
		t.Fatalf("expected whatsapp utilityText default, got %s/%s", channel, kind)
	}
}

func TestResolveIgnoresMessageTypeForSMS(t *testing.T) {
	_, kind, err := Resolve(&models.ComposeRequest{Channel: "sms", MessageType: "bogus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != ShapeSMSText {
		t.Fatalf("expected sms shape, got %s", kind)
	}
}

func TestResolveRejectsUnknownValues(t *testing.T) {
	_, _, err := Resolve(&models.ComposeRequest{Channel: "SMS"})
	assertInvalid(t, err, FieldChannel)

	_, _, err = Resolve(&models.ComposeRequest{Channel: "whatsapp", MessageType: "UtilityText"})
	assertInvalid(t, err, FieldMessageType)
}

func TestParseMediaType(t *testing.T) {
	for _, v := range []string{"image", "video", "document"} {
		got, err := ParseMediaType(v)
		if err != nil || string(got) != v {
			t.Fatalf("ParseMediaType(%q) = %q, %v", v, got, err)
		}
	}
	if got, err := ParseMediaType(""); err != nil || got != models.MediaTypeImage {
		t.Fatalf("expected image default, got %q, %v", got, err)
	}
	_, err := ParseMediaType("audio")
	assertInvalid(t, err, FieldMediaType)
}

func TestRequiredFields(t *testing.T) {
	want := map[ShapeKind][]string{
		ShapeSMSText:       {"recipients", "content"},
		ShapeTemplate:      {"originator", "recipients", "templateId"},
		ShapeTemplateMedia: {"originator", "recipients", "templateId", "mediaUrl"},
		ShapeText:          {"originator", "recipients", "messageBody"},
		ShapeAttachment:    {"originator", "recipients", "mediaUrl"},
	}
	for _, kind := range Shapes() {
		if got := RequiredFields(kind); !reflect.DeepEqual(got, want[kind]) {
			t.Fatalf("RequiredFields(%s) = %v, want %v", kind, got, want[kind])
		}
	}
	if RequiredFields(ShapeKind(99)) != nil {
		t.Fatalf("expected nil for unknown shape")
	}
}

func TestShapeKindString(t *testing.T) {
	if ShapeTemplateMedia.String() != "template_media" {
		t.Fatalf("unexpected name %q", ShapeTemplateMedia.String())
	}
	if ShapeKind(42).String() != "shape(42)" {
		t.Fatalf("unexpected name %q", ShapeKind(42).String())
	}
}

func assertInvalid(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, common.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter error, got %v", err)
	}
	if got := common.FieldOf(err); got != field {
		t.Fatalf("expected field %q, got %q", field, got)
	}
}

func assertMissing(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, common.ErrMissingField) {
		t.Fatalf("expected missing field error, got %v", err)
	}
	if got := common.FieldOf(err); got != field {
		t.Fatalf("expected field %q, got %q", field, got)
	}
}
