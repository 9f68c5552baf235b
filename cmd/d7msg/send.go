package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	common "github.com/example/d7-messaging/internal/adapters/common"
	"github.com/example/d7-messaging/internal/composer"
	"github.com/example/d7-messaging/internal/config"
	"github.com/example/d7-messaging/internal/models"
	"github.com/example/d7-messaging/internal/util"
)

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "send one message and print the provider response row",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "channel", Value: string(models.DefaultChannel), Usage: "sms or whatsapp"},
			&cli.StringFlag{Name: "message-type", Value: string(models.DefaultMessageType), Usage: "whatsapp message type"},
			&cli.StringFlag{Name: "originator", Usage: "whatsapp sender number"},
			&cli.StringFlag{Name: "recipients", Usage: "comma separated destination numbers"},
			&cli.StringFlag{Name: "content", Usage: "sms text"},
			&cli.StringFlag{Name: "client-ref", Usage: "sms client reference (legacy integration: " + composer.LegacyClientRef + ")"},
			&cli.StringFlag{Name: "template-id", Usage: "whatsapp template id"},
			&cli.StringFlag{Name: "language", Value: models.DefaultLanguage, Usage: "template language"},
			&cli.StringSliceFlag{Name: "param", Usage: "template body parameter key=value, repeatable"},
			&cli.StringFlag{Name: "message-body", Usage: "whatsapp service text body"},
			&cli.BoolFlag{Name: "preview-url", Value: true, Usage: "render url previews in service text"},
			&cli.StringFlag{Name: "media-url", Usage: "media url"},
			&cli.StringFlag{Name: "media-type", Value: string(models.DefaultMediaType), Usage: "image, video or document"},
			&cli.StringFlag{Name: "media-caption", Usage: "service media caption"},
			&cli.StringFlag{Name: "api-key", EnvVars: []string{"D7_API_KEY"}, Usage: "D7 API key"},
			&cli.StringFlag{Name: "credential", Usage: "credential name for store backed sources"},
		},
		Action: runSend,
	}
}

func runSend(c *cli.Context) error {
	req, err := requestFromFlags(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	cfg, err := config.Load()
	if err != nil {
		return fail("config load", err)
	}
	log, err := newLogger(cfg, "d7msg-send")
	if err != nil {
		return fail("logger init", err)
	}
	rt, err := buildRuntime(cfg, log)
	if err != nil {
		return fail("runtime init", err)
	}
	defer rt.shutdown()

	row, err := rt.composer.Send(c.Context, req)
	if err != nil {
		code := 1
		switch common.Classify(err) {
		case models.ErrorKindMissingField, models.ErrorKindInvalidParameter:
			code = 2
		}
		return cli.Exit(err.Error(), code)
	}

	out, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func requestFromFlags(c *cli.Context) (*models.ComposeRequest, error) {
	req := &models.ComposeRequest{
		RequestID:      util.NewRequestID(),
		Channel:        c.String("channel"),
		MessageType:    c.String("message-type"),
		Originator:     c.String("originator"),
		Recipients:     c.String("recipients"),
		Content:        c.String("content"),
		ClientRef:      c.String("client-ref"),
		TemplateID:     c.String("template-id"),
		Language:       c.String("language"),
		MessageBody:    c.String("message-body"),
		MediaURL:       c.String("media-url"),
		MediaType:      c.String("media-type"),
		MediaCaption:   c.String("media-caption"),
		APIKey:         c.String("api-key"),
		CredentialName: c.String("credential"),
	}
	if c.IsSet("preview-url") {
		preview := c.Bool("preview-url")
		req.PreviewURL = &preview
	}
	for _, pair := range c.StringSlice("param") {
		key, value, err := util.ParseKeyValue(pair)
		if err != nil {
			return nil, err
		}
		req.BodyParameters = append(req.BodyParameters, models.BodyParameter{Key: key, Value: value})
	}
	return req, nil
}
