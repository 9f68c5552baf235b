package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/example/d7-messaging/internal/config"
	"github.com/example/d7-messaging/internal/httpapi"
	"github.com/example/d7-messaging/internal/logger"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fail("config load", err)
			}
			log, err := newLogger(cfg, "d7msg-http")
			if err != nil {
				return fail("logger init", err)
			}
			rt, err := buildRuntime(cfg, log)
			if err != nil {
				return fail("runtime init", err)
			}
			defer rt.shutdown()

			h, err := httpapi.NewHandler(rt.composer, cfg.HTTP.BodyMaxBytes, logger.Component(log, "", "http-handler"))
			if err != nil {
				return fail("http handler init", err)
			}
			router := httpapi.NewRouter(h, cfg.HTTP.CORSAllowedOrigins)
			return httpapi.Serve(c.Context, fmt.Sprintf(":%d", cfg.App.Port), router, log)
		},
	}
}
