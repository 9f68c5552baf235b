package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "d7msg",
		Usage: "compose and send SMS and WhatsApp messages through D7 Networks",
		Commands: []*cli.Command{
			sendCommand(),
			shapesCommand(),
			serveCommand(),
			workerCommand(),
		},
	}
}
