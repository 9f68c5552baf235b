package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/example/d7-messaging/internal/composer"
)

func shapesCommand() *cli.Command {
	return &cli.Command{
		Name:  "shapes",
		Usage: "list payload shapes and the fields each one requires",
		Action: func(c *cli.Context) error {
			for _, kind := range composer.Shapes() {
				if _, err := fmt.Fprintf(c.App.Writer, "%-15s %s\n", kind, strings.Join(composer.RequiredFields(kind), ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
