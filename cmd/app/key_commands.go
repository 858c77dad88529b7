package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clio-platform/clio/cmd/app/commands"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-field-key",
			Usage: "Generate a new 256-bit field encryption key",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				// No configuration needed: this is how the first key is obtained.
				return commands.RunGenerateFieldKey(commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
		{
			Name:  "encrypt-field",
			Usage: "Encrypt a value with the configured field key and print the envelope",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Plaintext to encrypt",
				},
				&cli.BoolFlag{
					Name:  "json",
					Value: false,
					Usage: "Treat the value as a JSON document",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				encryptor, err := container.FieldEncryptor()
				if err != nil {
					return err
				}

				return commands.RunEncryptField(
					encryptor,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("value"),
					cmd.Bool("json"),
				)
			},
		},
		{
			Name:  "decrypt-field",
			Usage: "Decrypt an envelope with the configured field key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "envelope",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Envelope JSON as stored in the database",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				encryptor, err := container.FieldEncryptor()
				if err != nil {
					return err
				}

				return commands.RunDecryptField(
					encryptor,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("envelope"),
					cmd.String("format"),
				)
			},
		},
	}
}
