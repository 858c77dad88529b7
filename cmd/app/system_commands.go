package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clio-platform/clio/cmd/app/commands"
	"github.com/clio-platform/clio/internal/config"
	logSecretsUseCase "github.com/clio-platform/clio/internal/logsecrets/usecase"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the API and metrics servers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, config.Load(), version)
			},
		},
		{
			Name:  "encrypt-legacy-secrets",
			Usage: "Encrypt log secrets still stored as plaintext",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   logSecretsUseCase.DefaultBatchSize,
					Usage:   "Rows encrypted per transaction",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.LogSecretsUseCase()
				if err != nil {
					return err
				}

				return commands.RunEncryptLegacySecrets(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("batch-size")),
					cmd.String("format"),
				)
			},
		},
	}
}
