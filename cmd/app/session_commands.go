package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/clio-platform/clio/cmd/app/commands"
)

func getSessionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-session",
			Usage: "Create a session for API testing and print its token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Username the session belongs to",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role recorded in the session",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.SessionUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueSession(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("username"),
					cmd.String("role"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-sessions",
			Usage: "Revoke the sessions of one user, or every session when no user is given",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "username",
					Aliases: []string{"u"},
					Usage:   "Only revoke this user's sessions",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.SessionUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeSessions(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("username"),
					cmd.String("format"),
				)
			},
		},
	}
}
