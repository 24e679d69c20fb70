package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/piiguard/cmd/app/commands"
	"github.com/allisson/piiguard/internal/app"
	"github.com/allisson/piiguard/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate a new attribute encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Optional KMS key URI used to wrap the key (e.g., hashivault://mykey, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateEncryptionKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
