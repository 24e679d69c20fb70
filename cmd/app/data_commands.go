package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/piiguard/cmd/app/commands"
	"github.com/allisson/piiguard/internal/app"
	"github.com/allisson/piiguard/internal/config"
)

func getDataCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt-legacy-data",
			Usage: "Encrypt and index sensitive attributes stored before encryption was enabled",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Report what would be resealed without writing",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   0,
					Usage:   "Rows read per batch (defaults to LEGACY_BATCH_SIZE)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				if _, err := container.KeyProvider().Key(ctx); err != nil {
					return err
				}

				legacyUseCase, err := container.LegacyUseCase()
				if err != nil {
					return err
				}

				batchSize := int(cmd.Int("batch-size"))
				if batchSize == 0 {
					batchSize = cfg.LegacyBatchSize
				}

				return commands.RunEncryptLegacyData(
					ctx,
					legacyUseCase,
					container.Logger(),
					cmd.Root().Writer,
					cmd.Bool("dry-run"),
					batchSize,
					cmd.String("format"),
				)
			},
		},
	}
}
