package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"alpencams/internal/camsync"
)

func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync-cams",
		Usage: "Scrape webcam providers and regenerate the catalog file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path for the generated catalog JSON",
			},
		},
		Action: r.SyncCams,
	}
}

// SyncCams scrapes all providers, merges the results, and writes the catalog.
func (r *Runner) SyncCams(ctx context.Context, cmd *cli.Command) error {
	output := r.config.Scraper.OutputPath
	if cmd.String("output") != "" {
		output = cmd.String("output")
	}

	fetcher := camsync.NewFetcher(r.httpClient, r.config.Scraper.RequestsPerSec)
	syncer := camsync.NewSyncer(r.logger,
		camsync.NewPanomaxSource(fetcher, "", r.logger),
		camsync.NewBergfexSource(fetcher, "", r.config.Scraper.MaxBergfexCams, r.logger),
	)

	if err := syncer.Run(ctx, output); err != nil {
		return err
	}

	return r.writePlain("✓ Catalog written to %s\n", output)
}
