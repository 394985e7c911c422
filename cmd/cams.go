package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func camsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cams",
		Usage: "Browse the webcam catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog cameras, optionally filtered",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CamsList,
			},
			{
				Name:  "random",
				Usage: "Pick random cameras from the catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of cameras to pick",
						Value:   9,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CamsRandom,
			},
		},
	}
}

// CamsList prints catalog cameras matching an optional query.
func (r *Runner) CamsList(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")

	cams := r.catalog.All()
	if query != "" {
		cams = r.catalog.Search(query)
	}

	if cmd.Bool("json") {
		return r.writeJSON(cams, true)
	}

	for _, cam := range cams {
		r.writePlain("%3d  %-45s %s\n", cam.ID, cam.Name, cam.Provider)
	}
	r.writePlain("%d cameras\n", len(cams))
	return nil
}

// CamsRandom prints a random pick of catalog cameras.
func (r *Runner) CamsRandom(ctx context.Context, cmd *cli.Command) error {
	cams := r.catalog.Random(int(cmd.Int("count")))

	if cmd.Bool("json") {
		return r.writeJSON(cams, true)
	}

	for _, cam := range cams {
		r.writePlain("%3d  %-45s %s\n", cam.ID, cam.Name, cam.Provider)
	}
	return nil
}
