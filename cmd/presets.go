package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"alpencams/internal/formatter"
	"alpencams/internal/share"
	"alpencams/internal/shared"
)

func presetsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "presets",
		Aliases: []string{"p"},
		Usage:   "Manage webcam presets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List presets and the current selection",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PresetsList,
			},
			{
				Name:  "create",
				Usage: "Create a preset and select it",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.PresetsCreate,
			},
			{
				Name:  "remove",
				Usage: "Delete a preset by id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.PresetsRemove,
			},
			{
				Name:  "select",
				Usage: "Switch the selected preset",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.PresetsSelect,
			},
			{
				Name:  "toggle",
				Usage: "Add or remove a camera (by name) in the selected preset",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.PresetsToggle,
			},
			{
				Name:  "export",
				Usage: "Export presets as JSON, or the selected preset as CSV/Markdown/text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, md, txt",
						Value:   "json",
					},
				},
				Action: r.PresetsExport,
			},
			{
				Name:  "import",
				Usage: "Import presets from a JSON file, replacing existing ones",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Action: r.PresetsImport,
			},
			{
				Name:  "share",
				Usage: "Print a shareable link for the selected preset",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Base URL for the link",
						Value: "https://alpencams.example",
					},
				},
				Action: r.PresetsShare,
			},
		},
	}
}

// PresetsList prints all presets, marking the selected one.
func (r *Runner) PresetsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.initEngine(ctx); err != nil {
		return err
	}

	all := r.engine.Presets()
	settings := r.engine.Settings()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"presets":  all,
			"settings": settings,
		}, true)
	}

	for _, p := range all {
		marker := " "
		if p.ID == settings.SelectedPreset {
			marker = "●"
		}
		r.writePlain("%s %s  %s (%d cams)\n", marker, p.ID, p.Name, len(p.Cams))
	}
	return nil
}

// PresetsCreate creates and selects a new preset.
func (r *Runner) PresetsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: preset name is required", shared.ErrMissingArgument)
	}

	if err := r.initEngine(ctx); err != nil {
		return err
	}

	preset, err := r.engine.CreatePreset(ctx, name)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Created and selected %q (%s)\n", preset.Name, preset.ID)
}

// PresetsRemove deletes a preset.
func (r *Runner) PresetsRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: preset id is required", shared.ErrMissingArgument)
	}

	if err := r.initEngine(ctx); err != nil {
		return err
	}

	if err := r.engine.RemovePreset(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Removed preset %s\n", id)
}

// PresetsSelect switches the selected preset.
func (r *Runner) PresetsSelect(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: preset id is required", shared.ErrMissingArgument)
	}

	if err := r.initEngine(ctx); err != nil {
		return err
	}

	if err := r.engine.SwitchPreset(ctx, id); err != nil {
		return err
	}

	selected, _ := r.engine.Selected()
	return r.writePlain("✓ Selected %q (%d cams)\n", selected.Name, len(selected.Cams))
}

// PresetsToggle adds or removes a catalog camera in the selected preset.
func (r *Runner) PresetsToggle(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: camera name is required", shared.ErrMissingArgument)
	}

	if err := r.initEngine(ctx); err != nil {
		return err
	}

	cam, ok := r.catalog.ByName(name)
	if !ok {
		return fmt.Errorf("%w: camera %q not in catalog", shared.ErrNotFound, name)
	}

	if err := r.engine.ToggleWebcam(ctx, cam); err != nil {
		return err
	}

	selected, _ := r.engine.Selected()
	return r.writePlain("✓ %q now has %d cams\n", selected.Name, len(selected.Cams))
}

// PresetsExport writes all presets as JSON, or the selected preset in a
// human-readable format.
func (r *Runner) PresetsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.initEngine(ctx); err != nil {
		return err
	}

	output := cmd.String("output")
	format := cmd.String("format")

	if format != "json" {
		selected, ok := r.engine.Selected()
		if !ok {
			return fmt.Errorf("%w: no preset selected", shared.ErrNotFound)
		}

		var path string
		var err error
		switch format {
		case "csv":
			path, err = formatter.WriteCSVExport(selected, output)
		case "md":
			path, err = formatter.WriteMarkdownExport(selected, output)
		case "txt":
			path, err = formatter.WriteTextExport(selected, output)
		default:
			return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
		}
		if err != nil {
			return err
		}

		return r.writePlain("✓ Exported %q to %s\n", selected.Name, path)
	}

	entities, err := r.engine.ExportPresets(ctx)
	if err != nil {
		return err
	}

	if output == "" {
		return r.writeJSON(entities, true)
	}

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	r.logger.Info("presets exported", "path", output, "count", len(entities))
	return r.writePlain("✓ Exported %d presets to %s\n", len(entities), output)
}

// PresetsImport replaces all presets with the contents of a JSON file.
func (r *Runner) PresetsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: import file path is required", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	if err := r.initEngine(ctx); err != nil {
		return err
	}

	if err := r.engine.ImportPresets(ctx, data); err != nil {
		return err
	}

	return r.writePlain("✓ Imported presets from %s\n", path)
}

// PresetsShare prints a share link encoding the selected preset's cameras.
func (r *Runner) PresetsShare(ctx context.Context, cmd *cli.Command) error {
	if err := r.initEngine(ctx); err != nil {
		return err
	}

	selected, ok := r.engine.Selected()
	if !ok {
		return fmt.Errorf("%w: no preset selected", shared.ErrNotFound)
	}

	link, err := share.Link(cmd.String("base-url"), selected.Cams)
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", link)
}
