package camsync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"alpencams/internal/models"
)

// Source produces cameras from one webcam directory.
type Source interface {
	Cams(ctx context.Context) ([]models.Webcam, error)
}

// Syncer runs all sources and writes the merged catalog.
type Syncer struct {
	sources []Source
	logger  *log.Logger
}

// NewSyncer creates a Syncer over the given sources.
func NewSyncer(logger *log.Logger, sources ...Source) *Syncer {
	return &Syncer{sources: sources, logger: logger}
}

// Run fetches every source sequentially, merges the results, and writes the
// catalog JSON to outputPath.
func (s *Syncer) Run(ctx context.Context, outputPath string) error {
	var all []models.Webcam
	for _, source := range s.sources {
		cams, err := source.Cams(ctx)
		if err != nil {
			return err
		}
		all = append(all, cams...)
	}
	s.logger.Info("merging cameras", "total", len(all))

	all = DedupeURLs(all)
	s.logger.Info("deduped by url", "remaining", len(all))

	all = DedupeNamesAndSort(all)
	s.logger.Info("deduped names and sorted", "remaining", len(all))

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	s.logger.Info("wrote catalog", "path", outputPath, "cams", len(all))
	return nil
}

// DedupeURLs drops cameras whose stream URL was already seen, keeping the first.
func DedupeURLs(cams []models.Webcam) []models.Webcam {
	seen := make(map[string]bool, len(cams))
	var out []models.Webcam
	for _, cam := range cams {
		if seen[cam.URL] {
			continue
		}
		seen[cam.URL] = true
		out = append(out, cam)
	}
	return out
}

// DedupeNamesAndSort disambiguates duplicate names with numeric suffixes
// ("Name 2", "Name 3", ...) and sorts the result by name.
func DedupeNamesAndSort(cams []models.Webcam) []models.Webcam {
	counts := make(map[string]int, len(cams))
	for i := range cams {
		name := cams[i].Name
		counts[name]++
		if counts[name] > 1 {
			cams[i].Name = fmt.Sprintf("%s %d", name, counts[name])
		}
	}

	sort.Slice(cams, func(i, j int) bool {
		return cams[i].Name < cams[j].Name
	})
	return cams
}
