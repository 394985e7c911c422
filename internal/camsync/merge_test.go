package camsync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"alpencams/internal/models"
	"alpencams/internal/shared"
	tu "alpencams/internal/testing"
)

func TestDedupeURLs(t *testing.T) {
	cams := []models.Webcam{
		{Name: "A", URL: "https://example.com/1"},
		{Name: "B", URL: "https://example.com/2"},
		{Name: "C", URL: "https://example.com/1"},
	}

	out := DedupeURLs(cams)
	if len(out) != 2 {
		t.Fatalf("expected 2 cams, got %d", len(out))
	}
	if out[0].Name != "A" || out[1].Name != "B" {
		t.Errorf("expected first occurrence kept, got %+v", out)
	}
}

func TestDedupeNamesAndSort(t *testing.T) {
	t.Run("suffixes duplicate names", func(t *testing.T) {
		cams := []models.Webcam{
			{Name: "Achensee", URL: "u1"},
			{Name: "Achensee", URL: "u2"},
			{Name: "Achensee", URL: "u3"},
		}

		out := DedupeNamesAndSort(cams)
		want := []string{"Achensee", "Achensee 2", "Achensee 3"}
		for i, name := range want {
			if out[i].Name != name {
				t.Errorf("cam %d: expected %q, got %q", i, name, out[i].Name)
			}
		}
	})

	t.Run("sorts by name", func(t *testing.T) {
		cams := []models.Webcam{
			{Name: "Zell am See"},
			{Name: "Achensee"},
			{Name: "Eng"},
		}

		out := DedupeNamesAndSort(cams)
		if out[0].Name != "Achensee" || out[2].Name != "Zell am See" {
			t.Errorf("expected sorted output, got %+v", out)
		}
	})
}

// stubSource returns fixed cams or an error.
type stubSource struct {
	cams []models.Webcam
	err  error
}

func (s stubSource) Cams(ctx context.Context) ([]models.Webcam, error) {
	return s.cams, s.err
}

func TestSyncerRun(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("merges sources and writes the catalog", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "cams.json")

		syncer := NewSyncer(logger,
			stubSource{cams: []models.Webcam{
				{Name: "Achensee", URL: "https://example.com/1", Provider: "panomax"},
				{Name: "Eng", URL: "https://example.com/2", Provider: "panomax"},
			}},
			stubSource{cams: []models.Webcam{
				{Name: "Achensee", URL: "https://example.com/1", Provider: "bergfex"}, // same stream
				{Name: "Achensee", URL: "https://example.com/3", Provider: "bergfex"},
			}},
		)

		if err := syncer.Run(ctx, out); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		tu.AssertFileExists(t, out)

		var cams []models.Webcam
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, out)), &cams); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(cams) != 3 {
			t.Fatalf("expected 3 cams, got %d", len(cams))
		}

		var names []string
		for _, cam := range cams {
			names = append(names, cam.Name)
		}
		joined := strings.Join(names, ",")
		if joined != "Achensee,Achensee 2,Eng" {
			t.Errorf("unexpected names: %s", joined)
		}
	})

	t.Run("source failure aborts the run", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "cams.json")

		boom := errors.New("provider down")
		syncer := NewSyncer(logger, stubSource{err: boom})

		if err := syncer.Run(ctx, out); !errors.Is(err, boom) {
			t.Fatalf("expected source error, got %v", err)
		}
	})
}
