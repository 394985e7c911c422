package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"alpencams/internal/models"
	"alpencams/internal/shared"
)

func setupLocalRepo(t *testing.T) (*LocalRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.json")
	return NewLocalRepository(NewFileStore(path)), path
}

func TestFileStore(t *testing.T) {
	t.Run("missing file reads as empty", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "local.json"))

		_, ok, err := store.Get("presets")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok {
			t.Error("expected missing key")
		}
	})

	t.Run("values survive reopening the store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "local.json")

		store := NewFileStore(path)
		if err := store.Set("visited", "1"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		reopened := NewFileStore(path)
		v, ok, err := reopened.Get("visited")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || v != "1" {
			t.Errorf("expected visited=1, got %q ok=%v", v, ok)
		}
	})

	t.Run("Remove deletes the key", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "local.json"))
		if err := store.Set("selectedPreset", "p1"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := store.Remove("selectedPreset"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, ok, _ := store.Get("selectedPreset"); ok {
			t.Error("expected key removed")
		}
		if err := store.Remove("selectedPreset"); err != nil {
			t.Errorf("expected removing an absent key to be a no-op, got %v", err)
		}
	})

	t.Run("corrupt file fails loudly", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "local.json")
		if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		store := NewFileStore(path)
		if _, _, err := store.Get("presets"); err == nil {
			t.Error("expected Get on a corrupt store to fail")
		}
	})
}

func TestLocalRepositoryPresets(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store loads nil", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		presets, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("LoadPresets failed: %v", err)
		}
		if presets != nil {
			t.Errorf("expected nil, got %+v", presets)
		}
	})

	t.Run("AddPreset then LoadPresets round trips", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		entity := models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{"Achensee"}}
		if err := repo.AddPreset(ctx, entity); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		presets, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("LoadPresets failed: %v", err)
		}
		if len(presets) != 1 || presets[0].ID != "p1" || len(presets[0].CamIDs) != 1 {
			t.Errorf("unexpected presets: %+v", presets)
		}
	})

	t.Run("AddPreset rejects duplicate ids", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		entity := models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}
		if err := repo.AddPreset(ctx, entity); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}
		if err := repo.AddPreset(ctx, entity); !errors.Is(err, shared.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("SavePresets replaces the whole set", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}
		replacement := []models.PresetEntity{{ID: "p2", Name: "Evenings", CamIDs: []string{}}}
		if err := repo.SavePresets(ctx, replacement); err != nil {
			t.Fatalf("SavePresets failed: %v", err)
		}

		presets, _ := repo.LoadPresets(ctx)
		if len(presets) != 1 || presets[0].ID != "p2" {
			t.Errorf("unexpected presets: %+v", presets)
		}
	})

	t.Run("DeletePreset is a no-op for absent ids", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)
		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		if err := repo.DeletePreset(ctx, "ghost"); err != nil {
			t.Fatalf("DeletePreset failed: %v", err)
		}
		if err := repo.DeletePreset(ctx, "p1"); err != nil {
			t.Fatalf("DeletePreset failed: %v", err)
		}
		presets, _ := repo.LoadPresets(ctx)
		if len(presets) != 0 {
			t.Errorf("expected empty set, got %+v", presets)
		}
	})

	t.Run("cam mutations keep insertion order and first-occurrence removal", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)
		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		for _, name := range []string{"Achensee", "Eng", "Achensee"} {
			if err := repo.AddCamToPreset(ctx, "p1", name); err != nil {
				t.Fatalf("AddCamToPreset failed: %v", err)
			}
		}
		if err := repo.RemoveCamFromPreset(ctx, "p1", "Achensee"); err != nil {
			t.Fatalf("RemoveCamFromPreset failed: %v", err)
		}

		presets, _ := repo.LoadPresets(ctx)
		want := []string{"Eng", "Achensee"}
		got := presets[0].CamIDs
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("cam mutations fail for unknown presets", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		if err := repo.AddCamToPreset(ctx, "ghost", "Achensee"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeletePresets clears storage", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)
		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		if err := repo.DeletePresets(ctx); err != nil {
			t.Fatalf("DeletePresets failed: %v", err)
		}
		presets, _ := repo.LoadPresets(ctx)
		if presets != nil {
			t.Errorf("expected nil after clear, got %+v", presets)
		}
	})
}

func TestLocalRepositoryLegacyMigration(t *testing.T) {
	ctx := context.Background()

	t.Run("legacy shape migrates on load and persists", func(t *testing.T) {
		repo, path := setupLocalRepo(t)

		legacy := `[{"id": "p1", "name": "Mornings", "cams": [{"name": "Achensee"}, {"name": "Eng"}]}]`
		store := NewFileStore(path)
		if err := store.Set("presets", legacy); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		presets, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("LoadPresets failed: %v", err)
		}
		if len(presets) != 1 {
			t.Fatalf("expected 1 preset, got %d", len(presets))
		}
		got := presets[0].CamIDs
		if len(got) != 2 || got[0] != "Achensee" || got[1] != "Eng" {
			t.Errorf("expected cam names extracted, got %v", got)
		}

		// A second load must read the rewritten shape, not re-migrate.
		again, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("second LoadPresets failed: %v", err)
		}
		if len(again) != 1 || len(again[0].CamIDs) != 2 {
			t.Errorf("unexpected presets after migration: %+v", again)
		}
	})

	t.Run("unparseable stored presets fail loudly", func(t *testing.T) {
		repo, path := setupLocalRepo(t)

		store := NewFileStore(path)
		if err := store.Set("presets", "{broken"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		if _, err := repo.LoadPresets(ctx); !errors.Is(err, shared.ErrBackendUnavailable) {
			t.Fatalf("expected ErrBackendUnavailable, got %v", err)
		}

		// The stored bytes survive the failed load untouched.
		raw, ok, err := store.Get("presets")
		if err != nil || !ok || raw != "{broken" {
			t.Errorf("expected stored data preserved, got %q (ok=%v, err=%v)", raw, ok, err)
		}
	})
}

func TestLocalRepositorySettings(t *testing.T) {
	ctx := context.Background()

	t.Run("zero value before anything is stored", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		settings, err := repo.LoadSettings(ctx)
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if settings.SelectedPreset != "" || settings.Visited {
			t.Errorf("expected zero settings, got %+v", settings)
		}
	})

	t.Run("settings round trip", func(t *testing.T) {
		repo, _ := setupLocalRepo(t)

		want := models.UserSettings{SelectedPreset: models.DefaultPresetID, Visited: true}
		if err := repo.SaveSettings(ctx, want); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}

		settings, err := repo.LoadSettings(ctx)
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if settings != want {
			t.Errorf("expected %+v, got %+v", want, settings)
		}
	})

	t.Run("empty selection removes its key", func(t *testing.T) {
		repo, path := setupLocalRepo(t)

		if err := repo.SaveSettings(ctx, models.UserSettings{SelectedPreset: "p1", Visited: true}); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}
		if err := repo.SaveSettings(ctx, models.UserSettings{SelectedPreset: "", Visited: true}); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}

		store := NewFileStore(path)
		if _, ok, _ := store.Get("selectedPreset"); ok {
			t.Error("expected selectedPreset key removed")
		}
		settings, _ := repo.LoadSettings(ctx)
		if settings.SelectedPreset != "" || !settings.Visited {
			t.Errorf("unexpected settings: %+v", settings)
		}
	})
}
