package repositories

import (
	"context"
	"errors"
	"testing"

	"alpencams/internal/models"
	"alpencams/internal/shared"
)

// staticIdentity is a fixed IdentityProvider for tests.
type staticIdentity struct {
	id string
}

func (s *staticIdentity) CurrentID() string { return s.id }

func setupRemoteRepo(t *testing.T, userID string) *RemoteRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewRemoteRepository(db, &staticIdentity{id: userID})
}

func TestRemoteRepositoryAuth(t *testing.T) {
	ctx := context.Background()
	repo := setupRemoteRepo(t, "")

	t.Run("every operation requires an identity", func(t *testing.T) {
		entity := models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}

		checks := map[string]error{}
		_, err := repo.LoadPresets(ctx)
		checks["LoadPresets"] = err
		checks["SavePresets"] = repo.SavePresets(ctx, nil)
		checks["AddPreset"] = repo.AddPreset(ctx, entity)
		checks["DeletePreset"] = repo.DeletePreset(ctx, "p1")
		checks["AddCamToPreset"] = repo.AddCamToPreset(ctx, "p1", "Achensee")
		checks["RemoveCamFromPreset"] = repo.RemoveCamFromPreset(ctx, "p1", "Achensee")
		_, err = repo.LoadSettings(ctx)
		checks["LoadSettings"] = err
		checks["SaveSettings"] = repo.SaveSettings(ctx, models.UserSettings{})
		checks["DeletePresets"] = repo.DeletePresets(ctx)

		for op, err := range checks {
			if !errors.Is(err, shared.ErrAuthRequired) {
				t.Errorf("%s: expected ErrAuthRequired, got %v", op, err)
			}
		}
	})
}

func TestRemoteRepositoryPresets(t *testing.T) {
	ctx := context.Background()

	t.Run("empty account loads nil", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		presets, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("LoadPresets failed: %v", err)
		}
		if presets != nil {
			t.Errorf("expected nil, got %+v", presets)
		}
	})

	t.Run("AddPreset preserves insertion order", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		for _, entity := range []models.PresetEntity{
			{ID: "p1", Name: "Mornings", CamIDs: []string{"Achensee"}},
			{ID: "p2", Name: "Evenings", CamIDs: []string{}},
		} {
			if err := repo.AddPreset(ctx, entity); err != nil {
				t.Fatalf("AddPreset failed: %v", err)
			}
		}

		presets, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("LoadPresets failed: %v", err)
		}
		if len(presets) != 2 || presets[0].ID != "p1" || presets[1].ID != "p2" {
			t.Errorf("unexpected presets: %+v", presets)
		}
		if len(presets[0].CamIDs) != 1 || presets[0].CamIDs[0] != "Achensee" {
			t.Errorf("unexpected cam ids: %v", presets[0].CamIDs)
		}
	})

	t.Run("AddPreset rejects duplicate ids per account", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		entity := models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}
		if err := repo.AddPreset(ctx, entity); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}
		if err := repo.AddPreset(ctx, entity); !errors.Is(err, shared.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("presets are scoped by account", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		identity := &staticIdentity{id: "user-1"}
		repo := NewRemoteRepository(db, identity)

		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		identity.id = "user-2"
		presets, err := repo.LoadPresets(ctx)
		if err != nil {
			t.Fatalf("LoadPresets failed: %v", err)
		}
		if presets != nil {
			t.Errorf("expected no presets for user-2, got %+v", presets)
		}

		// Same id under a different account is not a conflict.
		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Errorf("expected per-account id scope, got %v", err)
		}
	})

	t.Run("SavePresets replaces atomically", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}
		replacement := []models.PresetEntity{
			{ID: "p2", Name: "Evenings", CamIDs: []string{"Eng"}},
		}
		if err := repo.SavePresets(ctx, replacement); err != nil {
			t.Fatalf("SavePresets failed: %v", err)
		}

		presets, _ := repo.LoadPresets(ctx)
		if len(presets) != 1 || presets[0].ID != "p2" {
			t.Errorf("unexpected presets: %+v", presets)
		}
	})

	t.Run("DeletePreset and DeletePresets", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		for _, id := range []string{"p1", "p2"} {
			if err := repo.AddPreset(ctx, models.PresetEntity{ID: id, Name: "Name " + id, CamIDs: []string{}}); err != nil {
				t.Fatalf("AddPreset failed: %v", err)
			}
		}

		if err := repo.DeletePreset(ctx, "ghost"); err != nil {
			t.Errorf("expected absent id to be a no-op, got %v", err)
		}
		if err := repo.DeletePreset(ctx, "p1"); err != nil {
			t.Fatalf("DeletePreset failed: %v", err)
		}
		presets, _ := repo.LoadPresets(ctx)
		if len(presets) != 1 {
			t.Errorf("expected 1 preset, got %d", len(presets))
		}

		if err := repo.DeletePresets(ctx); err != nil {
			t.Fatalf("DeletePresets failed: %v", err)
		}
		presets, _ = repo.LoadPresets(ctx)
		if presets != nil {
			t.Errorf("expected nil after clear, got %+v", presets)
		}
	})
}

func TestRemoteRepositoryCamMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("append and first-occurrence removal", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")
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
		got := presets[0].CamIDs
		if len(got) != 2 || got[0] != "Eng" || got[1] != "Achensee" {
			t.Errorf("expected [Eng Achensee], got %v", got)
		}
	})

	t.Run("append beyond the cap evicts from the front", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")
		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		names := []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9"}
		for _, name := range names {
			if err := repo.AddCamToPreset(ctx, "p1", name); err != nil {
				t.Fatalf("AddCamToPreset failed: %v", err)
			}
		}

		presets, _ := repo.LoadPresets(ctx)
		got := presets[0].CamIDs
		if len(got) != models.MaxPresetCams {
			t.Fatalf("expected %d cam ids, got %d", models.MaxPresetCams, len(got))
		}
		if got[0] != "c1" || got[len(got)-1] != "c9" {
			t.Errorf("expected oldest evicted, got %v", got)
		}
	})

	t.Run("mutating an unknown preset fails", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		if err := repo.AddCamToPreset(ctx, "ghost", "Achensee"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.RemoveCamFromPreset(ctx, "ghost", "Achensee"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("removing an absent camera is a no-op", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")
		if err := repo.AddPreset(ctx, models.PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{"Achensee"}}); err != nil {
			t.Fatalf("AddPreset failed: %v", err)
		}

		if err := repo.RemoveCamFromPreset(ctx, "p1", "Atlantis"); err != nil {
			t.Fatalf("RemoveCamFromPreset failed: %v", err)
		}
		presets, _ := repo.LoadPresets(ctx)
		if len(presets[0].CamIDs) != 1 {
			t.Errorf("expected list unchanged, got %v", presets[0].CamIDs)
		}
	})
}

func TestRemoteRepositorySettings(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record loads the zero value", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		settings, err := repo.LoadSettings(ctx)
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if settings.SelectedPreset != "" || settings.Visited {
			t.Errorf("expected zero settings, got %+v", settings)
		}
	})

	t.Run("upsert round trips", func(t *testing.T) {
		repo := setupRemoteRepo(t, "user-1")

		want := models.UserSettings{SelectedPreset: models.DefaultPresetID, Visited: true}
		if err := repo.SaveSettings(ctx, want); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}
		settings, _ := repo.LoadSettings(ctx)
		if settings != want {
			t.Errorf("expected %+v, got %+v", want, settings)
		}

		// Second save must update, not insert.
		want.SelectedPreset = ""
		if err := repo.SaveSettings(ctx, want); err != nil {
			t.Fatalf("SaveSettings failed: %v", err)
		}
		settings, _ = repo.LoadSettings(ctx)
		if settings.SelectedPreset != "" || !settings.Visited {
			t.Errorf("unexpected settings after upsert: %+v", settings)
		}
	})
}
