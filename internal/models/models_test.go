package models

import (
	"errors"
	"strings"
	"testing"

	"alpencams/internal/shared"
)

func TestValidatePresetName(t *testing.T) {
	t.Run("rejects names of three or fewer characters", func(t *testing.T) {
		for _, name := range []string{"", "a", "abc", "   ", " ab  "} {
			err := ValidatePresetName(name)
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected validation error for %q, got %v", name, err)
				continue
			}
			if !strings.Contains(err.Error(), "Preset name must be longer than 3 characters") {
				t.Errorf("unexpected message for %q: %v", name, err)
			}
		}
	})

	t.Run("accepts longer names", func(t *testing.T) {
		for _, name := range []string{"abcd", "Mornings", "  abcd  "} {
			if err := ValidatePresetName(name); err != nil {
				t.Errorf("expected %q to validate, got %v", name, err)
			}
		}
	})
}

func TestPresetEntity(t *testing.T) {
	t.Run("Validate rejects empty id", func(t *testing.T) {
		entity := PresetEntity{Name: "Mornings"}
		if err := entity.Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("Validate applies the naming rule", func(t *testing.T) {
		entity := PresetEntity{ID: "p1", Name: "abc"}
		if err := entity.Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("Validate accepts a well-formed entity", func(t *testing.T) {
		entity := PresetEntity{ID: "p1", Name: "Mornings", CamIDs: []string{"Achensee"}}
		if err := entity.Validate(); err != nil {
			t.Errorf("expected entity to validate, got %v", err)
		}
	})
}

func TestPresetEntityConversion(t *testing.T) {
	t.Run("Entity maps cams to names in order", func(t *testing.T) {
		preset := Preset{
			ID:   "p1",
			Name: "Mornings",
			Cams: []Webcam{{Name: "Achensee"}, {Name: "Eng"}, {Name: "Achensee"}},
		}

		entity := preset.Entity()
		if entity.ID != "p1" || entity.Name != "Mornings" {
			t.Errorf("unexpected entity: %+v", entity)
		}
		want := []string{"Achensee", "Eng", "Achensee"}
		if len(entity.CamIDs) != len(want) {
			t.Fatalf("expected %d cam ids, got %d", len(want), len(entity.CamIDs))
		}
		for i, name := range want {
			if entity.CamIDs[i] != name {
				t.Errorf("cam id %d: expected %q, got %q", i, name, entity.CamIDs[i])
			}
		}
	})

	t.Run("Entity of an empty preset has zero cam ids", func(t *testing.T) {
		entity := Preset{ID: "p1", Name: "Mornings"}.Entity()
		if entity.CamIDs == nil || len(entity.CamIDs) != 0 {
			t.Errorf("expected empty non-nil cam ids, got %v", entity.CamIDs)
		}
	})
}
