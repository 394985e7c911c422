package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"alpencams/internal/catalog"
	"alpencams/internal/models"
	"alpencams/internal/presets"
	"alpencams/internal/share"
	"alpencams/internal/shared"
)

// API serves the webcam catalog and preset operations over HTTP.
type API struct {
	catalog *catalog.Catalog
	engine  *presets.Engine
	logger  *log.Logger
}

// NewAPI creates the handler set.
func NewAPI(cat *catalog.Catalog, engine *presets.Engine, logger *log.Logger) *API {
	return &API{catalog: cat, engine: engine, logger: logger}
}

// Register attaches all routes to the router.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.health))

	r.Handle(http.MethodGet, "/api/cams", http.HandlerFunc(a.listCams))
	r.Handle(http.MethodGet, "/api/cams/random", http.HandlerFunc(a.randomCams))

	r.Handle(http.MethodGet, "/api/presets", http.HandlerFunc(a.listPresets))
	r.Handle(http.MethodPost, "/api/presets", http.HandlerFunc(a.createPreset))
	r.Handle(http.MethodDelete, "/api/presets/{id}", http.HandlerFunc(a.removePreset))
	r.Handle(http.MethodPost, "/api/presets/{id}/select", http.HandlerFunc(a.selectPreset))
	r.Handle(http.MethodPost, "/api/presets/toggle", http.HandlerFunc(a.toggleCam))

	r.Handle(http.MethodGet, "/api/presets/export", http.HandlerFunc(a.exportPresets))
	r.Handle(http.MethodPost, "/api/presets/import", http.HandlerFunc(a.importPresets))

	r.Handle(http.MethodGet, "/api/share", http.HandlerFunc(a.shareLink))
	r.Handle(http.MethodGet, "/api/share/resolve", http.HandlerFunc(a.resolveShare))
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listCams returns the catalog, filtered by the q parameter when present.
func (a *API) listCams(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		writeJSON(w, http.StatusOK, a.catalog.Search(q))
		return
	}
	writeJSON(w, http.StatusOK, a.catalog.All())
}

func (a *API) randomCams(w http.ResponseWriter, r *http.Request) {
	n := models.MaxPresetCams
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			a.writeError(w, r, shared.ErrInvalidArgument)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, a.catalog.Random(n))
}

// presetsView is the list response: the presets plus selection state.
type presetsView struct {
	Presets  []models.Preset     `json:"presets"`
	Settings models.UserSettings `json:"settings"`
}

func (a *API) listPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presetsView{
		Presets:  a.engine.Presets(),
		Settings: a.engine.Settings(),
	})
}

func (a *API) createPreset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, r, shared.ErrValidation)
		return
	}

	preset, err := a.engine.CreatePreset(r.Context(), body.Name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, preset)
}

func (a *API) removePreset(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.RemovePreset(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) selectPreset(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.SwitchPreset(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	selected, _ := a.engine.Selected()
	writeJSON(w, http.StatusOK, selected)
}

// toggleCam toggles a camera on the selected preset by catalog name.
func (a *API) toggleCam(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.writeError(w, r, shared.ErrValidation)
		return
	}

	cam, ok := a.catalog.ByName(body.Name)
	if !ok {
		a.writeError(w, r, shared.ErrNotFound)
		return
	}

	if err := a.engine.ToggleWebcam(r.Context(), cam); err != nil {
		a.writeError(w, r, err)
		return
	}
	selected, _ := a.engine.Selected()
	writeJSON(w, http.StatusOK, selected)
}

func (a *API) exportPresets(w http.ResponseWriter, r *http.Request) {
	entities, err := a.engine.ExportPresets(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

func (a *API) importPresets(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		a.writeError(w, r, shared.ErrValidation)
		return
	}

	if err := a.engine.ImportPresets(r.Context(), data); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presetsView{
		Presets:  a.engine.Presets(),
		Settings: a.engine.Settings(),
	})
}

// shareLink encodes the selected preset's cameras into a share token.
func (a *API) shareLink(w http.ResponseWriter, r *http.Request) {
	selected, ok := a.engine.Selected()
	if !ok {
		a.writeError(w, r, shared.ErrNotFound)
		return
	}

	token, err := share.Encode(selected.Cams)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// resolveShare expands a share token back into catalog cameras.
// Ordinals with no catalog entry are dropped.
func (a *API) resolveShare(w http.ResponseWriter, r *http.Request) {
	ids, err := share.Decode(r.URL.Query().Get("c"))
	if err != nil {
		a.writeError(w, r, shared.ErrValidation)
		return
	}

	var cams []models.Webcam
	for _, id := range ids {
		if cam, ok := a.catalog.ByID(id); ok {
			cams = append(cams, cam)
		}
	}
	writeJSON(w, http.StatusOK, cams)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps engine and backend error kinds to HTTP statuses.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidArgument):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrAuthRequired), errors.Is(err, shared.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrBackendUnavailable):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
