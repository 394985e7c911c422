package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"alpencams/internal/catalog"
	"alpencams/internal/models"
	"alpencams/internal/presets"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PresetListView ViewState = iota
	CamListView
	CatalogView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	catalog *catalog.Catalog
	engine  *presets.Engine
	width   int
	height  int

	presetList  list.Model
	camList     list.Model
	catalogList list.Model

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model. The engine must be initialized.
func NewModel(ctx context.Context, cat *catalog.Catalog, engine *presets.Engine) *Model {
	m := &Model{
		ctx:     ctx,
		view:    PresetListView,
		catalog: cat,
		engine:  engine,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.presetList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.presetList.Title = "Presets"
	m.camList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.catalogList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.catalogList.Title = "Catalog"
	m.reloadPresets()
	m.reloadCatalog()
	return m
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.presetList.SetSize(msg.Width-4, msg.Height-8)
		m.camList.SetSize(msg.Width-4, msg.Height-8)
		m.catalogList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case PresetListView:
			return m.updatePresetList(msg)
		case CamListView:
			return m.updateCamList(msg)
		case CatalogView:
			return m.updateCatalog(msg)
		}
	}
	return m, nil
}

func (m *Model) updatePresetList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		item, ok := m.presetList.SelectedItem().(presetItem)
		if !ok {
			return m, nil
		}
		if err := m.engine.SwitchPreset(m.ctx, item.preset.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.reloadPresets()
		m.reloadCams()
		m.view = CamListView
		return m, nil

	case key.Matches(msg, m.keys.browse):
		m.reloadCatalog()
		m.view = CatalogView
		return m, nil
	}

	var cmd tea.Cmd
	m.presetList, cmd = m.presetList.Update(msg)
	return m, cmd
}

func (m *Model) updateCamList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = PresetListView
		return m, nil

	case key.Matches(msg, m.keys.browse):
		m.reloadCatalog()
		m.view = CatalogView
		return m, nil

	case key.Matches(msg, m.keys.toggle), key.Matches(msg, m.keys.enter):
		item, ok := m.camList.SelectedItem().(camItem)
		if !ok {
			return m, nil
		}
		m.toggle(item.cam)
		m.reloadCams()
		return m, nil
	}

	var cmd tea.Cmd
	m.camList, cmd = m.camList.Update(msg)
	return m, cmd
}

func (m *Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.reloadCams()
		m.view = CamListView
		return m, nil

	case key.Matches(msg, m.keys.toggle), key.Matches(msg, m.keys.enter):
		if m.catalogList.FilterState() == list.Filtering {
			break
		}
		item, ok := m.catalogList.SelectedItem().(camItem)
		if !ok {
			return m, nil
		}
		m.toggle(item.cam)
		m.reloadCatalog()
		return m, nil
	}

	var cmd tea.Cmd
	m.catalogList, cmd = m.catalogList.Update(msg)
	return m, cmd
}

func (m *Model) toggle(cam models.Webcam) {
	if err := m.engine.ToggleWebcam(m.ctx, cam); err != nil {
		m.err = err
		return
	}
	m.err = nil
	selected, _ := m.engine.Selected()
	m.status = fmt.Sprintf("%q now has %d cams", selected.Name, len(selected.Cams))
}

// reloadPresets rebuilds the preset list from engine state.
func (m *Model) reloadPresets() {
	selectedID := m.engine.Settings().SelectedPreset
	all := m.engine.Presets()
	items := make([]list.Item, len(all))
	for i, p := range all {
		items[i] = presetItem{preset: p, selected: p.ID == selectedID}
	}
	m.presetList.SetItems(items)
}

// reloadCams rebuilds the selected preset's camera list.
func (m *Model) reloadCams() {
	selected, ok := m.engine.Selected()
	if !ok {
		m.camList.SetItems(nil)
		return
	}
	items := make([]list.Item, len(selected.Cams))
	for i, cam := range selected.Cams {
		items[i] = camItem{cam: cam, inPreset: true}
	}
	m.camList.Title = selected.Name
	m.camList.SetItems(items)
}

// reloadCatalog rebuilds the catalog list, marking membership in the selected preset.
func (m *Model) reloadCatalog() {
	inPreset := map[string]bool{}
	if selected, ok := m.engine.Selected(); ok {
		for _, cam := range selected.Cams {
			inPreset[cam.Name] = true
		}
	}

	all := m.catalog.All()
	items := make([]list.Item, len(all))
	for i, cam := range all {
		items[i] = camItem{cam: cam, inPreset: inPreset[cam.Name]}
	}
	m.catalogList.SetItems(items)
}

// View renders the active view.
func (m *Model) View() string {
	var body string
	switch m.view {
	case PresetListView:
		body = m.presetList.View()
	case CamListView:
		body = m.camList.View()
	case CatalogView:
		body = m.catalogList.View()
	}

	footer := ""
	if m.err != nil {
		footer = styles.err.Render(m.err.Error())
	} else if m.status != "" {
		footer = styles.ok.Render(m.status)
	}

	return body + "\n" + footer + "\n" + styles.help.Render(m.help.View(m.keys))
}
