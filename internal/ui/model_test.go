package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/geocoding"
	"github.com/ngmaloney/astroscope/internal/models"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/ngmaloney/astroscope/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ghent = &models.Site{Name: "Ghent", Latitude: 51.053822, Longitude: 3.722270, Source: "config"}

var testObjects = []models.Object{
	{Name: "NGC0224", Type: "G", Constellation: "And", RA: 10.684708, Dec: 41.26875, HasPosition: true, VMag: 3.44, HasVMag: true, Messier: "031", CommonNames: []string{"Andromeda Galaxy"}},
	{Name: "NGC1976", Type: "Cl+N", Constellation: "Ori", RA: 83.82, Dec: -5.39, HasPosition: true, VMag: 4.0, HasVMag: true, Messier: "042"},
	{Name: "NGC0457", Type: "OCl", Constellation: "Cas", RA: 19.87, Dec: 58.33, HasPosition: true, VMag: 6.4, HasVMag: true},
	{Name: "NGC7000", Type: "HII", Constellation: "Cyg", RA: 314.7, Dec: 44.3, HasPosition: true, VMag: 12.0, HasVMag: true},
	{Name: "IC0434", Type: "HII", Constellation: "Ori", RA: 85.25, Dec: -2.46, HasPosition: true},
}

type fakeResolver struct {
	pos astro.Equatorial
	err error
}

func (f fakeResolver) Resolve(ctx context.Context, name string) (astro.Equatorial, error) {
	return f.pos, f.err
}

type fakeFinder map[string]models.Object

func (f fakeFinder) Object(ctx context.Context, name string) (models.Object, error) {
	if o, ok := f[name]; ok {
		return o, nil
	}
	return models.Object{}, catalog.ErrNotFound
}

type fakeGeocoder struct {
	loc *geocoding.Location
	err error
}

func (f fakeGeocoder) Geocode(ctx context.Context, query string) (*geocoding.Location, error) {
	return f.loc, f.err
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// browsing returns a sized model with the test catalog loaded.
func browsing(t *testing.T, deps Deps) Model {
	t.Helper()
	if deps.Site == nil {
		deps.Site = ghent
	}
	m := NewModel(deps)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, catalogLoadedMsg{objects: testObjects})
	require.Equal(t, StateBrowse, m.state)
	return m
}

func TestNewModel(t *testing.T) {
	m := NewModel(Deps{})
	if m.state != StateSearch {
		t.Errorf("NewModel() state = %v, want StateSearch", m.state)
	}
	if !m.searchInput.Focused() {
		t.Error("Expected search input to be focused initially")
	}
	if m.tab != TabOverview {
		t.Errorf("NewModel() tab = %v, want TabOverview", m.tab)
	}

	m = NewModel(Deps{Site: ghent})
	if m.state != StateLoading {
		t.Errorf("NewModel() with site state = %v, want StateLoading", m.state)
	}

	m = NewModel(Deps{NeedsProvisioning: true})
	if m.state != StateProvisioning {
		t.Errorf("NewModel() needing provisioning state = %v, want StateProvisioning", m.state)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := NewModel(Deps{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if m.width != 120 {
		t.Errorf("After WindowSizeMsg, width = %d, want 120", m.width)
	}
	if m.height != 40 {
		t.Errorf("After WindowSizeMsg, height = %d, want 40", m.height)
	}
}

func TestModel_Update_ErrorMsg(t *testing.T) {
	m := NewModel(Deps{})
	m, _ = update(t, m, errMsg{err: tea.ErrProgramKilled})

	if m.state != StateError {
		t.Errorf("After errMsg, state = %v, want StateError", m.state)
	}
	if m.err == nil {
		t.Error("After errMsg, err should not be nil")
	}

	// Any key returns to the location prompt
	m, _ = update(t, m, key("x"))
	assert.Equal(t, StateSearch, m.state)
	assert.NoError(t, m.err)
}

func TestModel_CtrlC_Quits(t *testing.T) {
	m := NewModel(Deps{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd, "Expected Ctrl+C to return quit command")
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTextInputHandling(t *testing.T) {
	m := NewModel(Deps{})

	m = typeText(t, m, "Ghent, Belgium")
	if m.searchInput.Value() != "Ghent, Belgium" {
		t.Errorf("Expected search input to be 'Ghent, Belgium', got '%s'", m.searchInput.Value())
	}

	// q is text here, not quit
	m = typeText(t, m, "q")
	if m.searchInput.Value() != "Ghent, Belgiumq" {
		t.Errorf("Expected q to be typed, got '%s'", m.searchInput.Value())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.searchInput.Value() != "Ghent, Belgium" {
		t.Errorf("Expected backspace to remove q, got '%s'", m.searchInput.Value())
	}
}

func TestSearch_EnterEmptyWithoutLocator(t *testing.T) {
	m := NewModel(Deps{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateSearch, m.state)
	assert.Nil(t, cmd)
	assert.Nil(t, m.site)
}

func TestSearch_Coordinates(t *testing.T) {
	m := NewModel(Deps{})
	m = typeText(t, m, "51.05, 3.72")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.site)
	assert.Equal(t, "51.0500, 3.7200", m.site.Name)
	assert.Equal(t, "manual", m.site.Source)
	assert.Equal(t, StateBrowse, m.state)
}

func TestSearch_CoordinatesOutOfRange(t *testing.T) {
	m := NewModel(Deps{})
	m = typeText(t, m, "95, 3.72")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateError, m.state)
	assert.ErrorContains(t, m.err, "latitude")
}

func TestSearch_Geocode(t *testing.T) {
	geocoder := fakeGeocoder{loc: &geocoding.Location{Latitude: 51.05, Longitude: 3.72, Name: "Gent"}}
	m := NewModel(Deps{Geocoder: geocoder})
	m = typeText(t, m, "Ghent")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, StateLoading, m.state)

	msg := geocodeLocation(geocoder, "Ghent")()
	m, _ = update(t, m, msg)
	require.NotNil(t, m.site)
	assert.Equal(t, "Gent", m.site.Name)
	assert.Equal(t, "geocoded", m.site.Source)
	assert.Equal(t, StateBrowse, m.state)
}

func TestSearch_GeocodeFailure(t *testing.T) {
	m := NewModel(Deps{})
	m, _ = update(t, m, geocodeMsg{err: geocoding.ErrNoLocation})

	assert.Equal(t, StateError, m.state)
	assert.ErrorIs(t, m.err, geocoding.ErrNoLocation)
}

func TestSearch_EscBrowsesWithoutLocation(t *testing.T) {
	m := NewModel(Deps{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateBrowse, m.state)
	assert.Nil(t, m.site)
	assert.Contains(t, m.View(), "Location unavailable")
}

func TestCatalogLoaded_DefaultFilter(t *testing.T) {
	m := browsing(t, Deps{})

	// NGC7000 is too faint and IC0434 has no magnitude
	names := listNames(m)
	assert.Equal(t, []string{"NGC0224", "NGC1976", "NGC0457"}, names)
	assert.Contains(t, m.View(), "Total: 3")
}

func TestCatalogLoaded_Error(t *testing.T) {
	m := NewModel(Deps{Site: ghent})
	m, _ = update(t, m, catalogLoadedMsg{err: catalog.ErrNotProvisioned})

	assert.Equal(t, StateError, m.state)
	assert.ErrorIs(t, m.err, catalog.ErrNotProvisioned)
}

func listNames(m Model) []string {
	var names []string
	for _, item := range m.objectList.Items() {
		names = append(names, item.(objectItem).object.Name)
	}
	return names
}

func TestFilterExpression(t *testing.T) {
	m := browsing(t, Deps{})

	m, _ = update(t, m, key("/"))
	require.True(t, m.filtering)
	assert.Equal(t, "mag:10", m.filterInput.Value())

	m.filterInput.SetValue("const:Ori mag:any")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Equal(t, []string{"NGC1976", "IC0434"}, listNames(m))

	// A bad expression keeps the input open and the old filter
	m, _ = update(t, m, key("/"))
	m.filterInput.SetValue("bogus")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.filtering)
	assert.NotEmpty(t, m.status)
	assert.Equal(t, []string{"NGC1976", "IC0434"}, listNames(m))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
}

func TestFilterInputSwallowsShortcuts(t *testing.T) {
	m := browsing(t, Deps{})
	m, _ = update(t, m, key("/"))

	m, _ = update(t, m, key("q"))
	assert.Equal(t, StateBrowse, m.state)
	assert.True(t, m.filtering)
	assert.Equal(t, "mag:10q", m.filterInput.Value())
}

func TestSuggestionsTab(t *testing.T) {
	m := browsing(t, Deps{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabSuggestions, m.tab)

	m, _ = update(t, m, reportLoadedMsg{err: report.ErrNoReport})
	assert.Contains(t, m.View(), "No object data found.")

	rows := []models.ReportRow{
		{Name: "NGC0224", Type: "G", Constellation: "And", Rise: 19, Set: 5, Duration: 10, Magnitude: 3.44},
		{Name: "NGC7000", Type: "HII", Constellation: "Cyg", Rise: 21, Set: 2, Duration: 5, Magnitude: 12},
	}
	m, _ = update(t, m, reportLoadedMsg{rows: rows})
	assert.Len(t, m.suggestionList.Items(), 1)
	assert.Contains(t, m.View(), "Total: 1")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabOverview, m.tab)
}

func TestLoadReportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "objects.csv")

	msg := loadReport(path)().(reportLoadedMsg)
	assert.ErrorIs(t, msg.err, report.ErrNoReport)

	rows := []models.ReportRow{{Name: "NGC0224", Type: "G", Constellation: "And", Rise: 19, Set: 5, Duration: 10, Magnitude: 3.44}}
	require.NoError(t, report.Save(path, rows))

	msg = loadReport(path)().(reportLoadedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, rows, msg.rows)
}

func TestDetail_OpenAndBack(t *testing.T) {
	m := browsing(t, Deps{Resolver: fakeResolver{err: resolver.ErrNotFound}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, StateDetail, m.state)
	require.NotNil(t, m.detail)
	assert.Equal(t, "NGC0224", m.detail.name)
	assert.True(t, m.loadingDetail)

	m, _ = update(t, m, detailMsg{name: "NGC0224", err: resolver.ErrNotFound})
	assert.False(t, m.loadingDetail)
	view := m.View()
	assert.Contains(t, view, "Cannot get object info.")
	assert.Contains(t, view, NEDLink("NGC0224"))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateBrowse, m.state)
	assert.Nil(t, m.detail)
}

func TestDetail_StaleResultIgnored(t *testing.T) {
	m := browsing(t, Deps{})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = update(t, m, detailMsg{name: "NGC1976"})
	assert.True(t, m.loadingDetail)
}

func TestDetail_WithoutLocation(t *testing.T) {
	m := browsing(t, Deps{})
	m.site = nil
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	o := testObjects[0]
	m, _ = update(t, m, detailMsg{name: "NGC0224", object: &o})
	view := m.View()
	assert.Contains(t, view, "Location unavailable")
	assert.Contains(t, view, "Andromeda Galaxy")
	assert.NotContains(t, view, "Best observed")
}

func TestComputeDetail(t *testing.T) {
	now := time.Date(2024, 10, 1, 22, 0, 0, 0, time.UTC)
	deps := Deps{
		Finder:   fakeFinder{"M31": testObjects[0]},
		Resolver: fakeResolver{pos: astro.Equatorial{RA: testObjects[0].RA, Dec: testObjects[0].Dec}},
	}
	deps = NewModel(deps).deps
	deps.Now = func() time.Time { return now }

	msg := computeDetail(deps, "M31", ghent)().(detailMsg)
	require.NoError(t, msg.err)
	require.NotNil(t, msg.object)
	assert.Equal(t, "NGC0224", msg.object.Name)
	require.NotNil(t, msg.now)
	require.NotNil(t, msg.night)
	assert.True(t, msg.night.Visible)
	assert.Len(t, msg.night.Alts, len(msg.night.Grid))

	m := browsing(t, Deps{})
	m.deps = deps
	m.state = StateDetail
	m.detail = &detailMsg{name: "M31"}
	m.loadingDetail = true
	m, _ = update(t, m, msg)
	view := m.View()
	assert.Contains(t, view, "Best observed:")
	assert.Contains(t, view, "Altitude:")
	assert.Contains(t, view, "°")
}

func TestComputeDetail_Failures(t *testing.T) {
	deps := NewModel(Deps{Resolver: fakeResolver{err: resolver.ErrNotFound}}).deps

	msg := computeDetail(deps, "Nowhere", ghent)().(detailMsg)
	assert.ErrorIs(t, msg.err, resolver.ErrNotFound)
	assert.Nil(t, msg.night)

	deps = NewModel(Deps{}).deps
	msg = computeDetail(deps, "M31", ghent)().(detailMsg)
	assert.Error(t, msg.err)

	deps = NewModel(Deps{Resolver: fakeResolver{pos: astro.Equatorial{RA: 10, Dec: 41}}}).deps
	msg = computeDetail(deps, "M31", nil)().(detailMsg)
	assert.NoError(t, msg.err)
	assert.Nil(t, msg.now)
	assert.Nil(t, msg.night)
}

func TestProvisioningMessages(t *testing.T) {
	m := NewModel(Deps{NeedsProvisioning: true})

	progress := make(chan string, 1)
	result := make(chan error, 1)
	m, cmd := update(t, m, provisioningStartedMsg{progressChan: progress, resultChan: result})
	require.NotNil(t, cmd)
	assert.Equal(t, StateProvisioning, m.state)

	m, cmd = update(t, m, provisionStatusMsg("Imported 7 catalog objects"))
	assert.Equal(t, "Imported 7 catalog objects", m.provisionStatus)
	assert.NotNil(t, cmd)

	failed, _ := update(t, m, provisionResultMsg{err: errors.New("boom")})
	assert.Equal(t, StateError, failed.state)
	assert.ErrorContains(t, failed.err, "provisioning failed")

	m, cmd = update(t, m, provisionResultMsg{})
	assert.Equal(t, StateSearch, m.state)
	assert.Nil(t, m.provisionChannels)
	assert.NotNil(t, cmd)
}

func TestWaitForProvisionStatus_Closed(t *testing.T) {
	progress := make(chan string)
	close(progress)
	assert.Nil(t, waitForProvisionStatus(progress)())
}

func TestNEDLink(t *testing.T) {
	assert.Equal(t, "https://ned.ipac.caltech.edu/cgi-bin/objsearch?objname=NGC0224", NEDLink("NGC0224"))
	assert.Equal(t, "https://ned.ipac.caltech.edu/cgi-bin/objsearch?objname=M+31", NEDLink("M 31"))
}

func TestViewsRender(t *testing.T) {
	tests := []struct {
		name  string
		state AppState
		want  string
	}{
		{"search", StateSearch, "Where are you observing from?"},
		{"provisioning", StateProvisioning, "OpenNGC"},
		{"loading", StateLoading, "Loading catalog"},
		{"error", StateError, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(Deps{})
			m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
			m.state = tt.state
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("View() in %s does not contain %q", tt.name, tt.want)
			}
		})
	}

	if got := NewModel(Deps{}).View(); got != "Loading..." {
		t.Errorf("View() before sizing = %q, want Loading...", got)
	}
}
