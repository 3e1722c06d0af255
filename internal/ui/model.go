package ui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/geocoding"
	"github.com/ngmaloney/astroscope/internal/models"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/ngmaloney/astroscope/internal/resolver"
	"github.com/ngmaloney/astroscope/internal/sites"
	"github.com/ngmaloney/astroscope/internal/visibility"
	"go.uber.org/zap"
)

// AppState represents the current state of the application
type AppState int

const (
	StateProvisioning AppState = iota // Initial catalog download and import
	StateSearch                       // Enter observer location
	StateLoading                      // Waiting for the catalog
	StateBrowse                       // Overview and suggestions tables
	StateDetail                       // Single object panel
	StateSites                        // Saved sites
	StateSiteName                     // Naming the current site before saving
	StateError                        // Error state
)

// Tab is the active table in the browse state
type Tab int

const (
	TabOverview Tab = iota
	TabSuggestions
)

func (t Tab) String() string {
	if t == TabSuggestions {
		return "Suggestions"
	}
	return "Overview"
}

// Geocoder turns a free-form place into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Location, error)
}

// Locator finds the current position without user input.
type Locator interface {
	Locate(ctx context.Context) (*geocoding.Location, error)
}

// Deps wires the model to the rest of the application. Nil fields disable
// the matching feature.
type Deps struct {
	DB                *sql.DB
	NeedsProvisioning bool
	Provisioner       *catalog.Provisioner
	Cache             *catalog.Cache
	Finder            resolver.Finder
	Resolver          resolver.Resolver
	Ephemeris         astro.Ephemeris
	Geocoder          Geocoder
	Locator           Locator
	Sites             *sites.Service

	Thresholds visibility.Thresholds
	Policy     visibility.Policy
	Filter     *catalog.Filter // DefaultFilter when nil
	ReportPath string

	// Site is the starting observer location, nil to ask for one.
	Site   *models.Site
	Logger *zap.Logger
	Now    func() time.Time
}

// Model represents the application's state
type Model struct {
	deps   Deps
	state  AppState
	tab    Tab
	width  int
	height int
	err    error
	status string

	// Location
	searchInput textinput.Model
	site        *models.Site

	// Immutable base tables, filtered into the lists on every change
	objects       []models.Object
	rows          []models.ReportRow
	reportErr     error
	catalogLoaded bool

	// Filtering
	filter      catalog.Filter
	filterInput textinput.Model
	filtering   bool

	objectList     list.Model
	suggestionList list.Model

	// Detail panel
	detail        *detailMsg
	loadingDetail bool

	// Saved sites
	siteList  list.Model
	nameInput textinput.Model

	// Provisioning
	spinner           spinner.Model
	provisionStatus   string
	provisionChannels *provisioningStartedMsg
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Ephemeris == nil {
		deps.Ephemeris = astro.NewModel()
	}
	if deps.Thresholds == (visibility.Thresholds{}) {
		deps.Thresholds = visibility.DefaultThresholds()
	}
	if deps.ReportPath == "" {
		deps.ReportPath = report.DefaultPath
	}
	filter := catalog.DefaultFilter()
	if deps.Filter != nil {
		filter = *deps.Filter
	}

	ti := textinput.New()
	ti.Placeholder = "City, address or \"lat, lon\" (empty to locate by IP)..."
	ti.CharLimit = 100
	ti.Width = 60

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "const:And,Cas type:G,OCl mag:8.5"
	fi.CharLimit = 200
	fi.Width = 60

	ni := textinput.New()
	ni.Placeholder = "Site name..."
	ni.CharLimit = 60
	ni.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		deps:           deps,
		searchInput:    ti,
		filterInput:    fi,
		nameInput:      ni,
		spinner:        s,
		filter:         filter,
		site:           deps.Site,
		objectList:     newObjectList(nil, 0, 0),
		suggestionList: newSuggestionList(nil, 0, 0),
		siteList:       newSiteList(nil, 0, 0),
	}

	switch {
	case deps.NeedsProvisioning:
		m.state = StateProvisioning
	case m.site == nil:
		m.state = StateSearch
		m.searchInput.Focus()
	default:
		m.state = StateLoading
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.state == StateProvisioning && m.deps.Provisioner != nil {
		return tea.Batch(m.spinner.Tick, startProvisioning(m.deps))
	}
	cmds := m.loadData()
	if m.state == StateSearch {
		cmds = append(cmds, textinput.Blink)
	} else {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) loadData() []tea.Cmd {
	cmds := []tea.Cmd{loadReport(m.deps.ReportPath)}
	if m.deps.Cache != nil {
		cmds = append(cmds, loadCatalog(m.deps.Cache))
	}
	return cmds
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil
	}

	// Handle custom messages
	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	// Provisioning messages
	case provisioningStartedMsg:
		m.state = StateProvisioning
		m.provisionStatus = "Starting catalog provisioning..."
		m.provisionChannels = &msg
		return m, tea.Batch(
			waitForProvisionStatus(msg.progressChan),
			waitForProvisionResult(msg.resultChan),
		)

	case provisionStatusMsg:
		m.provisionStatus = string(msg)
		if m.provisionChannels != nil {
			return m, waitForProvisionStatus(m.provisionChannels.progressChan)
		}
		return m, nil

	case provisionResultMsg:
		m.provisionChannels = nil
		if msg.err != nil {
			m.err = fmt.Errorf("provisioning failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		if m.deps.Cache != nil {
			m.deps.Cache.Invalidate()
		}
		if m.site == nil {
			m.state = StateSearch
			m.searchInput.Focus()
		} else {
			m.state = StateLoading
		}
		return m, tea.Batch(m.loadData()...)

	case catalogLoadedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("loading catalog: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.objects = msg.objects
		m.catalogLoaded = true
		m.applyFilter()
		if m.state == StateLoading {
			m.state = StateBrowse
		}
		return m, nil

	case reportLoadedMsg:
		m.rows = msg.rows
		m.reportErr = msg.err
		if msg.err != nil && !isNoReport(msg.err) {
			m.deps.Logger.Warn("loading report", zap.String("path", m.deps.ReportPath), zap.Error(msg.err))
		}
		m.applyFilter()
		return m, nil

	case geocodeMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("locating observer: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.setSite(&models.Site{
			Name:      msg.location.Name,
			Latitude:  msg.location.Latitude,
			Longitude: msg.location.Longitude,
			Source:    msg.source,
		})
		return m, nil

	case detailMsg:
		if m.detail == nil || m.detail.name != msg.name {
			return m, nil
		}
		m.loadingDetail = false
		m.detail = &msg
		return m, nil

	case sitesFetchedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Cannot load sites: " + msg.err.Error())
			return m, nil
		}
		m.siteList.SetItems(siteItems(msg.sites))
		return m, nil

	case siteSavedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Cannot save site: " + msg.err.Error())
			return m, nil
		}
		m.site = msg.site
		m.status = successStyle.Render("Saved site " + msg.site.Name)
		return m, fetchSavedSites(m.deps.Sites)

	case siteDeletedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Cannot delete site: " + msg.err.Error())
			return m, nil
		}
		m.status = successStyle.Render("Deleted site " + msg.name)
		return m, fetchSavedSites(m.deps.Sites)
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// State-specific handling
		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)
		case StateBrowse:
			return m.handleBrowse(keyMsg)
		case StateDetail:
			return m.handleDetail(keyMsg)
		case StateSites:
			return m.handleSites(keyMsg)
		case StateSiteName:
			return m.handleSiteName(keyMsg)
		case StateError:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			// Any other key goes back to where the error can be fixed
			m.err = nil
			if m.site == nil {
				m.state = StateSearch
				m.searchInput.Focus()
				return m, textinput.Blink
			}
			m.state = StateBrowse
			return m, nil
		default:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
		}
	}

	// Update appropriate component based on state
	switch m.state {
	case StateProvisioning, StateLoading:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateDetail:
		if m.loadingDetail {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case StateBrowse:
		if m.filtering {
			m.filterInput, cmd = m.filterInput.Update(msg)
		}
	case StateSiteName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}

	return m, cmd
}

// setSite switches the observer and leaves the location prompt.
func (m *Model) setSite(site *models.Site) {
	m.site = site
	m.searchInput.Blur()
	m.searchInput.SetValue("")
	if m.catalogLoaded || m.deps.Cache == nil {
		m.state = StateBrowse
	} else {
		m.state = StateLoading
	}
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			if m.deps.Locator == nil {
				return m, nil
			}
			m.state = StateLoading
			return m, tea.Batch(m.spinner.Tick, locateByIP(m.deps.Locator))
		}
		// Coordinates need no network round trip
		if loc, ok, err := geocoding.ParseCoordinates(query); ok {
			if err != nil {
				m.err = err
				m.state = StateError
				return m, nil
			}
			m.setSite(&models.Site{Name: loc.Name, Latitude: loc.Latitude, Longitude: loc.Longitude, Source: "manual"})
			return m, nil
		}
		if m.deps.Geocoder == nil {
			m.err = errors.New("geocoding is unavailable, enter coordinates instead")
			m.state = StateError
			return m, nil
		}
		m.state = StateLoading
		return m, tea.Batch(m.spinner.Tick, geocodeLocation(m.deps.Geocoder, query))

	case tea.KeyEsc:
		// Browse without a location; visibility output is omitted
		m.searchInput.Blur()
		if m.catalogLoaded || m.deps.Cache == nil {
			m.state = StateBrowse
		} else {
			m.state = StateLoading
		}
		return m, nil
	}

	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleBrowse handles keyboard input on the overview and suggestions tables
func (m Model) handleBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.filtering {
		switch msg.Type {
		case tea.KeyEnter:
			f, err := catalog.ParseFilter(m.filterInput.Value())
			if err != nil {
				m.status = errorStyle.Render(err.Error())
				return m, nil
			}
			m.filter = f
			m.filtering = false
			m.filterInput.Blur()
			m.status = ""
			m.applyFilter()
			return m, nil
		case tea.KeyEsc:
			m.filtering = false
			m.filterInput.Blur()
			m.status = ""
			return m, nil
		}
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.tab == TabOverview {
			m.tab = TabSuggestions
		} else {
			m.tab = TabOverview
		}
		return m, nil
	case "/":
		m.filtering = true
		m.filterInput.SetValue(m.filter.String())
		m.filterInput.CursorEnd()
		m.filterInput.Focus()
		return m, textinput.Blink
	case "l":
		m.state = StateSearch
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	case "s":
		if m.deps.Sites == nil {
			return m, nil
		}
		m.state = StateSites
		m.status = ""
		return m, fetchSavedSites(m.deps.Sites)
	case "r":
		return m, loadReport(m.deps.ReportPath)
	case "enter":
		name := m.selectedName()
		if name == "" {
			return m, nil
		}
		m.state = StateDetail
		m.detail = &detailMsg{name: name}
		m.loadingDetail = true
		return m, tea.Batch(m.spinner.Tick, computeDetail(m.deps, name, m.site))
	}

	if m.tab == TabSuggestions {
		m.suggestionList, cmd = m.suggestionList.Update(msg)
	} else {
		m.objectList, cmd = m.objectList.Update(msg)
	}
	return m, cmd
}

func (m Model) selectedName() string {
	if m.tab == TabSuggestions {
		if item, ok := m.suggestionList.SelectedItem().(rowItem); ok {
			return item.row.Name
		}
		return ""
	}
	if item, ok := m.objectList.SelectedItem().(objectItem); ok {
		return item.object.Name
	}
	return ""
}

func (m Model) handleDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "enter":
		m.state = StateBrowse
		m.detail = nil
		m.loadingDetail = false
	}
	return m, nil
}

func (m Model) handleSites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.state = StateBrowse
		m.status = ""
		return m, nil
	case "enter":
		if item, ok := m.siteList.SelectedItem().(siteItem); ok {
			site := item.site
			m.setSite(&site)
			m.status = successStyle.Render("Observing from " + site.Name)
		}
		return m, nil
	case "d":
		if item, ok := m.siteList.SelectedItem().(siteItem); ok {
			return m, deleteSite(m.deps.Sites, item.site.Name)
		}
		return m, nil
	case "a":
		if m.site == nil {
			m.status = warningStyle.Render("Location unavailable")
			return m, nil
		}
		m.state = StateSiteName
		m.nameInput.SetValue("")
		m.nameInput.Focus()
		return m, textinput.Blink
	}

	m.siteList, cmd = m.siteList.Update(msg)
	return m, cmd
}

func (m Model) handleSiteName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateSites
		m.nameInput.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			return m, nil
		}
		m.state = StateSites
		m.nameInput.Blur()
		return m, saveCurrentSite(m.deps.Sites, name, *m.site)
	}

	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// applyFilter rebuilds both lists from the base tables.
func (m *Model) applyFilter() {
	m.objectList.SetItems(objectItems(m.filter.Objects(m.objects)))
	m.suggestionList.SetItems(rowItems(report.Filter(m.rows, m.filter)))
}

func (m *Model) resizeLists() {
	w, h := m.width-4, m.height-8
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	m.objectList.SetSize(w, h)
	m.suggestionList.SetSize(w, h)
	m.siteList.SetSize(w, h)
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateProvisioning:
		return m.viewProvisioning()
	case StateSearch:
		return m.viewSearch()
	case StateLoading:
		return m.viewLoading()
	case StateBrowse:
		return m.viewBrowse()
	case StateDetail:
		return m.viewDetail()
	case StateSites, StateSiteName:
		return m.viewSites()
	case StateError:
		return m.viewError()
	}

	return ""
}
