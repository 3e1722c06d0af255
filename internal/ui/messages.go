package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/geocoding"
	"github.com/ngmaloney/astroscope/internal/models"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/ngmaloney/astroscope/internal/sites"
	"go.uber.org/zap"
)

// Message types for async operations

// provisioningStartedMsg carries the channels of a running catalog import
type provisioningStartedMsg struct {
	progressChan chan string
	resultChan   chan error
}

// provisionStatusMsg is a progress line from the import
type provisionStatusMsg string

// provisionResultMsg is sent when the import finishes
type provisionResultMsg struct {
	err error
}

// catalogLoadedMsg is sent when the catalog has been read
type catalogLoadedMsg struct {
	objects []models.Object
	err     error
}

// reportLoadedMsg is sent when the suggestions report has been read
type reportLoadedMsg struct {
	rows []models.ReportRow
	err  error
}

// geocodeMsg is sent when geocoding completes
type geocodeMsg struct {
	location *geocoding.Location
	source   string
	err      error
}

// detailMsg is sent when an object's detail panel has been computed
type detailMsg struct {
	name   string
	object *models.Object
	now    *astro.Horizontal
	night  *report.Night
	err    error
}

type sitesFetchedMsg struct {
	sites []models.Site
	err   error
}

type siteSavedMsg struct {
	site *models.Site
	err  error
}

type siteDeletedMsg struct {
	name string
	err  error
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// startProvisioning runs the catalog import in the background and hands its
// channels to the model.
func startProvisioning(deps Deps) tea.Cmd {
	return func() tea.Msg {
		progressChan := make(chan string, 8)
		resultChan := make(chan error, 1)
		go func() {
			err := deps.Provisioner.Provision(context.Background(), deps.DB, false, progressChan)
			close(progressChan)
			resultChan <- err
		}()
		return provisioningStartedMsg{progressChan: progressChan, resultChan: resultChan}
	}
}

// waitForProvisionStatus relays the next progress line, or nothing once the channel closes.
func waitForProvisionStatus(progressChan <-chan string) tea.Cmd {
	return func() tea.Msg {
		status, ok := <-progressChan
		if !ok {
			return nil
		}
		return provisionStatusMsg(status)
	}
}

func waitForProvisionResult(resultChan <-chan error) tea.Cmd {
	return func() tea.Msg {
		return provisionResultMsg{err: <-resultChan}
	}
}

// loadCatalog reads the catalog through the version-keyed cache
func loadCatalog(cache *catalog.Cache) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		objects, err := cache.Objects(ctx)
		return catalogLoadedMsg{objects: objects, err: err}
	}
}

func loadReport(path string) tea.Cmd {
	return func() tea.Msg {
		rows, err := report.Load(path)
		return reportLoadedMsg{rows: rows, err: err}
	}
}

// geocodeLocation performs geocoding in the background
func geocodeLocation(geocoder Geocoder, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		location, err := geocoder.Geocode(ctx, query)
		return geocodeMsg{location: location, source: "geocoded", err: err}
	}
}

// locateByIP asks the IP geolocation provider for the current position
func locateByIP(locator Locator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		location, err := locator.Locate(ctx)
		return geocodeMsg{location: location, source: "ip", err: err}
	}
}

// computeDetail gathers everything the detail panel shows for one object.
// A missing site still yields the catalog data; only the sky position is skipped.
func computeDetail(deps Deps, name string, site *models.Site) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		msg := detailMsg{name: name}
		if deps.Finder != nil {
			if o, err := deps.Finder.Object(ctx, name); err == nil {
				msg.object = &o
			}
		}
		if deps.Resolver == nil {
			msg.err = errors.New("no resolver configured")
			return msg
		}

		pos, err := deps.Resolver.Resolve(ctx, name)
		if err != nil {
			deps.Logger.Debug("cannot resolve object", zap.String("name", name), zap.Error(err))
			msg.err = fmt.Errorf("resolving %s: %w", name, err)
			return msg
		}
		if site == nil {
			return msg
		}

		obs := astro.Observer{Lat: site.Latitude, Lon: site.Longitude, Name: site.Name}
		now := deps.Now()
		h := deps.Ephemeris.Position(pos, now, obs)
		msg.now = &h

		night := report.ComputeNight(deps.Ephemeris, pos, obs, astro.NearestMidnight(now), report.NightOptions{
			Thresholds: deps.Thresholds,
			Policy:     deps.Policy,
		})
		msg.night = &night
		return msg
	}
}

func fetchSavedSites(s *sites.Service) tea.Cmd {
	return func() tea.Msg {
		list, err := s.List(context.Background())
		return sitesFetchedMsg{sites: list, err: err}
	}
}

func saveCurrentSite(s *sites.Service, name string, current models.Site) tea.Cmd {
	return func() tea.Msg {
		site, err := s.SaveCurrent(context.Background(), name, current)
		return siteSavedMsg{site: site, err: err}
	}
}

func deleteSite(s *sites.Service, name string) tea.Cmd {
	return func() tea.Msg {
		err := s.Delete(context.Background(), name)
		return siteDeletedMsg{name: name, err: err}
	}
}

// isNoReport reports whether err means the suggestions file has not been built yet.
func isNoReport(err error) bool {
	return errors.Is(err, report.ErrNoReport)
}
