package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ngmaloney/astroscope/internal/config"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/ngmaloney/astroscope/internal/sites"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupCLI points the globals at a temporary workspace.
func setupCLI(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()

	ws := t.TempDir()
	cfg = config.DefaultConfig()
	cfg.Catalog.DatabasePath = filepath.Join(ws, "astroscope.db")
	cfg.Report.Path = filepath.Join(ws, "objects.csv")

	latFlag, lonFlag = 0, 0
	locationFlag, siteFlag = "", ""
	suggestOut, suggestDate, suggestResolver = "", "", ""
	provisionForce = false
	return ws
}

// newTestCmd returns a command carrying the observer flags.
func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Float64Var(&latFlag, "lat", 0, "")
	cmd.Flags().Float64Var(&lonFlag, "lon", 0, "")
	cmd.SetContext(context.Background())
	return cmd
}

func TestNightMidnight(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2024, 10, 1, 21, 30, 0, 0, loc)

	tests := []struct {
		name    string
		date    string
		want    time.Time
		wantErr bool
	}{
		{"tonight", "", time.Date(2024, 10, 2, 0, 0, 0, 0, loc), false},
		{"explicit", "2024-12-31", time.Date(2025, 1, 1, 0, 0, 0, 0, loc), false},
		{"bad", "31/12/2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nightMidnight(tt.date, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("nightMidnight(%q) err = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("nightMidnight(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestObserverSite(t *testing.T) {
	setupCLI(t)
	a, err := openApp(logger)
	require.NoError(t, err)
	defer a.Close()

	cmd := newTestCmd()
	site, err := a.observerSite(cmd.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "Ghent", site.Name)
	assert.Equal(t, "config", site.Source)

	require.NoError(t, cmd.Flags().Set("lat", "-33.86"))
	_, err = a.observerSite(cmd.Context(), cmd)
	assert.ErrorContains(t, err, "--lat and --lon")

	require.NoError(t, cmd.Flags().Set("lon", "151.21"))
	site, err = a.observerSite(cmd.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "flag", site.Source)
	assert.InDelta(t, 151.21, site.Longitude, 1e-9)

	cmd = newTestCmd()
	locationFlag = "40.0, -105.27"
	site, err = a.observerSite(cmd.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "geocoded", site.Source)
	assert.Equal(t, "40.0000, -105.2700", site.Name)

	locationFlag = ""
	siteFlag = "nowhere"
	_, err = a.observerSite(cmd.Context(), cmd)
	assert.ErrorIs(t, err, sites.ErrNotFound)
}

func TestSitesCommands(t *testing.T) {
	setupCLI(t)
	cmd := newTestCmd()

	require.NoError(t, runSitesAdd(cmd, []string{"backyard", "51.05, 3.72"}))
	require.NoError(t, runSitesList(cmd, nil))

	siteFlag = "backyard"
	a, err := openApp(logger)
	require.NoError(t, err)
	site, err := a.observerSite(cmd.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "backyard", site.Name)
	assert.Equal(t, "saved", site.Source)
	a.Close()

	require.NoError(t, runSitesDelete(cmd, []string{"backyard"}))
	assert.ErrorIs(t, runSitesDelete(cmd, []string{"backyard"}), sites.ErrNotFound)
}

func TestProvisionAndSuggest(t *testing.T) {
	ws := setupCLI(t)

	csv, err := os.ReadFile(filepath.Join("..", "..", "internal", "catalog", "testdata", "NGC_sample.csv"))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(csv)
	}))
	defer server.Close()
	cfg.Catalog.CSVURL = server.URL + "/NGC.csv"

	cmd := newTestCmd()

	// Suggesting before provisioning explains what to do
	err = runSuggest(cmd, nil)
	assert.ErrorContains(t, err, "astroscope provision")

	require.NoError(t, runProvision(cmd, nil))

	suggestDate = "2024-10-01"
	suggestOut = filepath.Join(ws, "out", "tonight.csv")
	require.NoError(t, runSuggest(cmd, nil))

	rows, err := report.Load(suggestOut)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	var names []string
	for i, r := range rows {
		assert.GreaterOrEqual(t, r.Duration, report.DefaultMinDuration)
		if i > 0 {
			assert.LessOrEqual(t, rows[i-1].Magnitude, r.Magnitude)
		}
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "NGC0224")
	assert.NotContains(t, names, "IC0434")

	windowDate = "2024-10-01"
	defer func() { windowDate = "" }()
	assert.NoError(t, runWindow(cmd, []string{"M31"}))
	assert.Error(t, runWindow(cmd, []string{"NGC9999"}))
}
