package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/astroscope/internal/catalog"
	"github.com/ngmaloney/astroscope/internal/database"
	"github.com/ngmaloney/astroscope/internal/geocoding"
	"github.com/ngmaloney/astroscope/internal/models"
	"github.com/ngmaloney/astroscope/internal/resolver"
	"github.com/ngmaloney/astroscope/internal/sites"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the components every command shares.
type app struct {
	db          *sql.DB
	store       *catalog.Store
	cache       *catalog.Cache
	provisioner *catalog.Provisioner
	geocoder    *geocoding.Geocoder
	locator     *geocoding.IPLocator
	sites       *sites.Service
	logger      *zap.Logger
}

func openApp(logger *zap.Logger) (*app, error) {
	db, err := database.Open(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, err
	}

	repo, err := sites.NewRepository(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing sites: %w", err)
	}

	store := catalog.NewStore(db)
	geocoder := geocoding.NewGeocoder(logger)
	return &app{
		db:          db,
		store:       store,
		cache:       catalog.NewCache(store),
		provisioner: catalog.NewProvisioner(cfg.Catalog.CSVURL, logger),
		geocoder:    geocoder,
		locator:     geocoding.NewIPLocator(logger),
		sites:       sites.NewService(repo, geocoder),
		logger:      logger,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) needsProvisioning() (bool, error) {
	needed, err := catalog.NeedsProvisioning(a.db)
	if err != nil {
		return false, fmt.Errorf("checking catalog: %w", err)
	}
	return needed, nil
}

// requireCatalog fails with a hint when the catalog has not been imported.
func (a *app) requireCatalog() error {
	needed, err := a.needsProvisioning()
	if err != nil {
		return err
	}
	if needed {
		return fmt.Errorf("%w: run `astroscope provision` first", catalog.ErrNotProvisioned)
	}
	return nil
}

// resolver builds the configured name resolver; kind overrides the config when set.
// Batch lookups go through the in-memory cache.
func (a *app) resolver(kind string) (resolver.Resolver, error) {
	if kind == "" {
		kind = cfg.Resolver.Kind
	}
	timeout, err := cfg.ResolverTimeout()
	if err != nil {
		return nil, err
	}
	return resolver.New(a.cache, resolver.Options{
		Kind:      kind,
		SesameURL: cfg.Resolver.SesameURL,
		Timeout:   timeout,
		Logger:    a.logger,
	})
}

// observerSite picks the observer from, in order: --lat/--lon, --location,
// --site, IP geolocation (when configured) and the config file.
func (a *app) observerSite(ctx context.Context, cmd *cobra.Command) (*models.Site, error) {
	flags := cmd.Flags()
	latSet, lonSet := flags.Changed("lat"), flags.Changed("lon")
	switch {
	case latSet != lonSet:
		return nil, errors.New("--lat and --lon must be given together")
	case latSet:
		if err := geocoding.ValidateCoordinates(latFlag, lonFlag); err != nil {
			return nil, err
		}
		return &models.Site{
			Name:      fmt.Sprintf("%.4f, %.4f", latFlag, lonFlag),
			Latitude:  latFlag,
			Longitude: lonFlag,
			Source:    "flag",
		}, nil
	}

	if locationFlag != "" {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		loc, err := a.geocoder.Geocode(ctx, locationFlag)
		if err != nil {
			return nil, fmt.Errorf("geocoding %q: %w", locationFlag, err)
		}
		return &models.Site{Name: loc.Name, Latitude: loc.Latitude, Longitude: loc.Longitude, Source: "geocoded"}, nil
	}

	if siteFlag != "" {
		site, err := a.sites.Get(ctx, siteFlag)
		if err != nil {
			return nil, fmt.Errorf("loading site %q: %w", siteFlag, err)
		}
		return site, nil
	}

	if cfg.Observer.UseIP {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		loc, err := a.locator.Locate(ctx)
		if err == nil {
			return &models.Site{Name: loc.Name, Latitude: loc.Latitude, Longitude: loc.Longitude, Source: "ip"}, nil
		}
		a.logger.Warn("ip geolocation failed, using configured observer", zap.Error(err))
	}

	name := cfg.Observer.Name
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", cfg.Observer.Latitude, cfg.Observer.Longitude)
	}
	return &models.Site{
		Name:      name,
		Latitude:  cfg.Observer.Latitude,
		Longitude: cfg.Observer.Longitude,
		Source:    "config",
	}, nil
}
