package sites

import (
	"context"
	"fmt"

	"github.com/ngmaloney/astroscope/internal/geocoding"
	"github.com/ngmaloney/astroscope/internal/models"
)

// Geocoder resolves free-form location input.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Location, error)
}

// Service orchestrates site operations
type Service struct {
	repo     *Repository
	geocoder Geocoder
}

// NewService creates a new site service
func NewService(repo *Repository, geocoder Geocoder) *Service {
	return &Service{repo: repo, geocoder: geocoder}
}

// Create geocodes the location input and saves it under name.
func (s *Service) Create(ctx context.Context, name, inputLocation string) (*models.Site, error) {
	loc, err := s.geocoder.Geocode(ctx, inputLocation)
	if err != nil {
		return nil, fmt.Errorf("geocoding location: %w", err)
	}
	if loc == nil {
		return nil, fmt.Errorf("location not found: %s", inputLocation)
	}

	site := &models.Site{
		Name:      name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
	if err := s.repo.Save(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// SaveCurrent stores an already-resolved site under a new name.
func (s *Service) SaveCurrent(ctx context.Context, name string, current models.Site) (*models.Site, error) {
	site := &models.Site{
		Name:      name,
		Latitude:  current.Latitude,
		Longitude: current.Longitude,
	}
	if err := s.repo.Save(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

func (s *Service) List(ctx context.Context) ([]models.Site, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, name string) (*models.Site, error) {
	return s.repo.Get(ctx, name)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}
