package sites

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ngmaloney/astroscope/internal/database"
	"github.com/ngmaloney/astroscope/internal/geocoding"
	"github.com/ngmaloney/astroscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "sites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo
}

func TestRepository_SaveListGetDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sites, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sites)

	home := &models.Site{Name: "Home", Latitude: 51.053822, Longitude: 3.722270}
	require.NoError(t, repo.Save(ctx, home))
	assert.NotZero(t, home.ID)
	assert.False(t, home.CreatedAt.IsZero())

	require.NoError(t, repo.Save(ctx, &models.Site{Name: "Ardennes", Latitude: 50.2, Longitude: 5.5}))

	sites, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "Ardennes", sites[0].Name, "sites are ordered by name")
	assert.Equal(t, "saved", sites[1].Source)

	got, err := repo.Get(ctx, "Home")
	require.NoError(t, err)
	assert.Equal(t, home.ID, got.ID)
	assert.InDelta(t, 3.722270, got.Longitude, 1e-9)

	require.NoError(t, repo.Delete(ctx, "Home"))
	_, err = repo.Get(ctx, "Home")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Delete(ctx, "Home")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_SaveUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &models.Site{Name: "Home", Latitude: 1, Longitude: 2}
	require.NoError(t, repo.Save(ctx, first))

	second := &models.Site{Name: "Home", Latitude: 3, Longitude: 4}
	require.NoError(t, repo.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	sites, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, 3.0, sites[0].Latitude)
}

func TestRepository_SaveRejectsEmptyName(t *testing.T) {
	repo := newTestRepo(t)
	assert.Error(t, repo.Save(context.Background(), &models.Site{Name: "  "}))
}

type fakeGeocoder struct {
	loc *geocoding.Location
	err error
}

func (f fakeGeocoder) Geocode(context.Context, string) (*geocoding.Location, error) {
	return f.loc, f.err
}

func TestService_Create(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	svc := NewService(repo, fakeGeocoder{loc: &geocoding.Location{Latitude: 51.05, Longitude: 3.72, Name: "Gent"}})
	site, err := svc.Create(ctx, "Ghent", "Ghent, Belgium")
	require.NoError(t, err)
	assert.Equal(t, "Ghent", site.Name)
	assert.Equal(t, 51.05, site.Latitude)

	got, err := svc.Get(ctx, "Ghent")
	require.NoError(t, err)
	assert.Equal(t, site.ID, got.ID)

	failing := NewService(repo, fakeGeocoder{err: geocoding.ErrNoLocation})
	_, err = failing.Create(ctx, "Nowhere", "Atlantis")
	assert.True(t, errors.Is(err, geocoding.ErrNoLocation))
}

func TestService_SaveCurrent(t *testing.T) {
	svc := NewService(newTestRepo(t), fakeGeocoder{})
	ctx := context.Background()

	site, err := svc.SaveCurrent(ctx, "Backyard", models.Site{Name: "51.0500, 3.7200", Latitude: 51.05, Longitude: 3.72, Source: "ip"})
	require.NoError(t, err)
	assert.Equal(t, "saved", site.Source)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, svc.Delete(ctx, "Backyard"))
}
