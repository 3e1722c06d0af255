// Package report builds the suggestions report: every catalog object with a
// usable visibility window tonight, brightest first.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/models"
	"github.com/ngmaloney/astroscope/internal/resolver"
	"github.com/ngmaloney/astroscope/internal/visibility"
	"go.uber.org/zap"
)

// DefaultMinDuration is the shortest window, in hours, kept in the report.
const DefaultMinDuration = 1.0

// ObjectLister provides the objects to scan. catalog.Store and catalog.Cache implement it.
type ObjectLister interface {
	Objects(ctx context.Context) ([]models.Object, error)
}

// Builder computes report rows for one site and night.
type Builder struct {
	objects   ObjectLister
	resolver  resolver.Resolver
	ephemeris astro.Ephemeris
	logger    *zap.Logger

	Grid        visibility.TimeGrid
	Thresholds  visibility.Thresholds
	Policy      visibility.Policy
	MinDuration float64

	// Progress, when set, is called after each candidate object.
	Progress func(done, total int)
}

// NewBuilder creates a builder with the sparse grid and default thresholds.
func NewBuilder(objects ObjectLister, res resolver.Resolver, eph astro.Ephemeris, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		objects:     objects,
		resolver:    res,
		ephemeris:   eph,
		logger:      logger,
		Grid:        visibility.SparseGrid(),
		Thresholds:  visibility.DefaultThresholds(),
		Policy:      visibility.PolicySpan,
		MinDuration: DefaultMinDuration,
	}
}

// Build scans the catalog for the night centered on midnight.
// Objects without a visual magnitude are not considered; objects whose
// position cannot be resolved are skipped.
func (b *Builder) Build(ctx context.Context, site models.Site, midnight time.Time) ([]models.ReportRow, error) {
	objects, err := b.objects.Objects(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	var candidates []models.Object
	for _, o := range objects {
		if o.HasVMag {
			candidates = append(candidates, o)
		}
	}

	obs := astro.Observer{Lat: site.Latitude, Lon: site.Longitude, Name: site.Name}
	times := b.Grid.Times(midnight)
	sunAlts := astro.SunTrack(b.ephemeris, times, obs)

	b.logger.Info("building report",
		zap.String("site", site.Name),
		zap.Time("midnight", midnight),
		zap.Int("candidates", len(candidates)),
		zap.Int("grid_points", len(b.Grid)),
	)

	var rows []models.ReportRow
	skipped := 0
	for i, o := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, ok, err := b.row(ctx, o, times, sunAlts, obs)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			skipped++
			b.logger.Debug("skipping unresolved object", zap.String("name", o.Name), zap.Error(err))
		} else if ok {
			rows = append(rows, row)
		}

		if b.Progress != nil {
			b.Progress(i+1, len(candidates))
		}
	}

	Sort(rows)
	b.logger.Info("report built", zap.Int("rows", len(rows)), zap.Int("skipped", skipped))
	return rows, nil
}

func (b *Builder) row(ctx context.Context, o models.Object, times []time.Time, sunAlts []float64, obs astro.Observer) (models.ReportRow, bool, error) {
	pos, err := b.resolver.Resolve(ctx, o.Name)
	if err != nil {
		return models.ReportRow{}, false, err
	}

	alts, _ := astro.Track(b.ephemeris, pos, times, obs)
	w, ok := visibility.ComputeWindowWithPolicy(alts, sunAlts, b.Grid, b.Thresholds, b.Policy)
	if !ok {
		return models.ReportRow{}, false, nil
	}
	d := w.Duration()
	if d < b.MinDuration {
		return models.ReportRow{}, false, nil
	}

	return models.ReportRow{
		Name:          o.Name,
		Type:          o.Type,
		Constellation: o.Constellation,
		Rise:          w.Start(),
		Set:           w.End(),
		Duration:      d,
		Magnitude:     o.VMag,
	}, true, nil
}

// Sort orders rows by ascending magnitude, ties by name. It is stable.
func Sort(rows []models.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Magnitude != rows[j].Magnitude {
			return rows[i].Magnitude < rows[j].Magnitude
		}
		return rows[i].Name < rows[j].Name
	})
}

