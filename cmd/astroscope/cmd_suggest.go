package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	suggestOut      string
	suggestDate     string
	suggestResolver string
)

// suggestCmd builds the suggestions report
var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Build the suggestions report for one night",
	Long: `Computes the observation window of every catalog object with a known
magnitude and writes those visible for at least an hour to a CSV file,
brightest first.

Examples:
  astroscope suggest --location "Ghent, Belgium"
  astroscope suggest --lat 51.05 --lon 3.72 --date 2024-10-01 --out tonight.csv`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestOut, "out", "o", "", "Output CSV path (default from --report or config)")
	suggestCmd.Flags().StringVarP(&suggestDate, "date", "d", "", "Night starting on this evening, YYYY-MM-DD (default tonight)")
	suggestCmd.Flags().StringVar(&suggestResolver, "resolver", "", "Name resolver: catalog, sesame or chain (default from config)")
}

// nightMidnight returns the midnight that ends the evening of date, or the
// nearest midnight to now when date is empty.
func nightMidnight(date string, now time.Time) (time.Time, error) {
	if date == "" {
		return astro.NearestMidnight(now), nil
	}
	d, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", date, err)
	}
	return d.AddDate(0, 0, 1), nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	midnight, err := nightMidnight(suggestDate, time.Now())
	if err != nil {
		return err
	}

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireCatalog(); err != nil {
		return err
	}
	site, err := a.observerSite(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := a.resolver(suggestResolver)
	if err != nil {
		return err
	}

	b := report.NewBuilder(a.cache, res, astro.NewModel(), logger)
	b.Thresholds = cfg.Thresholds()
	b.Policy = cfg.Policy()
	b.MinDuration = cfg.Visibility.MinDuration
	b.Progress = func(done, total int) {
		if done == total || done%100 == 0 {
			fmt.Fprintf(os.Stderr, "\r%d/%d objects", done, total)
		}
	}

	logger.Info("building suggestions",
		zap.String("site", site.Name),
		zap.Time("midnight", midnight),
		zap.String("policy", b.Policy.String()),
	)
	rows, err := b.Build(ctx, *site, midnight)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("building suggestions: %w", err)
	}

	out := suggestOut
	if out == "" {
		out = cfg.Report.Path
	}
	if err := report.Save(out, rows); err != nil {
		return err
	}

	fmt.Printf("Wrote %d objects observable from %s to %s\n", len(rows), site.Name, out)
	return nil
}
