package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/spf13/cobra"
)

var windowDate string

// windowCmd prints tonight's observation window for one object
var windowCmd = &cobra.Command{
	Use:   "window NAME",
	Short: "Show the observation window of one object",
	Long: `Resolves NAME (designation, Messier number or, with the sesame resolver,
any name SIMBAD knows) and prints when it is observable on the dense grid.

Examples:
  astroscope window M31
  astroscope window "NGC 7000" --location "Flagstaff, AZ"`,
	Args: cobra.ExactArgs(1),
	RunE: runWindow,
}

func init() {
	windowCmd.Flags().StringVarP(&windowDate, "date", "d", "", "Night starting on this evening, YYYY-MM-DD (default tonight)")
}

func runWindow(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	now := time.Now()
	midnight, err := nightMidnight(windowDate, now)
	if err != nil {
		return err
	}

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	site, err := a.observerSite(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := a.resolver("")
	if err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	pos, err := res.Resolve(resolveCtx, name)
	if err != nil {
		return fmt.Errorf("cannot get object info for %s: %w", name, err)
	}

	if o, err := a.store.Object(ctx, name); err == nil {
		fmt.Printf("%s  %s in %s, magnitude %s\n", o.DisplayName(), o.Type, o.Constellation, o.MagnitudeString())
	} else {
		fmt.Println(name)
	}

	eph := astro.NewModel()
	obs := astro.Observer{Lat: site.Latitude, Lon: site.Longitude, Name: site.Name}
	if windowDate == "" {
		h := eph.Position(pos, now, obs)
		fmt.Printf("Now from %s: altitude %s, azimuth %s\n", site.Name, astro.FormatDMS(h.Alt), astro.FormatDMS(h.Az))
	}

	night := report.ComputeNight(eph, pos, obs, midnight, report.NightOptions{
		Thresholds: cfg.Thresholds(),
		Policy:     cfg.Policy(),
	})
	fmt.Println(night.Caption())
	if night.Visible {
		fmt.Printf("Duration: %.2fh\n", night.Window.Duration())
	}
	return nil
}
