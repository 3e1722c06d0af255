package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// sitesCmd manages saved observing sites
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage saved observing sites",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sites",
	Args:  cobra.NoArgs,
	RunE:  runSitesList,
}

var sitesAddCmd = &cobra.Command{
	Use:   "add NAME [LOCATION]",
	Short: "Save a site",
	Long: `Saves LOCATION (geocoded, or "lat, lon") under NAME. Without LOCATION the
current observer from --lat/--lon, --location or the config file is saved.

Examples:
  astroscope sites add backyard "51.05, 3.72"
  astroscope sites add lowell "Flagstaff, AZ"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSitesAdd,
}

var sitesDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved site",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesDelete,
}

func init() {
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesAddCmd)
	sitesCmd.AddCommand(sitesDeleteCmd)
}

func runSitesList(cmd *cobra.Command, args []string) error {
	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.sites.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No saved sites.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "LATITUDE", "LONGITUDE")
	for _, s := range list {
		t.Row(s.Name, fmt.Sprintf("%.4f", s.Latitude), fmt.Sprintf("%.4f", s.Longitude))
	}
	fmt.Println(t.Render())
	return nil
}

func runSitesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	if len(args) == 2 {
		site, err := a.sites.Create(ctx, name, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s (%.4f, %.4f)\n", site.Name, site.Latitude, site.Longitude)
		return nil
	}

	current, err := a.observerSite(ctx, cmd)
	if err != nil {
		return err
	}
	site, err := a.sites.SaveCurrent(ctx, name, *current)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s (%.4f, %.4f)\n", site.Name, site.Latitude, site.Longitude)
	return nil
}

func runSitesDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sites.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
