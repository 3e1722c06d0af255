package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/astroscope/internal/config"
	"github.com/ngmaloney/astroscope/internal/logging"
	"github.com/ngmaloney/astroscope/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath   string
	verbose      bool
	latFlag      float64
	lonFlag      float64
	locationFlag string
	siteFlag     string
	reportFlag   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "astroscope",
	Short: "Astroscope - what to point your telescope at tonight",
	Long: `Astroscope ranks deep-sky objects from the OpenNGC catalog by when
they sit comfortably high in a dark sky at your location.

Run without arguments to start the interactive dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if reportFlag != "" {
			cfg.Report.Path = reportFlag
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		opts := logging.Options{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: verbose,
		}
		// The dashboard owns the terminal, so it logs to a file
		if cmd == cmd.Root() {
			opts.File = cfg.Logging.File
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Float64Var(&latFlag, "lat", 0, "Observer latitude in degrees (requires --lon)")
	rootCmd.PersistentFlags().Float64Var(&lonFlag, "lon", 0, "Observer longitude in degrees, east positive (requires --lat)")
	rootCmd.PersistentFlags().StringVarP(&locationFlag, "location", "l", "", "Observer location to geocode (city, address or \"lat, lon\")")
	rootCmd.PersistentFlags().StringVarP(&siteFlag, "site", "s", "", "Name of a saved observing site")
	rootCmd.PersistentFlags().StringVar(&reportFlag, "report", "", "Suggestions report path (default from config)")

	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(sitesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runDashboard starts the interactive TUI
func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	needsProvisioning, err := a.needsProvisioning()
	if err != nil {
		return err
	}

	// A location that cannot be found only disables visibility output
	site, err := a.observerSite(cmd.Context(), cmd)
	if err != nil {
		logger.Warn("observer location unavailable", zap.Error(err))
		site = nil
	}

	res, err := a.resolver("")
	if err != nil {
		return err
	}

	model := ui.NewModel(ui.Deps{
		DB:                a.db,
		NeedsProvisioning: needsProvisioning,
		Provisioner:       a.provisioner,
		Cache:             a.cache,
		Finder:            a.store,
		Resolver:          res,
		Geocoder:          a.geocoder,
		Locator:           a.locator,
		Sites:             a.sites,
		Thresholds:        cfg.Thresholds(),
		Policy:            cfg.Policy(),
		ReportPath:        cfg.Report.Path,
		Site:              site,
		Logger:            logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
