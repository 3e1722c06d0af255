package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var provisionForce bool

// provisionCmd downloads and imports the OpenNGC catalog
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Download and import the OpenNGC catalog",
	Args:  cobra.NoArgs,
	RunE:  runProvision,
}

func init() {
	provisionCmd.Flags().BoolVarP(&provisionForce, "force", "f", false, "Re-download even when the catalog is already imported")
}

func runProvision(cmd *cobra.Command, args []string) error {
	a, err := openApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	progress := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range progress {
			fmt.Println(msg)
		}
	}()

	err = a.provisioner.Provision(cmd.Context(), a.db, provisionForce, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("provisioning catalog: %w", err)
	}
	a.cache.Invalidate()
	return nil
}
