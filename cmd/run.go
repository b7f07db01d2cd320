package cmd

import (
	"github.com/abhisek/cadence/internal/app"
	"github.com/spf13/cobra"
)

// runApp builds the review service and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := setup(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	return app.Run(cmd.Context(), app.Options{
		Service: d.service,
		Logger:  d.logger,
	})
}
