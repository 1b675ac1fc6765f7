// Package cmd (sp_helpers.go) contains utilities shared by the 'sp'
// subcommands: app setup and argument parsing.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/spf13/cobra"
)

// setup initializes the app, requires a site and builds the printer.
func setup(cmd *cobra.Command) (*app.App, *ui.Printer, error) {
	a, err := app.NewApp(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app for '%s': %w", cmd.CommandPath(), err)
	}
	if _, err := a.Config.RequireSite(); err != nil {
		return nil, nil, err
	}
	out, err := ui.PrinterFor(cmd, a.Config.Output)
	if err != nil {
		return nil, nil, err
	}
	return a, out, nil
}

// parseID reads a numeric principal or group id argument.
func parseID(name, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative number", name, s)
	}
	return id, nil
}
