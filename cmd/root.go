// Package cmd (root.go) defines the root command for the pnp CLI. It sets
// up the global flags, dumps request metrics after a command when asked to,
// and registers the command groups.
package cmd

import (
	"fmt"
	"os"

	cmdSP "github.com/dheniges/pnp-client/cmd/sp"
	"github.com/dheniges/pnp-client/internal/app"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pnp",
	Short: "A CLI client for Microsoft Graph and SharePoint",
	Long: `pnp is a command-line interface to Microsoft Graph and SharePoint Online.

Current capabilities include:
  - Authentication management (device code, browser and app-only login)
  - Users: the signed-in profile, search and counts
  - Calendars, events, calendar views and free/busy schedules
  - SharePoint site groups and their members
  - SharePoint fields, including bulk provisioning from a YAML file
  - SharePoint regional settings and time zone conversions

Results print as tables by default; use --output json|yaml and --query to
shape them for scripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("metrics-out")
		if path == "" {
			return nil
		}
		return app.WriteMetrics(path)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command and exits non-zero on failure. This is
// called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug logging of requests and authentication")
	flags.String("config", "", "Config file (default is $HOME/.pnp-client/config.yaml)")
	flags.String("site", "", "SharePoint site URL, e.g. https://contoso.sharepoint.com/sites/dev")
	flags.StringP("output", "o", "table", "Output format: table, json or yaml")
	flags.StringP("query", "q", "", "jq expression applied to the JSON form of the result")
	flags.String("metrics-out", "", "Write request metrics in Prometheus text format to this file on exit")

	cmdSP.InitSPCommands(rootCmd)
}
