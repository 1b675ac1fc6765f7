// Package cmd (graph.go) defines the Microsoft Graph commands: the signed-in
// user, user search and counts, and calendars.
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Work with Microsoft Graph users and calendars",
	Long:  `Provides commands to inspect the signed-in user, search and count users, and manage calendars, events and schedules.`,
}

var graphMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return graphMeLogic(cmd.Context(), a, out)
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Search and count users in the tenant",
}

var usersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search users by display name",
	Long:  `Searches the tenant's users by display name. Without a query the first page of users is listed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		top, _ := cmd.Flags().GetInt("top")
		return usersSearchLogic(cmd.Context(), a, out, query, top)
	},
}

var usersCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count users, optionally matching an OData filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		return usersCountLogic(cmd.Context(), a, out, filter)
	},
}

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "Inspect the signed-in user's calendars",
}

var calendarsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calendars",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return calendarsListLogic(cmd.Context(), a, out)
	},
}

// setup initializes the app and the printer for the configured output.
func setup(cmd *cobra.Command) (*app.App, *ui.Printer, error) {
	a, err := app.NewApp(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing app for '%s': %w", cmd.CommandPath(), err)
	}
	out, err := ui.PrinterFor(cmd, a.Config.Output)
	if err != nil {
		return nil, nil, err
	}
	return a, out, nil
}

func graphMeLogic(ctx context.Context, a *app.App, out *ui.Printer) error {
	user, err := a.SDK.Me(ctx)
	if err != nil {
		return fmt.Errorf("getting signed-in user: %w", err)
	}
	return out.Print(user, ui.UserTable(user))
}

func usersSearchLogic(ctx context.Context, a *app.App, out *ui.Printer, query string, top int) error {
	users, err := a.SDK.SearchUsers(ctx, query, top)
	if err != nil {
		return fmt.Errorf("searching users: %w", err)
	}
	return out.Print(users, ui.UsersTable(users))
}

func usersCountLogic(ctx context.Context, a *app.App, out *ui.Printer, filter string) error {
	n, err := a.SDK.CountUsers(ctx, filter)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	return out.Print(n, ui.ValueTable("Users", strconv.FormatInt(n, 10)))
}

func calendarsListLogic(ctx context.Context, a *app.App, out *ui.Printer) error {
	cals, err := a.SDK.ListCalendars(ctx)
	if err != nil {
		return fmt.Errorf("listing calendars: %w", err)
	}
	return out.Print(cals, ui.CalendarsTable(cals))
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphMeCmd)
	graphCmd.AddCommand(usersCmd)
	graphCmd.AddCommand(calendarsCmd)

	usersCmd.AddCommand(usersSearchCmd)
	usersCmd.AddCommand(usersCountCmd)
	calendarsCmd.AddCommand(calendarsListCmd)

	usersSearchCmd.Flags().Int("top", 0, "Maximum number of users to return")
	usersCountCmd.Flags().String("filter", "", "OData filter, e.g. \"accountEnabled eq true\"")
}
