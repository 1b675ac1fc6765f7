// Package cmd (sp_regional.go) defines the regional settings and time zone
// commands.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/spf13/cobra"
)

var regionalCmd = &cobra.Command{
	Use:   "regional",
	Short: "Inspect regional settings and convert times in the site's time zone",
}

var regionalLanguagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages installed on the site",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return regionalLanguagesLogic(cmd.Context(), a, out)
	},
}

var regionalTimeZoneCmd = &cobra.Command{
	Use:   "timezone",
	Short: "Show the site's time zone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return regionalTimeZoneLogic(cmd.Context(), a, out)
	},
}

var regionalTimeZonesCmd = &cobra.Command{
	Use:   "timezones",
	Short: "List every time zone SharePoint knows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		return regionalTimeZonesLogic(cmd.Context(), a, out)
	},
}

var regionalUTCToLocalCmd = &cobra.Command{
	Use:   "utc-to-local <time>",
	Short: "Convert a UTC time to the site's local time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		t, err := ui.ParseTime(args[0], time.UTC)
		if err != nil {
			return err
		}
		return regionalConvertLogic(cmd.Context(), a, out, t, true)
	},
}

var regionalLocalToUTCCmd = &cobra.Command{
	Use:   "local-to-utc <time>",
	Short: "Convert a wall-clock time in the site's time zone to UTC",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		t, err := ui.ParseTime(args[0], time.UTC)
		if err != nil {
			return err
		}
		return regionalConvertLogic(cmd.Context(), a, out, t, false)
	},
}

func regionalLanguagesLogic(ctx context.Context, a *app.App, out *ui.Printer) error {
	langs, err := a.SDK.InstalledLanguages(ctx)
	if err != nil {
		return fmt.Errorf("listing installed languages: %w", err)
	}
	return out.Print(langs, ui.LanguagesTable(langs))
}

func regionalTimeZoneLogic(ctx context.Context, a *app.App, out *ui.Printer) error {
	tz, err := a.SDK.TimeZone(ctx)
	if err != nil {
		return fmt.Errorf("getting time zone: %w", err)
	}
	return out.Print(tz, ui.TimeZonesTable([]sp.TimeZoneInfo{tz}))
}

func regionalTimeZonesLogic(ctx context.Context, a *app.App, out *ui.Printer) error {
	zones, err := a.SDK.TimeZones(ctx)
	if err != nil {
		return fmt.Errorf("listing time zones: %w", err)
	}
	return out.Print(zones, ui.TimeZonesTable(zones))
}

func regionalConvertLogic(ctx context.Context, a *app.App, out *ui.Printer, t time.Time, toLocal bool) error {
	var (
		converted string
		err       error
		label     = "UTC"
	)
	if toLocal {
		converted, err = a.SDK.UTCToLocal(ctx, t)
		label = "Local Time"
	} else {
		converted, err = a.SDK.LocalToUTC(ctx, t)
	}
	if err != nil {
		return fmt.Errorf("converting time: %w", err)
	}
	return out.Print(converted, ui.ValueTable(label, converted))
}
