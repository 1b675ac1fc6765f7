// Package cmd (events.go) defines the calendar event and schedule commands
// under 'graph'.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // --tz names resolve on hosts without a zoneinfo database

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/spf13/cobra"
)

// graphDateTime is the wall-clock layout Graph uses in dateTimeTimeZone values.
const graphDateTime = "2006-01-02T15:04:05"

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List and manage calendar events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events, or a calendar view between --start and --end",
	Long: `Lists events of the default calendar, or of --calendar. With both --start
and --end the listing becomes a calendar view, which expands recurring
events into their occurrences within the window.

--orderby takes "field", "field:asc" or "field:desc" and may be repeated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		q, paging, err := eventQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		return eventsListLogic(cmd.Context(), a, out, q, paging)
	},
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		calendarID, _ := cmd.Flags().GetString("calendar")
		event, err := eventFromFlags(cmd)
		if err != nil {
			return err
		}
		return eventsAddLogic(cmd.Context(), a, out, calendarID, event)
	},
}

var eventsUpdateCmd = &cobra.Command{
	Use:   "update <event-id>",
	Short: "Change an event's subject, location or time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		props, err := eventPropsFromFlags(cmd)
		if err != nil {
			return err
		}
		return eventsUpdateLogic(cmd.Context(), a, out, args[0], props)
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <event-id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return fmt.Errorf("initializing app for 'graph events delete': %w", err)
		}
		return eventsDeleteLogic(cmd.Context(), a, args[0])
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <email>...",
	Short: "Show free/busy availability for users, groups or rooms",
	Long: `Shows free/busy information between --start and --end. The availability
view has one digit per --interval minutes: 0 free, 1 tentative, 2 busy,
3 out of office, 4 working elsewhere.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, out, err := setup(cmd)
		if err != nil {
			return err
		}
		req, err := scheduleRequestFromFlags(cmd, args)
		if err != nil {
			return err
		}
		return scheduleLogic(cmd.Context(), a, out, req)
	},
}

// timeWindow reads --start and --end; both or neither must be set.
func timeWindow(cmd *cobra.Command, loc *time.Location) (time.Time, time.Time, error) {
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")
	if startFlag == "" && endFlag == "" {
		return time.Time{}, time.Time{}, nil
	}
	if startFlag == "" || endFlag == "" {
		return time.Time{}, time.Time{}, errors.New("--start and --end must be given together")
	}
	start, err := ui.ParseTime(startFlag, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	end, err := ui.ParseTime(endFlag, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.New("--end must be after --start")
	}
	return start, end, nil
}

func eventQueryFromFlags(cmd *cobra.Command) (app.EventQuery, ui.Paging, error) {
	paging, err := ui.ParsePagingFlags(cmd)
	if err != nil {
		return app.EventQuery{}, paging, err
	}
	start, end, err := timeWindow(cmd, nil)
	if err != nil {
		return app.EventQuery{}, paging, err
	}
	q := app.EventQuery{Top: paging.Top, Next: paging.Next, Start: start, End: end}
	q.CalendarID, _ = cmd.Flags().GetString("calendar")
	q.Select, _ = cmd.Flags().GetStringSlice("select")
	q.Filter, _ = cmd.Flags().GetString("filter")
	q.OrderBy, _ = cmd.Flags().GetStringArray("orderby")
	return q, paging, nil
}

func eventsListLogic(ctx context.Context, a *app.App, out *ui.Printer, q app.EventQuery, paging ui.Paging) error {
	var onPage func(int)
	if paging.All {
		bar := ui.NewProgressBar(-1, "Fetching events")
		defer func() { _ = bar.Finish() }()
		onPage = func(n int) { _ = bar.Add(n) }
	}
	page, err := a.SDK.ListEvents(ctx, q, paging.All, onPage)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	if err := out.Print(page.Items, ui.EventsTable(page.Items)); err != nil {
		return err
	}
	ui.HandleNextPageInfo(page.NextLink, paging.All)
	return nil
}

// timeZoneFlag returns the --tz name and the location times are read in.
// Windows zone names such as "Pacific Standard Time" are passed through to
// Graph unchanged; times are then taken as given.
func timeZoneFlag(cmd *cobra.Command) (string, *time.Location) {
	tz, _ := cmd.Flags().GetString("tz")
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return tz, time.UTC
	}
	return tz, loc
}

func dateTimeTimeZone(t time.Time, tz string) *graph.DateTimeTimeZone {
	return &graph.DateTimeTimeZone{DateTime: t.Format(graphDateTime), TimeZone: tz}
}

func eventFromFlags(cmd *cobra.Command) (graph.EventInfo, error) {
	subject, _ := cmd.Flags().GetString("subject")
	if subject == "" {
		return graph.EventInfo{}, errors.New("--subject is required")
	}
	tz, loc := timeZoneFlag(cmd)
	start, end, err := timeWindow(cmd, loc)
	if err != nil {
		return graph.EventInfo{}, err
	}
	if start.IsZero() {
		return graph.EventInfo{}, errors.New("--start and --end are required")
	}

	event := graph.EventInfo{
		Subject: subject,
		Start:   dateTimeTimeZone(start.In(loc), tz),
		End:     dateTimeTimeZone(end.In(loc), tz),
	}
	if where, _ := cmd.Flags().GetString("location"); where != "" {
		event.Location = &graph.Location{DisplayName: where}
	}
	if body, _ := cmd.Flags().GetString("body"); body != "" {
		event.Body = &graph.ItemBody{ContentType: "text", Content: body}
	}
	attendees, _ := cmd.Flags().GetStringSlice("attendee")
	for _, addr := range attendees {
		event.Attendees = append(event.Attendees, graph.Attendee{
			Type:         "required",
			EmailAddress: graph.EmailAddress{Address: addr},
		})
	}
	return event, nil
}

func eventPropsFromFlags(cmd *cobra.Command) (odata.Props, error) {
	props := odata.Props{}
	if cmd.Flags().Changed("subject") {
		props["subject"], _ = cmd.Flags().GetString("subject")
	}
	if cmd.Flags().Changed("location") {
		where, _ := cmd.Flags().GetString("location")
		props["location"] = graph.Location{DisplayName: where}
	}
	tz, loc := timeZoneFlag(cmd)
	start, end, err := timeWindow(cmd, loc)
	if err != nil {
		return nil, err
	}
	if !start.IsZero() {
		props["start"] = dateTimeTimeZone(start.In(loc), tz)
		props["end"] = dateTimeTimeZone(end.In(loc), tz)
	}
	if len(props) == 0 {
		return nil, errors.New("nothing to update: pass --subject, --location or --start/--end")
	}
	return props, nil
}

func eventsAddLogic(ctx context.Context, a *app.App, out *ui.Printer, calendarID string, event graph.EventInfo) error {
	created, err := a.SDK.AddEvent(ctx, calendarID, event)
	if err != nil {
		return err
	}
	return out.Print(created, ui.EventTable(created))
}

func eventsUpdateLogic(ctx context.Context, a *app.App, out *ui.Printer, id string, props odata.Props) error {
	updated, err := a.SDK.UpdateEvent(ctx, id, props)
	if err != nil {
		return err
	}
	return out.Print(updated, ui.EventTable(updated))
}

func eventsDeleteLogic(ctx context.Context, a *app.App, id string) error {
	if err := a.SDK.DeleteEvent(ctx, id); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Event %s deleted.", id))
	return nil
}

func scheduleRequestFromFlags(cmd *cobra.Command, schedules []string) (graph.GetScheduleRequest, error) {
	tz, loc := timeZoneFlag(cmd)
	start, end, err := timeWindow(cmd, loc)
	if err != nil {
		return graph.GetScheduleRequest{}, err
	}
	if start.IsZero() {
		return graph.GetScheduleRequest{}, errors.New("--start and --end are required")
	}
	interval, _ := cmd.Flags().GetInt("interval")
	if interval != 0 && (interval < 5 || interval > 1440) {
		return graph.GetScheduleRequest{}, errors.New("--interval must be between 5 and 1440 minutes")
	}
	return graph.GetScheduleRequest{
		Schedules:                schedules,
		StartTime:                *dateTimeTimeZone(start.In(loc), tz),
		EndTime:                  *dateTimeTimeZone(end.In(loc), tz),
		AvailabilityViewInterval: interval,
	}, nil
}

func scheduleLogic(ctx context.Context, a *app.App, out *ui.Printer, req graph.GetScheduleRequest) error {
	info, err := a.SDK.GetSchedule(ctx, req)
	if err != nil {
		return fmt.Errorf("getting schedule: %w", err)
	}
	return out.Print(info, ui.ScheduleTable(info))
}

// addEventFlags defines the flags eventFromFlags and eventPropsFromFlags
// read. create adds the flags only 'events add' takes.
func addEventFlags(c *cobra.Command, create bool) {
	c.Flags().String("subject", "", "Event subject")
	c.Flags().String("location", "", "Location display name")
	c.Flags().String("start", "", "Start time")
	c.Flags().String("end", "", "End time")
	c.Flags().String("tz", "UTC", "IANA or Windows time zone of --start and --end")
	if create {
		c.Flags().String("calendar", "", "Calendar ID (default calendar when empty)")
		c.Flags().String("body", "", "Plain text body")
		c.Flags().StringSlice("attendee", nil, "Required attendee email; repeatable")
	}
}

func addEventListFlags(c *cobra.Command) {
	ui.AddPagingFlags(c)
	c.Flags().String("calendar", "", "Calendar ID (default calendar when empty)")
	c.Flags().StringSlice("select", nil, "Properties to return, e.g. subject,start,end")
	c.Flags().String("filter", "", "OData filter")
	c.Flags().StringArray("orderby", nil, "Sort clause field[:asc|:desc]; repeatable")
	c.Flags().String("start", "", "Start of a calendar view window")
	c.Flags().String("end", "", "End of a calendar view window")
}

func addScheduleFlags(c *cobra.Command) {
	c.Flags().String("start", "", "Start of the period")
	c.Flags().String("end", "", "End of the period")
	c.Flags().String("tz", "UTC", "IANA or Windows time zone of --start and --end")
	c.Flags().Int("interval", 0, "Availability slot length in minutes (5 to 1440)")
}

func init() {
	graphCmd.AddCommand(eventsCmd)
	graphCmd.AddCommand(scheduleCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsUpdateCmd)
	eventsCmd.AddCommand(eventsDeleteCmd)

	addEventListFlags(eventsListCmd)
	addEventFlags(eventsAddCmd, true)
	addEventFlags(eventsUpdateCmd, false)
	addScheduleFlags(scheduleCmd)
}
