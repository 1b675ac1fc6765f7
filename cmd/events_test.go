package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/transport"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedCmd(t *testing.T, define func(*cobra.Command), args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{}
	define(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestEventQueryFromFlags(t *testing.T) {
	c := parsedCmd(t, addEventListFlags,
		"--calendar", "cal-1",
		"--select", "subject,start",
		"--orderby", "start/dateTime:desc",
		"--orderby", "subject",
		"--top", "5",
		"--start", "2026-03-01",
		"--end", "2026-03-08",
	)

	q, paging, err := eventQueryFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, "cal-1", q.CalendarID)
	assert.Equal(t, []string{"subject", "start"}, q.Select)
	assert.Equal(t, []string{"start/dateTime:desc", "subject"}, q.OrderBy)
	assert.Equal(t, 5, q.Top)
	assert.Equal(t, 5, paging.Top)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), q.Start)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), q.End)
}

func TestTimeWindowValidation(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "start only", args: []string{"--start", "2026-03-01"}, msg: "must be given together"},
		{name: "end before start", args: []string{"--start", "2026-03-08", "--end", "2026-03-01"}, msg: "--end must be after --start"},
		{name: "bad start", args: []string{"--start", "yesterday", "--end", "2026-03-01"}, msg: "--start"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := parsedCmd(t, addEventListFlags, tc.args...)
			_, _, err := eventQueryFromFlags(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestEventFromFlags(t *testing.T) {
	create := func(c *cobra.Command) { addEventFlags(c, true) }

	t.Run("IANA zone", func(t *testing.T) {
		c := parsedCmd(t, create,
			"--subject", "Planning",
			"--start", "2026-03-02T09:00",
			"--end", "2026-03-02T10:30",
			"--tz", "Europe/Helsinki",
			"--location", "Room 4",
			"--body", "Agenda to follow",
			"--attendee", "ada@contoso.com",
		)

		event, err := eventFromFlags(c)
		require.NoError(t, err)
		assert.Equal(t, "Planning", event.Subject)
		assert.Equal(t, &graph.DateTimeTimeZone{DateTime: "2026-03-02T09:00:00", TimeZone: "Europe/Helsinki"}, event.Start)
		assert.Equal(t, &graph.DateTimeTimeZone{DateTime: "2026-03-02T10:30:00", TimeZone: "Europe/Helsinki"}, event.End)
		assert.Equal(t, "Room 4", event.Location.DisplayName)
		assert.Equal(t, "Agenda to follow", event.Body.Content)
		require.Len(t, event.Attendees, 1)
		assert.Equal(t, "required", event.Attendees[0].Type)
		assert.Equal(t, "ada@contoso.com", event.Attendees[0].EmailAddress.Address)
	})

	t.Run("Windows zone passes through", func(t *testing.T) {
		c := parsedCmd(t, create,
			"--subject", "Sync",
			"--start", "2026-03-02 09:00",
			"--end", "2026-03-02 09:30",
			"--tz", "Pacific Standard Time",
		)

		event, err := eventFromFlags(c)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-02T09:00:00", event.Start.DateTime)
		assert.Equal(t, "Pacific Standard Time", event.Start.TimeZone)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := parsedCmd(t, create, "--start", "2026-03-02", "--end", "2026-03-03")
		_, err := eventFromFlags(c)
		assert.EqualError(t, err, "--subject is required")
	})

	t.Run("missing window", func(t *testing.T) {
		c := parsedCmd(t, create, "--subject", "Sync")
		_, err := eventFromFlags(c)
		assert.EqualError(t, err, "--start and --end are required")
	})
}

func TestEventPropsFromFlags(t *testing.T) {
	update := func(c *cobra.Command) { addEventFlags(c, false) }

	c := parsedCmd(t, update, "--subject", "Renamed", "--location", "")
	props, err := eventPropsFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, odata.Props{
		"subject":  "Renamed",
		"location": graph.Location{},
	}, props)

	c = parsedCmd(t, update, "--start", "2026-03-02T09:00", "--end", "2026-03-02T10:00")
	props, err = eventPropsFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, &graph.DateTimeTimeZone{DateTime: "2026-03-02T09:00:00", TimeZone: "UTC"}, props["start"])
	assert.Len(t, props, 2)

	c = parsedCmd(t, update)
	_, err = eventPropsFromFlags(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestScheduleRequestFromFlags(t *testing.T) {
	c := parsedCmd(t, addScheduleFlags, "--start", "2026-03-02T08:00", "--end", "2026-03-02T17:00", "--interval", "15")
	req, err := scheduleRequestFromFlags(c, []string{"ada@contoso.com", "room1@contoso.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@contoso.com", "room1@contoso.com"}, req.Schedules)
	assert.Equal(t, graph.DateTimeTimeZone{DateTime: "2026-03-02T08:00:00", TimeZone: "UTC"}, req.StartTime)
	assert.Equal(t, 15, req.AvailabilityViewInterval)

	c = parsedCmd(t, addScheduleFlags, "--start", "2026-03-02T08:00", "--end", "2026-03-02T17:00", "--interval", "2")
	_, err = scheduleRequestFromFlags(c, []string{"ada@contoso.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interval")
}

func TestEventsListLogic(t *testing.T) {
	t.Run("single page prints next link hint", func(t *testing.T) {
		mockSDK := &MockSDK{
			ListEventsFunc: func(ctx context.Context, q app.EventQuery, all bool, onPage func(n int)) (app.Page[graph.EventInfo], error) {
				assert.False(t, all)
				assert.Nil(t, onPage)
				return app.Page[graph.EventInfo]{
					Items: []graph.EventInfo{{
						ID:      "e1",
						Subject: "Standup",
						Start:   &graph.DateTimeTimeZone{DateTime: "2026-03-02T09:00:00.0000000", TimeZone: "UTC"},
					}},
					NextLink: "https://graph.microsoft.com/v1.0/me/events?$skip=1",
				}, nil
			},
		}

		output := captureOutput(t, func() {
			err := eventsListLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t), app.EventQuery{Top: 1}, ui.Paging{Top: 1})
			assert.NoError(t, err)
		})

		assert.Contains(t, output, "Standup")
		assert.Contains(t, output, "2026-03-02 09:00 UTC")
		assert.Contains(t, output, "--next 'https://graph.microsoft.com/v1.0/me/events?$skip=1'")
	})

	t.Run("all pages", func(t *testing.T) {
		mockSDK := &MockSDK{
			ListEventsFunc: func(ctx context.Context, q app.EventQuery, all bool, onPage func(n int)) (app.Page[graph.EventInfo], error) {
				assert.True(t, all)
				if assert.NotNil(t, onPage) {
					onPage(2)
					onPage(1)
				}
				return app.Page[graph.EventInfo]{Items: []graph.EventInfo{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}}, nil
			},
		}

		output := captureOutput(t, func() {
			err := eventsListLogic(context.Background(), newTestApp(mockSDK), jsonPrinter(t, "length"), app.EventQuery{}, ui.Paging{All: true})
			assert.NoError(t, err)
		})

		assert.Contains(t, output, "3\n")
		assert.NotContains(t, output, "Next page available")
	})
}

func TestEventsAddUpdateDeleteLogic(t *testing.T) {
	mockSDK := &MockSDK{
		AddEventFunc: func(ctx context.Context, calendarID string, event graph.EventInfo) (graph.EventInfo, error) {
			assert.Equal(t, "cal-1", calendarID)
			event.ID = "new-event"
			return event, nil
		},
		UpdateEventFunc: func(ctx context.Context, id string, props odata.Props) (graph.EventInfo, error) {
			return graph.EventInfo{ID: id, Subject: props["subject"].(string)}, nil
		},
		DeleteEventFunc: func(ctx context.Context, id string) error {
			if id == "gone" {
				return transport.ErrResourceNotFound
			}
			return nil
		},
	}
	a := newTestApp(mockSDK)
	ctx := context.Background()

	output := captureOutput(t, func() {
		assert.NoError(t, eventsAddLogic(ctx, a, jsonPrinter(t, ".id"), "cal-1", graph.EventInfo{Subject: "Retro"}))
	})
	assert.Equal(t, "\"new-event\"\n", output)

	output = captureOutput(t, func() {
		assert.NoError(t, eventsUpdateLogic(ctx, a, tablePrinter(t), "e1", odata.Props{"subject": "Retro v2"}))
	})
	assert.Contains(t, output, "Retro v2")

	output = captureOutput(t, func() {
		assert.NoError(t, eventsDeleteLogic(ctx, a, "e1"))
	})
	assert.Contains(t, output, "Event e1 deleted.")

	err := eventsDeleteLogic(ctx, a, "gone")
	assert.ErrorIs(t, err, transport.ErrResourceNotFound)
}

func TestScheduleLogic(t *testing.T) {
	mockSDK := &MockSDK{
		GetScheduleFunc: func(ctx context.Context, req graph.GetScheduleRequest) ([]graph.ScheduleInformation, error) {
			return []graph.ScheduleInformation{
				{ScheduleID: "ada@contoso.com", AvailabilityView: "0022", ScheduleItems: []graph.ScheduleItem{{Status: "busy"}}},
			}, nil
		},
	}

	output := captureOutput(t, func() {
		assert.NoError(t, scheduleLogic(context.Background(), newTestApp(mockSDK), tablePrinter(t), graph.GetScheduleRequest{}))
	})

	assert.Contains(t, output, "ada@contoso.com")
	assert.Contains(t, output, "0022")
}
