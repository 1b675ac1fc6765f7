package graph

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

// fakeGraph serves canned responses keyed by "METHOD path" and records calls.
type fakeGraph struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]string
	status    map[string]int
}

func (f *fakeGraph) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone()}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &c.Body)
	}
	f.calls = append(f.calls, c)

	key := r.Method + " " + r.URL.Path
	if code, ok := f.status[key]; ok {
		w.WriteHeader(code)
	}
	if body, ok := f.responses[key]; ok {
		_, _ = w.Write([]byte(body))
	}
}

func newTestRoot(t *testing.T, f *fakeGraph) (*Root, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	exec := transport.New(transport.WithRetry(0, time.Millisecond, time.Millisecond), transport.WithRateLimit(0, 1))
	return New(exec, WithBaseURL(srv.URL+"/v1.0/")), srv
}

func TestHandleURLs(t *testing.T) {
	root := New(nil)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"me", root.Me().ToURL(), "https://graph.microsoft.com/v1.0/me"},
		{"user calendars", root.Users().GetByID("ann@contoso.com").Calendars().ToURL(), "https://graph.microsoft.com/v1.0/users/ann@contoso.com/calendars"},
		{"default calendar events", root.Me().Calendar().Events().ToURL(), "https://graph.microsoft.com/v1.0/me/calendar/events"},
		{"calendar by id", root.Me().Calendars().GetByID("AAMkAG").Events().GetByID("e1").ToURL(), "https://graph.microsoft.com/v1.0/me/calendars/AAMkAG/events/e1"},
		{
			"calendar view",
			root.Me().CalendarView(start, end).Top(5).ToURLAndQuery(),
			"https://graph.microsoft.com/v1.0/me/calendarView?startDateTime=2024-03-01T00%3A00%3A00Z&endDateTime=2024-03-02T00%3A00%3A00Z&$top=5",
		},
		{
			"instances",
			root.Me().Events().GetByID("e1").Instances(start, end).ToURLAndQuery(),
			"https://graph.microsoft.com/v1.0/me/events/e1/instances?startDateTime=2024-03-01T00%3A00%3A00Z&endDateTime=2024-03-02T00%3A00%3A00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestWindowKeepsOffsets(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, zone)
	view := New(nil).Me().CalendarView(start, start.Add(time.Hour))

	v, ok := view.Query().Get("startDateTime")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T09%3A00%3A00%2B01%3A00", v)
}

func TestEventsAddReturnsAddressedHandle(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{
		"POST /v1.0/me/events": `{"id":"42","subject":"Planning"}`,
	}}
	root, _ := newTestRoot(t, f)

	res, err := root.Me().Events().Add(context.Background(), EventInfo{
		Subject: "Planning",
		Start:   &DateTimeTimeZone{DateTime: "2024-03-01T09:00:00", TimeZone: "UTC"},
		End:     &DateTimeTimeZone{DateTime: "2024-03-01T10:00:00", TimeZone: "UTC"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Planning", res.Data.Subject)
	assert.Contains(t, res.Entity.ToURL(), "/me/events/42")
	require.Len(t, f.calls, 1, "the new handle must not cost a request")
	assert.Equal(t, "Planning", f.calls[0].Body["subject"])
	assert.NotContains(t, f.calls[0].Body, "id")
}

func TestEventUpdateReturnsSameHandle(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{
		"PATCH /v1.0/me/events/7": `{"id":"7","subject":"Renamed"}`,
	}}
	root, _ := newTestRoot(t, f)
	ev := root.Me().Events().GetByID("7")

	res, err := ev.Update(context.Background(), odata.Props{"subject": "Renamed"})
	require.NoError(t, err)
	assert.Same(t, ev, res.Entity)
	assert.Equal(t, "Renamed", res.Data.Subject)
	require.Len(t, f.calls, 1)
	assert.Equal(t, http.MethodPatch, f.calls[0].Method)
}

func TestEventDeleteAndNotFound(t *testing.T) {
	f := &fakeGraph{
		responses: map[string]string{
			"DELETE /v1.0/me/events/gone": `{"error":{"code":"ErrorItemNotFound","message":"not found"}}`,
		},
		status: map[string]int{
			"DELETE /v1.0/me/events/ok":   http.StatusNoContent,
			"DELETE /v1.0/me/events/gone": http.StatusNotFound,
		},
	}
	root, _ := newTestRoot(t, f)

	require.NoError(t, root.Me().Events().GetByID("ok").Delete(context.Background()))

	err := root.Me().Events().GetByID("gone").Delete(context.Background())
	assert.ErrorIs(t, err, transport.ErrResourceNotFound)
}

func TestGetSchedule(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{
		"POST /v1.0/me/calendar/getSchedule": `{"value":[{"scheduleId":"ann@contoso.com","availabilityView":"0120","scheduleItems":[{"status":"busy","start":{"dateTime":"2024-03-01T09:00:00","timeZone":"UTC"},"end":{"dateTime":"2024-03-01T10:00:00","timeZone":"UTC"}}]}]}`,
	}}
	root, _ := newTestRoot(t, f)

	info, err := root.Me().Calendar().GetSchedule(context.Background(), GetScheduleRequest{
		Schedules:                []string{"ann@contoso.com"},
		StartTime:                DateTimeTimeZone{DateTime: "2024-03-01T08:00:00", TimeZone: "UTC"},
		EndTime:                  DateTimeTimeZone{DateTime: "2024-03-01T10:00:00", TimeZone: "UTC"},
		AvailabilityViewInterval: 30,
	})
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Equal(t, "0120", info[0].AvailabilityView)
	assert.Equal(t, "busy", info[0].ScheduleItems[0].Status)
	assert.Equal(t, []any{"ann@contoso.com"}, f.calls[0].Body["schedules"])
	assert.EqualValues(t, 30, f.calls[0].Body["availabilityViewInterval"])
}

func TestUsersSearchAndCount(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{
		"GET /v1.0/users": `{"@odata.count": 3, "value":[{"id":"1","displayName":"Ann"}]}`,
	}}
	root, _ := newTestRoot(t, f)

	users := root.Users().Select("id", "displayName")
	found := users.Search(`"displayName:ann"`)

	list, err := found.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", list[0].DisplayName)

	n, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.Len(t, f.calls, 2)
	assert.Equal(t, `$select=id,displayName&$search=%22displayName:ann%22`, f.calls[0].Query)
	assert.Equal(t, "eventual", f.calls[0].Header.Get("ConsistencyLevel"))
	assert.Equal(t, "$select=id,displayName&$count=true&$top=1", f.calls[1].Query)
	assert.NotContains(t, users.ToURLAndQuery(), "$search")
}

func TestEventsCount(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{
		"GET /v1.0/me/events": `{"@odata.count": 12, "value":[{"id":"a"}]}`,
	}}
	root, _ := newTestRoot(t, f)

	n, err := root.Me().Events().Filter("isCancelled eq false").Top(50).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	require.Len(t, f.calls, 1)
	assert.Equal(t, "$filter=isCancelled%20eq%20false&$top=1&$count=true", f.calls[0].Query)
	assert.Equal(t, "eventual", f.calls[0].Header.Get("ConsistencyLevel"))
}

func TestEventsPagedFollowsNextLink(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{}}
	root, srv := newTestRoot(t, f)
	f.responses["GET /v1.0/me/events"] = `{"value":[{"id":"a"},{"id":"b"}],"@odata.nextLink":"` + srv.URL + `/v1.0/me/events/page2"}`
	f.responses["GET /v1.0/me/events/page2"] = `{"value":[{"id":"c"}]}`

	pager, err := root.Me().Events().OrderBy("start/dateTime", true).Top(2).Paged(context.Background())
	require.NoError(t, err)
	assert.True(t, pager.HasNext())
	assert.Len(t, pager.Results(), 2)

	next, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c", next[0].ID)
	assert.False(t, pager.HasNext())

	empty, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Len(t, f.calls, 2)
	assert.Equal(t, "$orderby=start%2FdateTime%20asc&$top=2", f.calls[0].Query)
}

func TestEventsAtResumesFromNextLink(t *testing.T) {
	f := &fakeGraph{responses: map[string]string{}}
	root, srv := newTestRoot(t, f)
	f.responses["GET /v1.0/me/events"] = `{"value":[{"id":"c"}]}`

	pager, err := root.EventsAt(srv.URL + "/v1.0/me/events?$skiptoken=abc&$top=2").Paged(context.Background())
	require.NoError(t, err)
	assert.False(t, pager.HasNext())
	assert.Equal(t, "c", pager.Results()[0].ID)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "$skiptoken=abc&$top=2", f.calls[0].Query)
}
