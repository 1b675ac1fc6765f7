package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/auth"
	"github.com/dheniges/pnp-client/internal/config"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/stretchr/testify/require"
)

// MockSDK implements the Graph half of app.SDK. SharePoint calls hit the
// embedded nil interface and panic, which no Graph command should reach.
type MockSDK struct {
	app.SDK

	MeFunc            func(ctx context.Context) (graph.UserInfo, error)
	SearchUsersFunc   func(ctx context.Context, query string, top int) ([]graph.UserInfo, error)
	CountUsersFunc    func(ctx context.Context, filter string) (int64, error)
	ListCalendarsFunc func(ctx context.Context) ([]graph.CalendarInfo, error)
	ListEventsFunc    func(ctx context.Context, q app.EventQuery, all bool, onPage func(n int)) (app.Page[graph.EventInfo], error)
	AddEventFunc      func(ctx context.Context, calendarID string, event graph.EventInfo) (graph.EventInfo, error)
	UpdateEventFunc   func(ctx context.Context, id string, props odata.Props) (graph.EventInfo, error)
	DeleteEventFunc   func(ctx context.Context, id string) error
	GetScheduleFunc   func(ctx context.Context, req graph.GetScheduleRequest) ([]graph.ScheduleInformation, error)
}

func (m *MockSDK) Me(ctx context.Context) (graph.UserInfo, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx)
	}
	return graph.UserInfo{}, nil
}

func (m *MockSDK) SearchUsers(ctx context.Context, query string, top int) ([]graph.UserInfo, error) {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, query, top)
	}
	return nil, nil
}

func (m *MockSDK) CountUsers(ctx context.Context, filter string) (int64, error) {
	if m.CountUsersFunc != nil {
		return m.CountUsersFunc(ctx, filter)
	}
	return 0, nil
}

func (m *MockSDK) ListCalendars(ctx context.Context) ([]graph.CalendarInfo, error) {
	if m.ListCalendarsFunc != nil {
		return m.ListCalendarsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSDK) ListEvents(ctx context.Context, q app.EventQuery, all bool, onPage func(n int)) (app.Page[graph.EventInfo], error) {
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc(ctx, q, all, onPage)
	}
	return app.Page[graph.EventInfo]{}, nil
}

func (m *MockSDK) AddEvent(ctx context.Context, calendarID string, event graph.EventInfo) (graph.EventInfo, error) {
	if m.AddEventFunc != nil {
		return m.AddEventFunc(ctx, calendarID, event)
	}
	return event, nil
}

func (m *MockSDK) UpdateEvent(ctx context.Context, id string, props odata.Props) (graph.EventInfo, error) {
	if m.UpdateEventFunc != nil {
		return m.UpdateEventFunc(ctx, id, props)
	}
	return graph.EventInfo{ID: id}, nil
}

func (m *MockSDK) DeleteEvent(ctx context.Context, id string) error {
	if m.DeleteEventFunc != nil {
		return m.DeleteEventFunc(ctx, id)
	}
	return nil
}

func (m *MockSDK) GetSchedule(ctx context.Context, req graph.GetScheduleRequest) ([]graph.ScheduleInformation, error) {
	if m.GetScheduleFunc != nil {
		return m.GetScheduleFunc(ctx, req)
	}
	return nil, nil
}

func newTestApp(sdk app.SDK) *app.App {
	return &app.App{
		SDK: sdk,
	}
}

// newAuthTestApp returns an app whose config and token store live in a
// temporary directory. A non-empty secret switches to app-only mode.
func newAuthTestApp(t *testing.T, sdk app.SDK, secret string) (*app.App, *config.TokenStore) {
	t.Helper()
	t.Setenv("PNP_CLIENT_SECRET", "")
	t.Setenv("PNP_SITE_URL", "")

	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	cfg.ClientSecret = secret

	store := config.NewTokenStore(dir)
	a := &app.App{
		Config: cfg,
		Auth:   auth.New(auth.Settings{Tenant: "contoso", ClientSecret: secret}, store),
		SDK:    sdk,
	}
	return a, store
}

func tablePrinter(t *testing.T) *ui.Printer {
	t.Helper()
	p, err := ui.NewPrinter("table", "")
	require.NoError(t, err)
	return p
}

func jsonPrinter(t *testing.T, query string) *ui.Printer {
	t.Helper()
	p, err := ui.NewPrinter("json", query)
	require.NoError(t, err)
	return p
}

// captureOutput captures stdout and stderr, returning them as a string.
// This version doesn't mutate global log state.
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	// Save original log output
	originalLogOutput := log.Writer()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	oldStderr := os.Stderr
	r2, w2, _ := os.Pipe()
	os.Stderr = w2
	log.SetOutput(w2)

	f()

	w.Close()
	w2.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	log.SetOutput(originalLogOutput)

	stdout, _ := io.ReadAll(r)
	stderr, _ := io.ReadAll(r2)

	return string(stdout) + string(stderr)
}
