package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/dheniges/pnp-client/internal/app"
	"github.com/dheniges/pnp-client/internal/ui"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/stretchr/testify/require"
)

// MockSDK implements the SharePoint half of app.SDK. Graph calls hit the
// embedded nil interface and panic, which no site command should reach.
type MockSDK struct {
	app.SDK

	ListSiteGroupsFunc     func(ctx context.Context) ([]sp.SiteGroupInfo, error)
	AddSiteGroupFunc       func(ctx context.Context, title, description string) (sp.SiteGroupInfo, error)
	UpdateSiteGroupFunc    func(ctx context.Context, id int, props odata.Props) error
	RemoveSiteGroupFunc    func(ctx context.Context, id int) error
	ListSiteGroupUsersFunc func(ctx context.Context, id int) ([]sp.SiteUserInfo, error)
	SetSiteGroupOwnerFunc  func(ctx context.Context, groupID, ownerID int) error

	ListFieldsFunc    func(ctx context.Context, filter string) ([]sp.FieldInfo, error)
	AddFieldFunc      func(ctx context.Context, def app.FieldDefinition) (sp.FieldInfo, error)
	AddFieldAsXMLFunc func(ctx context.Context, schemaXML string, options sp.AddFieldOptions) (sp.FieldInfo, error)
	DeleteFieldFunc   func(ctx context.Context, id string) error
	ShowFieldFunc     func(ctx context.Context, id string, form app.Form, show bool) error

	InstalledLanguagesFunc func(ctx context.Context) ([]sp.InstalledLanguageInfo, error)
	TimeZoneFunc           func(ctx context.Context) (sp.TimeZoneInfo, error)
	TimeZonesFunc          func(ctx context.Context) ([]sp.TimeZoneInfo, error)
	UTCToLocalFunc         func(ctx context.Context, t time.Time) (string, error)
	LocalToUTCFunc         func(ctx context.Context, t time.Time) (string, error)
}

func (m *MockSDK) ListSiteGroups(ctx context.Context) ([]sp.SiteGroupInfo, error) {
	if m.ListSiteGroupsFunc != nil {
		return m.ListSiteGroupsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSDK) AddSiteGroup(ctx context.Context, title, description string) (sp.SiteGroupInfo, error) {
	if m.AddSiteGroupFunc != nil {
		return m.AddSiteGroupFunc(ctx, title, description)
	}
	return sp.SiteGroupInfo{}, nil
}

func (m *MockSDK) UpdateSiteGroup(ctx context.Context, id int, props odata.Props) error {
	if m.UpdateSiteGroupFunc != nil {
		return m.UpdateSiteGroupFunc(ctx, id, props)
	}
	return nil
}

func (m *MockSDK) RemoveSiteGroup(ctx context.Context, id int) error {
	if m.RemoveSiteGroupFunc != nil {
		return m.RemoveSiteGroupFunc(ctx, id)
	}
	return nil
}

func (m *MockSDK) ListSiteGroupUsers(ctx context.Context, id int) ([]sp.SiteUserInfo, error) {
	if m.ListSiteGroupUsersFunc != nil {
		return m.ListSiteGroupUsersFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSDK) SetSiteGroupOwner(ctx context.Context, groupID, ownerID int) error {
	if m.SetSiteGroupOwnerFunc != nil {
		return m.SetSiteGroupOwnerFunc(ctx, groupID, ownerID)
	}
	return nil
}

func (m *MockSDK) ListFields(ctx context.Context, filter string) ([]sp.FieldInfo, error) {
	if m.ListFieldsFunc != nil {
		return m.ListFieldsFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockSDK) AddField(ctx context.Context, def app.FieldDefinition) (sp.FieldInfo, error) {
	if m.AddFieldFunc != nil {
		return m.AddFieldFunc(ctx, def)
	}
	return sp.FieldInfo{Title: def.Title}, nil
}

func (m *MockSDK) AddFieldAsXML(ctx context.Context, schemaXML string, options sp.AddFieldOptions) (sp.FieldInfo, error) {
	if m.AddFieldAsXMLFunc != nil {
		return m.AddFieldAsXMLFunc(ctx, schemaXML, options)
	}
	return sp.FieldInfo{}, nil
}

func (m *MockSDK) DeleteField(ctx context.Context, id string) error {
	if m.DeleteFieldFunc != nil {
		return m.DeleteFieldFunc(ctx, id)
	}
	return nil
}

func (m *MockSDK) ShowField(ctx context.Context, id string, form app.Form, show bool) error {
	if m.ShowFieldFunc != nil {
		return m.ShowFieldFunc(ctx, id, form, show)
	}
	return nil
}

func (m *MockSDK) InstalledLanguages(ctx context.Context) ([]sp.InstalledLanguageInfo, error) {
	if m.InstalledLanguagesFunc != nil {
		return m.InstalledLanguagesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSDK) TimeZone(ctx context.Context) (sp.TimeZoneInfo, error) {
	if m.TimeZoneFunc != nil {
		return m.TimeZoneFunc(ctx)
	}
	return sp.TimeZoneInfo{}, nil
}

func (m *MockSDK) TimeZones(ctx context.Context) ([]sp.TimeZoneInfo, error) {
	if m.TimeZonesFunc != nil {
		return m.TimeZonesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSDK) UTCToLocal(ctx context.Context, t time.Time) (string, error) {
	if m.UTCToLocalFunc != nil {
		return m.UTCToLocalFunc(ctx, t)
	}
	return "", nil
}

func (m *MockSDK) LocalToUTC(ctx context.Context, t time.Time) (string, error) {
	if m.LocalToUTCFunc != nil {
		return m.LocalToUTCFunc(ctx, t)
	}
	return "", nil
}

func newTestApp(sdk app.SDK) *app.App {
	return &app.App{
		SDK: sdk,
	}
}

// tablePrinter returns a table printer that writes to the process stdout,
// so captureOutput sees everything a command prints.
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
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

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
