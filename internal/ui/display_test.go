package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func render(t *testing.T, format, query string, v any, table Table) string {
	t.Helper()
	p, err := NewPrinter(format, query)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, p.WithWriter(&buf).Print(v, table))
	return buf.String()
}

var sampleUsers = []graph.UserInfo{
	{ID: "u1", DisplayName: "Ann Smith", Mail: "ann@contoso.com", UserPrincipalName: "ann@contoso.com"},
	{ID: "u2", DisplayName: "Bob Jones", UserPrincipalName: "bob@contoso.com"},
}

func TestPrintTable(t *testing.T) {
	out := render(t, "table", "", sampleUsers, UsersTable(sampleUsers))
	assert.Contains(t, out, "Ann Smith")
	assert.Contains(t, out, "bob@contoso.com")
	assert.Contains(t, strings.ToUpper(out), "DISPLAY NAME")
}

func TestPrintEmptyTable(t *testing.T) {
	out := render(t, "table", "", []graph.UserInfo{}, UsersTable(nil))
	assert.Equal(t, "No users found.\n", out)
}

func TestPrintJSONAndYAML(t *testing.T) {
	out := render(t, "json", "", sampleUsers[0], UserTable(sampleUsers[0]))
	assert.Contains(t, out, `"displayName": "Ann Smith"`)

	out = render(t, "yaml", "", sampleUsers[0], UserTable(sampleUsers[0]))
	assert.Contains(t, out, "displayName: Ann Smith")
	assert.Contains(t, out, "mail: ann@contoso.com")
}

func TestPrintQuery(t *testing.T) {
	out := render(t, "table", ".[].displayName", sampleUsers, Table{})
	assert.Equal(t, "Ann Smith\nBob Jones\n", out)

	out = render(t, "json", "map(select(.mail != null)) | length", sampleUsers, Table{})
	assert.Equal(t, "1\n", out)

	out = render(t, "yaml", ".[0] | {id}", sampleUsers, Table{})
	assert.Equal(t, "id: u1\n", out)
}

func TestPrintQueryErrors(t *testing.T) {
	_, err := NewPrinter("table", ".[")
	assert.Error(t, err)

	p, err := NewPrinter("table", ".foo.bar")
	require.NoError(t, err)
	var buf bytes.Buffer
	err = p.WithWriter(&buf).Print(sampleUsers, Table{})
	assert.ErrorContains(t, err, "evaluating --query")
}

func TestSharePointTables(t *testing.T) {
	groups := SiteGroupsTable([]sp.SiteGroupInfo{{ID: 7, Title: "Owners", OwnerTitle: "Admins"}})
	assert.Equal(t, []string{"7", "Owners", "Admins", ""}, groups.Rows[0])

	fields := FieldsTable([]sp.FieldInfo{{Title: "Status", InternalName: "Status", FieldTypeKind: sp.FieldTypeChoice, ID: "f1"}})
	assert.Equal(t, "Choice", fields.Rows[0][2])

	zones := TimeZonesTable([]sp.TimeZoneInfo{{ID: 13, Description: "(UTC-08:00) Pacific Time", Information: sp.TimeZoneInformation{Bias: 480}}})
	assert.Equal(t, []string{"13", "(UTC-08:00) Pacific Time", "480"}, zones.Rows[0])

	assert.Equal(t, "No languages installed.", LanguagesTable(nil).Empty)
}

func TestEventsTable(t *testing.T) {
	events := []graph.EventInfo{{
		ID:       "e1",
		Subject:  "Planning",
		Start:    &graph.DateTimeTimeZone{DateTime: "2026-03-02T09:00:00.0000000", TimeZone: "UTC"},
		End:      &graph.DateTimeTimeZone{DateTime: "2026-03-02T10:00:00"},
		Location: &graph.Location{DisplayName: "Room 1"},
	}}
	tbl := EventsTable(events)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"Planning", "2026-03-02 09:00 UTC", "2026-03-02T10:00:00", "Room 1", "e1"}, tbl.Rows[0])
}

func TestDetailsSkipsEmptyValues(t *testing.T) {
	tbl := UserTable(graph.UserInfo{DisplayName: "Ann", ID: "u1"})
	assert.Equal(t, [][]string{{"Display Name", "Ann"}, {"ID", "u1"}}, tbl.Rows)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestParsePagingFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "list"}
	AddPagingFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--top", "25", "--next", "https://graph.microsoft.com/v1.0/me/events?$skip=25"}))

	paging, err := ParsePagingFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, Paging{Top: 25, Next: "https://graph.microsoft.com/v1.0/me/events?$skip=25"}, paging)

	bad := &cobra.Command{Use: "list"}
	AddPagingFlags(bad)
	require.NoError(t, bad.Flags().Parse([]string{"--top", "-1"}))
	_, err = ParsePagingFlags(bad)
	assert.Error(t, err)
}

func TestHandleNextPageInfo(t *testing.T) {
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	HandleNextPageInfo("https://next", false)
	HandleNextPageInfo("https://ignored", true)

	require.NoError(t, w.Close())
	os.Stderr = old
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)

	assert.Contains(t, buf.String(), "--next 'https://next'")
	assert.NotContains(t, buf.String(), "ignored")
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	for _, in := range []string{"2026-03-02T09:30:00Z", "2026-03-02T09:30:00", "2026-03-02T09:30", "2026-03-02 09:30"} {
		got, err := ParseTime(in, nil)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	got, err := ParseTime("2026-03-02T10:30:00+01:00", nil)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	day, err := ParseTime("2026-03-02", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, day.Hour())

	_, err = ParseTime("next tuesday", nil)
	assert.Error(t, err)
}

func TestPrinterForReadsQueryFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("query", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--query", ".id"}))

	p, err := PrinterFor(cmd, "json")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, p.WithWriter(&buf).Print(graph.UserInfo{ID: "u1"}, Table{}))
	assert.Equal(t, "\"u1\"\n", buf.String())
}
