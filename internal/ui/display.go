// Package ui (display.go) renders Graph and SharePoint results to the
// console as tables, JSON or YAML, optionally filtered through a jq
// expression. It also holds the progress bar and success message helpers
// shared by the commands.
package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/sp"
	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// Format selects how results are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: expected table, json or yaml", s)
	}
}

// Table is the tabular rendering of a result. Empty is printed instead of
// an empty table.
type Table struct {
	Header []string
	Rows   [][]string
	Empty  string
}

// Printer writes results in the selected format.
type Printer struct {
	format Format
	query  *gojq.Code
	out    io.Writer
}

// NewPrinter returns a printer for format. A non-empty query is compiled as
// a jq expression and applied to the JSON form of every result.
func NewPrinter(format, query string) (*Printer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	p := &Printer{format: f}
	if strings.TrimSpace(query) != "" {
		parsed, err := gojq.Parse(query)
		if err != nil {
			return nil, fmt.Errorf("parsing --query: %w", err)
		}
		p.query, err = gojq.Compile(parsed)
		if err != nil {
			return nil, fmt.Errorf("compiling --query: %w", err)
		}
	}
	return p, nil
}

// WithWriter redirects output, which defaults to the process stdout.
func (p *Printer) WithWriter(w io.Writer) *Printer {
	p.out = w
	return p
}

// Format returns the selected output format.
func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) writer() io.Writer {
	if p.out != nil {
		return p.out
	}
	return os.Stdout
}

// Print renders v. Tables are used only for table output without a query.
func (p *Printer) Print(v any, t Table) error {
	if p.query != nil {
		return p.printQuery(v)
	}
	switch p.format {
	case FormatJSON:
		return writeJSON(p.writer(), v)
	case FormatYAML:
		return writeYAML(p.writer(), v)
	default:
		return writeTable(p.writer(), t)
	}
}

func (p *Printer) printQuery(v any) error {
	input, err := toGeneric(v)
	if err != nil {
		return err
	}
	iter := p.query.Run(input)
	for {
		out, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := out.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return nil
			}
			return fmt.Errorf("evaluating --query: %w", err)
		}
		switch p.format {
		case FormatYAML:
			err = writeYAML(p.writer(), out)
		case FormatJSON:
			err = writeJSON(p.writer(), out)
		default:
			err = writeScalar(p.writer(), out)
		}
		if err != nil {
			return err
		}
	}
}

// toGeneric converts v to the map/slice form gojq operates on.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result for --query: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding result for --query: %w", err)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output as JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	// Round-trip through JSON so YAML keys match the API's field names.
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode output as YAML: %w", err)
	}
	return enc.Close()
}

// writeScalar prints strings raw, like jq -r, and everything else as JSON.
func writeScalar(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	return writeJSON(w, v)
}

func writeTable(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		msg := t.Empty
		if msg == "" {
			msg = "No results found."
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, row := range t.Rows {
		_ = table.Append(row)
	}
	return table.Render()
}

// Success prints a simple success message to standard output.
func Success(msg string) {
	fmt.Println(msg)
}

// NewProgressBar returns a bar written to stderr. A max of -1 renders a
// spinner for work whose size is unknown up front, like following next links.
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	if description == "" {
		description = "Processing..."
	}
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

func details(pairs ...string) Table {
	t := Table{Header: []string{"Property", "Value"}}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		t.Rows = append(t.Rows, []string{pairs[i], pairs[i+1]})
	}
	return t
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// UserTable shows a single user.
func UserTable(u graph.UserInfo) Table {
	return details(
		"Display Name", u.DisplayName,
		"User Principal Name", u.UserPrincipalName,
		"Mail", u.Mail,
		"Job Title", u.JobTitle,
		"Office", u.OfficeLocation,
		"ID", u.ID,
	)
}

// UsersTable lists users.
func UsersTable(users []graph.UserInfo) Table {
	t := Table{Header: []string{"Display Name", "User Principal Name", "Mail", "ID"}, Empty: "No users found."}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{u.DisplayName, u.UserPrincipalName, u.Mail, u.ID})
	}
	return t
}

// CalendarsTable lists calendars.
func CalendarsTable(cals []graph.CalendarInfo) Table {
	t := Table{Header: []string{"Name", "Default", "Can Edit", "Owner", "ID"}, Empty: "No calendars found."}
	for _, c := range cals {
		owner := ""
		if c.Owner != nil {
			owner = c.Owner.Address
		}
		t.Rows = append(t.Rows, []string{c.Name, yesNo(c.IsDefaultCalendar), yesNo(c.CanEdit), owner, truncate(c.ID, 40)})
	}
	return t
}

func when(d *graph.DateTimeTimeZone) string {
	if d == nil {
		return ""
	}
	s := d.DateTime
	if ts, err := time.Parse("2006-01-02T15:04:05.0000000", d.DateTime); err == nil {
		s = ts.Format("2006-01-02 15:04")
	}
	if d.TimeZone != "" {
		s += " " + d.TimeZone
	}
	return s
}

// EventsTable lists events.
func EventsTable(events []graph.EventInfo) Table {
	t := Table{Header: []string{"Subject", "Start", "End", "Location", "ID"}, Empty: "No events found."}
	for _, e := range events {
		loc := ""
		if e.Location != nil {
			loc = e.Location.DisplayName
		}
		t.Rows = append(t.Rows, []string{truncate(e.Subject, 50), when(e.Start), when(e.End), loc, truncate(e.ID, 40)})
	}
	return t
}

// EventTable shows a single event.
func EventTable(e graph.EventInfo) Table {
	loc := ""
	if e.Location != nil {
		loc = e.Location.DisplayName
	}
	organizer := ""
	if e.Organizer != nil {
		organizer = e.Organizer.EmailAddress.Address
	}
	return details(
		"Subject", e.Subject,
		"Start", when(e.Start),
		"End", when(e.End),
		"Location", loc,
		"Organizer", organizer,
		"Show As", e.ShowAs,
		"Web Link", e.WebLink,
		"ID", e.ID,
	)
}

// ScheduleTable shows free/busy per schedule.
func ScheduleTable(schedules []graph.ScheduleInformation) Table {
	t := Table{Header: []string{"Schedule", "Availability", "Busy Blocks", "Error"}, Empty: "No schedules returned."}
	for _, s := range schedules {
		msg := ""
		if s.Error != nil {
			msg = s.Error.Message
		}
		t.Rows = append(t.Rows, []string{s.ScheduleID, s.AvailabilityView, strconv.Itoa(len(s.ScheduleItems)), msg})
	}
	return t
}

// SiteGroupsTable lists site groups.
func SiteGroupsTable(groups []sp.SiteGroupInfo) Table {
	t := Table{Header: []string{"ID", "Title", "Owner", "Description"}, Empty: "No site groups found."}
	for _, g := range groups {
		t.Rows = append(t.Rows, []string{strconv.Itoa(g.ID), g.Title, g.OwnerTitle, truncate(g.Description, 60)})
	}
	return t
}

// SiteGroupTable shows a single site group.
func SiteGroupTable(g sp.SiteGroupInfo) Table {
	return details(
		"ID", strconv.Itoa(g.ID),
		"Title", g.Title,
		"Description", g.Description,
		"Owner", g.OwnerTitle,
		"Login Name", g.LoginName,
	)
}

// SiteUsersTable lists site users.
func SiteUsersTable(users []sp.SiteUserInfo) Table {
	t := Table{Header: []string{"ID", "Title", "Email", "Login Name", "Admin"}, Empty: "No users found."}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{strconv.Itoa(u.ID), u.Title, u.Email, u.LoginName, yesNo(u.IsSiteAdmin)})
	}
	return t
}

// FieldsTable lists fields.
func FieldsTable(fields []sp.FieldInfo) Table {
	t := Table{Header: []string{"Title", "Internal Name", "Type", "Group", "Hidden", "ID"}, Empty: "No fields found."}
	for _, f := range fields {
		kind := f.TypeAsString
		if kind == "" {
			kind = f.FieldTypeKind.String()
		}
		t.Rows = append(t.Rows, []string{f.Title, f.InternalName, kind, f.Group, yesNo(f.Hidden), f.ID})
	}
	return t
}

// FieldTable shows a single field.
func FieldTable(f sp.FieldInfo) Table {
	kind := f.TypeAsString
	if kind == "" {
		kind = f.FieldTypeKind.String()
	}
	return details(
		"Title", f.Title,
		"Internal Name", f.InternalName,
		"Type", kind,
		"Group", f.Group,
		"Required", yesNo(f.Required),
		"ID", f.ID,
	)
}

// LanguagesTable lists installed languages.
func LanguagesTable(langs []sp.InstalledLanguageInfo) Table {
	t := Table{Header: []string{"LCID", "Tag", "Name"}, Empty: "No languages installed."}
	for _, l := range langs {
		t.Rows = append(t.Rows, []string{strconv.Itoa(l.LCID), l.LanguageTag, l.DisplayName})
	}
	return t
}

// TimeZonesTable lists time zones with their UTC bias in minutes.
func TimeZonesTable(zones []sp.TimeZoneInfo) Table {
	t := Table{Header: []string{"ID", "Description", "Bias"}, Empty: "No time zones found."}
	for _, z := range zones {
		t.Rows = append(t.Rows, []string{strconv.Itoa(z.ID), z.Description, strconv.Itoa(z.Information.Bias)})
	}
	return t
}

// ValueTable shows one scalar result.
func ValueTable(name, value string) Table {
	return Table{Header: []string{name}, Rows: [][]string{{value}}}
}
