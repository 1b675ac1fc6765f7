package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dheniges/pnp-client/internal/config"
	"github.com/dheniges/pnp-client/pkg/graph"
	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/dheniges/pnp-client/pkg/sp"
)

// EventQuery shapes an events listing.
type EventQuery struct {
	CalendarID string
	Select     []string
	Filter     string
	// OrderBy entries are "field", "field:asc" or "field:desc".
	OrderBy []string
	Top     int
	// Start and End switch the listing to a calendar view when both are set.
	Start time.Time
	End   time.Time
	// Next resumes from a next link printed by an earlier call; every other
	// field is ignored then.
	Next string
}

// Page is one page of a listing and the link to the following one.
type Page[T any] struct {
	Items    []T
	NextLink string
}

// SDK defines the operations the commands need. This allows for mocking in
// tests.
type SDK interface {
	Me(ctx context.Context) (graph.UserInfo, error)
	SearchUsers(ctx context.Context, query string, top int) ([]graph.UserInfo, error)
	CountUsers(ctx context.Context, filter string) (int64, error)
	ListCalendars(ctx context.Context) ([]graph.CalendarInfo, error)
	ListEvents(ctx context.Context, q EventQuery, all bool, onPage func(n int)) (Page[graph.EventInfo], error)
	AddEvent(ctx context.Context, calendarID string, event graph.EventInfo) (graph.EventInfo, error)
	UpdateEvent(ctx context.Context, id string, props odata.Props) (graph.EventInfo, error)
	DeleteEvent(ctx context.Context, id string) error
	GetSchedule(ctx context.Context, req graph.GetScheduleRequest) ([]graph.ScheduleInformation, error)

	ListSiteGroups(ctx context.Context) ([]sp.SiteGroupInfo, error)
	AddSiteGroup(ctx context.Context, title, description string) (sp.SiteGroupInfo, error)
	UpdateSiteGroup(ctx context.Context, id int, props odata.Props) error
	RemoveSiteGroup(ctx context.Context, id int) error
	ListSiteGroupUsers(ctx context.Context, id int) ([]sp.SiteUserInfo, error)
	SetSiteGroupOwner(ctx context.Context, groupID, ownerID int) error

	ListFields(ctx context.Context, filter string) ([]sp.FieldInfo, error)
	AddField(ctx context.Context, def FieldDefinition) (sp.FieldInfo, error)
	AddFieldAsXML(ctx context.Context, schemaXML string, options sp.AddFieldOptions) (sp.FieldInfo, error)
	DeleteField(ctx context.Context, id string) error
	ShowField(ctx context.Context, id string, form Form, show bool) error

	InstalledLanguages(ctx context.Context) ([]sp.InstalledLanguageInfo, error)
	TimeZone(ctx context.Context) (sp.TimeZoneInfo, error)
	TimeZones(ctx context.Context) ([]sp.TimeZoneInfo, error)
	UTCToLocal(ctx context.Context, t time.Time) (string, error)
	LocalToUTC(ctx context.Context, t time.Time) (string, error)
}

// Form names a SharePoint list form.
type Form string

const (
	FormDisplay Form = "display"
	FormEdit    Form = "edit"
	FormNew     Form = "new"
)

// LiveSDK implements SDK over the Graph and SharePoint facades. SharePoint
// calls fail with config.ErrNoSite when no site is configured.
type LiveSDK struct {
	graph *graph.Root
	site  *sp.Root
}

var _ SDK = (*LiveSDK)(nil)

// NewLiveSDK returns an SDK over g and site. site may be nil.
func NewLiveSDK(g *graph.Root, site *sp.Root) *LiveSDK {
	return &LiveSDK{graph: g, site: site}
}

func (s *LiveSDK) web() (*sp.Web, error) {
	if s.site == nil {
		return nil, config.ErrNoSite
	}
	return s.site.Web(), nil
}

func (s *LiveSDK) Me(ctx context.Context) (graph.UserInfo, error) {
	return s.graph.Me().Get(ctx)
}

func (s *LiveSDK) SearchUsers(ctx context.Context, query string, top int) ([]graph.UserInfo, error) {
	users := s.graph.Users().Select("id", "displayName", "mail", "userPrincipalName", "jobTitle")
	if query != "" {
		users = users.Search(fmt.Sprintf(`"displayName:%s"`, query))
	}
	if top > 0 {
		users = users.Top(top)
	}
	return users.List(ctx)
}

func (s *LiveSDK) CountUsers(ctx context.Context, filter string) (int64, error) {
	users := s.graph.Users()
	if filter != "" {
		users = users.Filter(filter)
	}
	return users.Count(ctx)
}

func (s *LiveSDK) ListCalendars(ctx context.Context) ([]graph.CalendarInfo, error) {
	return s.graph.Me().Calendars().List(ctx)
}

func (s *LiveSDK) events(q EventQuery) *graph.Events {
	if q.Next != "" {
		return s.graph.EventsAt(q.Next)
	}
	me := s.graph.Me()
	window := !q.Start.IsZero() && !q.End.IsZero()

	var ev *graph.Events
	switch {
	case q.CalendarID != "" && window:
		ev = me.Calendars().GetByID(q.CalendarID).CalendarView(q.Start, q.End)
	case q.CalendarID != "":
		ev = me.Calendars().GetByID(q.CalendarID).Events()
	case window:
		ev = me.CalendarView(q.Start, q.End)
	default:
		ev = me.Events()
	}

	ev = ev.Select(q.Select...)
	if q.Filter != "" {
		ev = ev.Filter(q.Filter)
	}
	for _, o := range q.OrderBy {
		field, dir, _ := strings.Cut(o, ":")
		ev = ev.OrderBy(field, !strings.EqualFold(dir, "desc"))
	}
	if q.Top > 0 {
		ev = ev.Top(q.Top)
	}
	return ev
}

// ListEvents fetches one page, or every page when all is set. onPage is
// called with the size of each fetched page.
func (s *LiveSDK) ListEvents(ctx context.Context, q EventQuery, all bool, onPage func(n int)) (Page[graph.EventInfo], error) {
	var out Page[graph.EventInfo]
	pager, err := s.events(q).Paged(ctx)
	if err != nil {
		return out, err
	}
	out.Items = pager.Results()
	if onPage != nil {
		onPage(len(out.Items))
	}
	if all {
		out.Items, err = pager.All(ctx, func(page []graph.EventInfo) {
			if onPage != nil {
				onPage(len(page))
			}
		})
		if err != nil {
			return out, err
		}
	}
	out.NextLink = pager.NextLink()
	return out, nil
}

func (s *LiveSDK) AddEvent(ctx context.Context, calendarID string, event graph.EventInfo) (graph.EventInfo, error) {
	events := s.graph.Me().Events()
	if calendarID != "" {
		events = s.graph.Me().Calendars().GetByID(calendarID).Events()
	}
	res, err := events.Add(ctx, event)
	if err != nil {
		return graph.EventInfo{}, fmt.Errorf("adding event: %w", err)
	}
	return res.Data, nil
}

func (s *LiveSDK) UpdateEvent(ctx context.Context, id string, props odata.Props) (graph.EventInfo, error) {
	res, err := s.graph.Me().Events().GetByID(id).Update(ctx, props)
	if err != nil {
		return graph.EventInfo{}, fmt.Errorf("updating event %s: %w", id, err)
	}
	return res.Data, nil
}

func (s *LiveSDK) DeleteEvent(ctx context.Context, id string) error {
	if err := s.graph.Me().Events().GetByID(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return nil
}

func (s *LiveSDK) GetSchedule(ctx context.Context, req graph.GetScheduleRequest) ([]graph.ScheduleInformation, error) {
	return s.graph.Me().Calendar().GetSchedule(ctx, req)
}

func (s *LiveSDK) ListSiteGroups(ctx context.Context) ([]sp.SiteGroupInfo, error) {
	web, err := s.web()
	if err != nil {
		return nil, err
	}
	return web.SiteGroups().List(ctx)
}

func (s *LiveSDK) AddSiteGroup(ctx context.Context, title, description string) (sp.SiteGroupInfo, error) {
	web, err := s.web()
	if err != nil {
		return sp.SiteGroupInfo{}, err
	}
	props := odata.Props{"Title": title}
	if description != "" {
		props["Description"] = description
	}
	res, err := web.SiteGroups().Add(ctx, props)
	if err != nil {
		return sp.SiteGroupInfo{}, fmt.Errorf("adding site group %q: %w", title, err)
	}
	return res.Data, nil
}

func (s *LiveSDK) UpdateSiteGroup(ctx context.Context, id int, props odata.Props) error {
	web, err := s.web()
	if err != nil {
		return err
	}
	if _, err := web.SiteGroups().GetByID(id).Update(ctx, props); err != nil {
		return fmt.Errorf("updating site group %d: %w", id, err)
	}
	return nil
}

func (s *LiveSDK) RemoveSiteGroup(ctx context.Context, id int) error {
	web, err := s.web()
	if err != nil {
		return err
	}
	if err := web.SiteGroups().RemoveByID(ctx, id); err != nil {
		return fmt.Errorf("removing site group %d: %w", id, err)
	}
	return nil
}

func (s *LiveSDK) ListSiteGroupUsers(ctx context.Context, id int) ([]sp.SiteUserInfo, error) {
	web, err := s.web()
	if err != nil {
		return nil, err
	}
	return web.SiteGroups().GetByID(id).Users().List(ctx)
}

func (s *LiveSDK) SetSiteGroupOwner(ctx context.Context, groupID, ownerID int) error {
	web, err := s.web()
	if err != nil {
		return err
	}
	return web.SiteGroups().GetByID(groupID).SetUserAsOwner(ctx, ownerID)
}

func (s *LiveSDK) ListFields(ctx context.Context, filter string) ([]sp.FieldInfo, error) {
	web, err := s.web()
	if err != nil {
		return nil, err
	}
	fields := web.Fields()
	if filter != "" {
		fields = fields.Filter(filter)
	}
	return fields.List(ctx)
}

func (s *LiveSDK) AddField(ctx context.Context, def FieldDefinition) (sp.FieldInfo, error) {
	web, err := s.web()
	if err != nil {
		return sp.FieldInfo{}, err
	}
	res, err := def.add(ctx, web.Fields())
	if err != nil {
		return sp.FieldInfo{}, fmt.Errorf("adding field %q: %w", def.Title, err)
	}
	return res.Data, nil
}

func (s *LiveSDK) AddFieldAsXML(ctx context.Context, schemaXML string, options sp.AddFieldOptions) (sp.FieldInfo, error) {
	web, err := s.web()
	if err != nil {
		return sp.FieldInfo{}, err
	}
	res, err := web.Fields().CreateFieldAsXML(ctx, sp.XMLSchemaFieldCreationInformation{SchemaXML: schemaXML, Options: options})
	if err != nil {
		return sp.FieldInfo{}, fmt.Errorf("creating field from xml: %w", err)
	}
	return res.Data, nil
}

func (s *LiveSDK) DeleteField(ctx context.Context, id string) error {
	web, err := s.web()
	if err != nil {
		return err
	}
	if err := web.Fields().GetByID(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting field %s: %w", id, err)
	}
	return nil
}

func (s *LiveSDK) ShowField(ctx context.Context, id string, form Form, show bool) error {
	web, err := s.web()
	if err != nil {
		return err
	}
	field := web.Fields().GetByID(id)
	switch form {
	case FormDisplay:
		return field.SetShowInDisplayForm(ctx, show)
	case FormEdit:
		return field.SetShowInEditForm(ctx, show)
	case FormNew:
		return field.SetShowInNewForm(ctx, show)
	default:
		return fmt.Errorf("unknown form %q: expected display, edit or new", form)
	}
}

func (s *LiveSDK) InstalledLanguages(ctx context.Context) ([]sp.InstalledLanguageInfo, error) {
	web, err := s.web()
	if err != nil {
		return nil, err
	}
	return web.RegionalSettings().GetInstalledLanguages(ctx)
}

func (s *LiveSDK) TimeZone(ctx context.Context) (sp.TimeZoneInfo, error) {
	web, err := s.web()
	if err != nil {
		return sp.TimeZoneInfo{}, err
	}
	return web.RegionalSettings().TimeZone().Get(ctx)
}

func (s *LiveSDK) TimeZones(ctx context.Context) ([]sp.TimeZoneInfo, error) {
	web, err := s.web()
	if err != nil {
		return nil, err
	}
	return web.RegionalSettings().TimeZones().List(ctx)
}

func (s *LiveSDK) UTCToLocal(ctx context.Context, t time.Time) (string, error) {
	web, err := s.web()
	if err != nil {
		return "", err
	}
	return web.RegionalSettings().TimeZone().UTCToLocalTime(ctx, t)
}

func (s *LiveSDK) LocalToUTC(ctx context.Context, t time.Time) (string, error) {
	web, err := s.web()
	if err != nil {
		return "", err
	}
	return web.RegionalSettings().TimeZone().LocalTimeToUTC(ctx, t)
}
