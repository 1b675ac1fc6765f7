package graph

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// Calendars is a user's calendar collection.
type Calendars struct {
	odata.CountableCollection[*Calendars]
}

var _ odata.GetByIDCapable[string, *Calendar] = (*Calendars)(nil)

// NewCalendars composes a calendars collection; path defaults to "calendars".
func NewCalendars(init odata.Init, path string) *Calendars {
	return wrapCalendars(odata.Compose(init, pathOrDefault(path, "calendars")))
}

func wrapCalendars(q *odata.Queryable) *Calendars {
	c := &Calendars{}
	c.CountableCollection = odata.NewCountableCollection(q, c, wrapCalendars)
	return c
}

// GetByID addresses one calendar.
func (c *Calendars) GetByID(id string) *Calendar {
	return NewCalendar(odata.From(c), id)
}

// List fetches one page of calendars.
func (c *Calendars) List(ctx context.Context) ([]CalendarInfo, error) {
	return odata.List[CalendarInfo](ctx, c)
}

// Calendar is a single calendar.
type Calendar struct {
	odata.Instance[*Calendar]
}

// NewCalendar composes a calendar handle.
func NewCalendar(init odata.Init, path string) *Calendar {
	return wrapCalendar(odata.Compose(init, path))
}

func wrapCalendar(q *odata.Queryable) *Calendar {
	c := &Calendar{}
	c.Instance = odata.NewInstance(q, c, wrapCalendar)
	return c
}

// Get fetches the calendar.
func (c *Calendar) Get(ctx context.Context) (CalendarInfo, error) {
	return odata.Get[CalendarInfo](ctx, c)
}

// Events addresses the calendar's events.
func (c *Calendar) Events() *Events {
	return NewEvents(odata.From(c), "")
}

// CalendarView lists occurrences, exceptions and single events between start and end.
func (c *Calendar) CalendarView(start, end time.Time) *Events {
	return calendarView(c, start, end)
}

// GetSchedule returns free/busy information for users, distribution lists or
// resources over the requested period.
func (c *Calendar) GetSchedule(ctx context.Context, req GetScheduleRequest) ([]ScheduleInformation, error) {
	target := NewCalendar(odata.From(c), "getSchedule")
	raw, err := target.Dispatch(ctx, "calendar.getSchedule", http.MethodPost, req)
	if err != nil {
		return nil, err
	}
	page, err := target.DecodePage(raw)
	if err != nil {
		return nil, err
	}
	out := make([]ScheduleInformation, 0, len(page.Items))
	for _, item := range page.Items {
		si, err := odata.Decode[ScheduleInformation](target, item)
		if err != nil {
			return nil, fmt.Errorf("schedule information: %w", err)
		}
		out = append(out, si)
	}
	return out, nil
}

func calendarView(parent odata.Resource, start, end time.Time) *Events {
	e := NewEvents(odata.From(parent), "calendarView")
	window(e.Queryable, start, end)
	return e
}

// Events is an event collection.
type Events struct {
	odata.CountableCollection[*Events]
}

var _ odata.GetByIDCapable[string, *Event] = (*Events)(nil)

// NewEvents composes an events collection; path defaults to "events".
func NewEvents(init odata.Init, path string) *Events {
	return wrapEvents(odata.Compose(init, pathOrDefault(path, "events")))
}

func wrapEvents(q *odata.Queryable) *Events {
	e := &Events{}
	e.CountableCollection = odata.NewCountableCollection(q, e, wrapEvents)
	return e
}

// GetByID addresses one event.
func (e *Events) GetByID(id string) *Event {
	return NewEvent(odata.From(e), id)
}

// List fetches one page of events.
func (e *Events) List(ctx context.Context) ([]EventInfo, error) {
	return odata.List[EventInfo](ctx, e)
}

// Paged starts paging through the events.
func (e *Events) Paged(ctx context.Context) (*odata.Pager[EventInfo], error) {
	return odata.Paged[EventInfo](ctx, e)
}

// Add creates an event and returns it with a handle addressed by its new id.
func (e *Events) Add(ctx context.Context, event EventInfo) (odata.Result[EventInfo, *Event], error) {
	var res odata.Result[EventInfo, *Event]
	raw, err := e.Dispatch(ctx, "events.add", http.MethodPost, event)
	if err != nil {
		return res, err
	}
	id, err := odata.StringField(e, raw, "id")
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[EventInfo](e, raw)
	if err != nil {
		return res, err
	}
	res.Entity = e.GetByID(id)
	return res, nil
}

// Event is a single event.
type Event struct {
	odata.Instance[*Event]
}

var _ odata.Deletable = (*Event)(nil)

var _ odata.Updatable[EventInfo, *Event] = (*Event)(nil)

// NewEvent composes an event handle.
func NewEvent(init odata.Init, path string) *Event {
	return wrapEvent(odata.Compose(init, path))
}

func wrapEvent(q *odata.Queryable) *Event {
	e := &Event{}
	e.Instance = odata.NewInstance(q, e, wrapEvent)
	return e
}

// Get fetches the event.
func (e *Event) Get(ctx context.Context) (EventInfo, error) {
	return odata.Get[EventInfo](ctx, e)
}

// Update patches the event and returns the server's copy with this same handle.
func (e *Event) Update(ctx context.Context, props odata.Props) (odata.Result[EventInfo, *Event], error) {
	res := odata.Result[EventInfo, *Event]{Entity: e}
	raw, err := e.Dispatch(ctx, "event.update", http.MethodPatch, props)
	if err != nil {
		return res, err
	}
	res.Data, err = odata.Decode[EventInfo](e, raw)
	return res, err
}

// Delete removes the event.
func (e *Event) Delete(ctx context.Context) error {
	_, err := e.Dispatch(ctx, "event.delete", http.MethodDelete, nil)
	return err
}

// Instances lists the occurrences of a recurring event between start and end.
func (e *Event) Instances(start, end time.Time) *Events {
	inst := NewEvents(odata.From(e), "instances")
	window(inst.Queryable, start, end)
	return inst
}
