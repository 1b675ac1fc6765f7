package graph

import (
	"context"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// Users is the searchable users collection.
type Users struct {
	odata.SearchableCollection[*Users]
}

var _ odata.GetByIDCapable[string, *User] = (*Users)(nil)

// NewUsers composes a users collection; path defaults to "users".
func NewUsers(init odata.Init, path string) *Users {
	return wrapUsers(odata.Compose(init, pathOrDefault(path, "users")))
}

func wrapUsers(q *odata.Queryable) *Users {
	u := &Users{}
	u.SearchableCollection = odata.NewSearchableCollection(q, u, wrapUsers)
	return u
}

// GetByID addresses one user by object id or user principal name.
func (u *Users) GetByID(id string) *User {
	return NewUser(odata.From(u), id)
}

// List fetches one page of users.
func (u *Users) List(ctx context.Context) ([]UserInfo, error) {
	return odata.List[UserInfo](ctx, u)
}

// Paged starts paging through the users.
func (u *Users) Paged(ctx context.Context) (*odata.Pager[UserInfo], error) {
	return odata.Paged[UserInfo](ctx, u)
}

// User is a single user.
type User struct {
	odata.Instance[*User]
}

// NewUser composes a user handle.
func NewUser(init odata.Init, path string) *User {
	return wrapUser(odata.Compose(init, path))
}

func wrapUser(q *odata.Queryable) *User {
	u := &User{}
	u.Instance = odata.NewInstance(q, u, wrapUser)
	return u
}

// Get fetches the user.
func (u *User) Get(ctx context.Context) (UserInfo, error) {
	return odata.Get[UserInfo](ctx, u)
}

// Calendar addresses the user's default calendar.
func (u *User) Calendar() *Calendar {
	return NewCalendar(odata.From(u), "calendar")
}

// Calendars addresses all of the user's calendars.
func (u *User) Calendars() *Calendars {
	return NewCalendars(odata.From(u), "")
}

// Events addresses the events of the user's default calendar.
func (u *User) Events() *Events {
	return NewEvents(odata.From(u), "")
}

// CalendarView lists occurrences, exceptions and single events between start and end.
func (u *User) CalendarView(start, end time.Time) *Events {
	return calendarView(u, start, end)
}
