// Package graph exposes Microsoft Graph resources as fluent odata handles:
// users, calendars and events. Every handle is built lazily; nothing is sent
// until a terminal method such as Get, List, Add or Delete is called.
package graph

import (
	"net/http"
	"strings"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Root is the entry point for Graph requests.
type Root struct {
	*odata.Queryable
}

type options struct {
	baseURL  string
	observer odata.Observer
	logger   odata.Logger
	header   http.Header
}

// Option configures New.
type Option func(*options)

// WithBaseURL points the client at another Graph endpoint, such as the beta
// API or a national cloud.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimSuffix(u, "/") }
}

// WithObserver reports every request to obs.
func WithObserver(obs odata.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the library logger.
func WithLogger(l odata.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *options) { o.header.Set(key, value) }
}

// New returns a Graph root dispatching through exec.
func New(exec odata.Executor, opts ...Option) *Root {
	o := options{baseURL: DefaultBaseURL, header: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}
	p := &odata.Pipeline{
		Executor: exec,
		Observer: o.observer,
		Logger:   o.logger,
		Header:   o.header,
		Envelope: odata.V4Envelope{},
	}
	return &Root{Queryable: odata.NewRoot(p, o.baseURL)}
}

// Me addresses the signed-in user.
func (r *Root) Me() *User {
	return NewUser(odata.From(r), "me")
}

// Users addresses the tenant's users.
func (r *Root) Users() *Users {
	return NewUsers(odata.From(r), "")
}

// EventsAt resumes an events listing from a next link returned by an earlier
// page. The link already carries every query parameter.
func (r *Root) EventsAt(nextLink string) *Events {
	return wrapEvents(odata.NewRoot(r.Pipeline(), nextLink))
}

// formatTime renders t for startDateTime/endDateTime query parameters.
func formatTime(t time.Time) string {
	return odata.EncodeComponent(t.Format(time.RFC3339))
}

// window sets the time range parameters used by calendarView and instances.
func window(q *odata.Queryable, start, end time.Time) {
	q.Query().Set("startDateTime", formatTime(start))
	q.Query().Set("endDateTime", formatTime(end))
}

func pathOrDefault(path, def string) string {
	if path == "" {
		return def
	}
	return path
}
