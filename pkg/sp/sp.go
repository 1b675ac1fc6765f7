// Package sp exposes SharePoint REST resources of a single site as fluent
// odata handles: site groups, site users, fields and regional settings.
//
// SharePoint's REST surface predates OData v4. Writes are tunnelled through
// POST with an X-HTTP-Method header, create bodies carry a __metadata type
// and several service operations take their arguments in the URL path, for
// example getByTitle('Status') or utctolocaltime('2024-03-01T09:00:00Z').
package sp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// Default headers. Accept asks for minimal metadata so that odata.type is
// present on entities; writes are sent in the verbose dialect that accepts
// __metadata in request bodies.
const (
	DefaultAccept      = "application/json"
	DefaultContentType = "application/json;odata=verbose;charset=utf-8"
)

// Root is the entry point for one SharePoint site.
type Root struct {
	*odata.Queryable
}

type options struct {
	observer odata.Observer
	logger   odata.Logger
	header   http.Header
}

// Option configures New.
type Option func(*options)

// WithObserver reports every request to obs.
func WithObserver(obs odata.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the library logger. Deprecation notices are written to it.
func WithLogger(l odata.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHeader adds or overrides a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *options) { o.header.Set(key, value) }
}

// New returns a root for the site at siteURL, such as
// https://contoso.sharepoint.com/sites/dev, dispatching through exec.
func New(exec odata.Executor, siteURL string, opts ...Option) *Root {
	o := options{header: http.Header{}}
	o.header.Set("Accept", DefaultAccept)
	o.header.Set("Content-Type", DefaultContentType)
	for _, opt := range opts {
		opt(&o)
	}
	p := &odata.Pipeline{
		Executor: exec,
		Observer: o.observer,
		Logger:   o.logger,
		Header:   o.header,
		Envelope: Envelope{},
	}
	base := strings.TrimSuffix(siteURL, "/") + "/_api"
	return &Root{Queryable: odata.NewRoot(p, base)}
}

// Web addresses the site's root web.
func (r *Root) Web() *Web {
	return NewWeb(odata.From(r), "")
}

func pathOrDefault(path, def string) string {
	if path == "" {
		return def
	}
	return path
}

// metadata is the __metadata block SharePoint expects on verbose writes.
func metadata(typ string) odata.Props {
	return odata.Props{"__metadata": map[string]string{"type": typ}}
}

// quote renders s as a single-quoted literal for a path argument. Embedded
// quotes are doubled; characters that would end the path are escaped.
func quote(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	s = keyEscaper.Replace(s)
	return "'" + s + "'"
}

// aliasValue renders s as a quoted parameter alias value such as @v='i%3A0%23.f'.
func aliasValue(s string) string {
	return "'" + odata.EncodeComponent(strings.ReplaceAll(s, "'", "''")) + "'"
}

var keyEscaper = strings.NewReplacer("%", "%25", "#", "%23", "?", "%3F", "&", "%26")

func post(ctx context.Context, r odata.Resource, op string, body any) (json.RawMessage, error) {
	return r.Handle().Dispatch(ctx, op, http.MethodPost, body)
}

// postMerge sends a partial update as POST with X-HTTP-Method: MERGE.
func postMerge(ctx context.Context, r odata.Resource, op string, body any) (json.RawMessage, error) {
	return r.Handle().Dispatch(ctx, op, http.MethodPost, body,
		odata.WithHeader("X-HTTP-Method", "MERGE"),
		odata.WithHeader("IF-Match", "*"))
}

// postDelete deletes the addressed entity as POST with X-HTTP-Method: DELETE.
func postDelete(ctx context.Context, r odata.Resource, op string) error {
	_, err := r.Handle().Dispatch(ctx, op, http.MethodPost, nil,
		odata.WithHeader("X-HTTP-Method", "DELETE"),
		odata.WithHeader("IF-Match", "*"))
	return err
}

// intField reads a numeric id from a create response.
func intField(r odata.Resource, raw json.RawMessage, field string) (int, error) {
	s, err := odata.StringField(r, raw, field)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", odata.ErrDecodingFailed, field, s)
	}
	return n, nil
}
