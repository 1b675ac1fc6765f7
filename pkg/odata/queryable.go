package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resource is anything backed by a Queryable. Every facade in pkg/graph and
// pkg/sp satisfies it through embedding.
type Resource interface {
	Handle() *Queryable
}

type initKind int

const (
	initNone initKind = iota
	initURL
	initHandle
	initPair
)

// Init seeds the parent of a new handle: an absolute URL, an existing handle,
// or an existing handle paired with a discriminator string.
type Init struct {
	kind          initKind
	url           string
	parent        Resource
	discriminator string
}

// FromURL uses u verbatim as the parent URL.
func FromURL(u string) Init {
	return Init{kind: initURL, url: u}
}

// From uses the resolved URL of r as the parent URL.
func From(r Resource) Init {
	return Init{kind: initHandle, parent: r}
}

// FromPair uses the resolved URL of r as the parent URL. The discriminator does
// not take part in addressing; it is kept on the new handle for callers that
// need to tell facade kinds apart.
func FromPair(r Resource, discriminator string) Init {
	return Init{kind: initPair, parent: r, discriminator: discriminator}
}

// Queryable is an addressable REST resource plus the query parameters and
// headers accumulated for it. A Queryable is not safe for concurrent mutation:
// chain calls on one handle from a single goroutine, or Clone it first.
type Queryable struct {
	pipeline      *Pipeline
	parentURL     string
	url           string
	discriminator string
	query         *Query
	header        http.Header
	err           error
}

// NewRoot returns a handle at rawURL bound to p.
func NewRoot(p *Pipeline, rawURL string) *Queryable {
	q := Compose(FromURL(rawURL), "")
	q.pipeline = p
	return q
}

// Compose builds a handle for path under init. Composing from a handle with
// an empty path yields a clone carrying the parent's query and headers; a
// non-empty path starts a fresh query set that keeps only the parent's
// parameter aliases (see SetAlias). Nothing is validated here; problems
// surface when the handle is resolved.
func Compose(init Init, path string) *Queryable {
	q := &Queryable{query: NewQuery(), header: http.Header{}}

	switch init.kind {
	case initURL:
		q.parentURL = init.url
	case initHandle, initPair:
		var parent *Queryable
		if init.parent != nil {
			parent = init.parent.Handle()
		}
		if parent == nil {
			q.err = ErrNoParent
			break
		}
		q.pipeline = parent.pipeline
		q.parentURL = parent.url
		q.err = parent.err
		q.discriminator = init.discriminator
		if path == "" {
			q.query = parent.query.Clone()
			q.header = parent.header.Clone()
		} else {
			q.query.inheritAliases(parent.query)
		}
	default:
		q.err = ErrNoParent
	}

	q.url = joinPath(q.parentURL, path)
	return q
}

// ComposeKey addresses a member of parent by appending key straight onto the
// parent URL, as in "sitegroups(5)" or "fields('1d22ea11')". The new handle
// starts with empty headers and a query holding only the parent's aliases.
func ComposeKey(parent Resource, key string) *Queryable {
	q := Compose(From(parent), "")
	q.query = NewQuery()
	if q.err == nil {
		q.query.inheritAliases(parent.Handle().query)
	}
	q.header = http.Header{}
	q.url += key
	return q
}

// SetAlias binds a parameter alias such as @v that appears in the handle's
// path. Aliases travel with every handle composed from this one, so child
// segments land in the path and the binding stays in the query string.
func (q *Queryable) SetAlias(name, value string) *Queryable {
	if !strings.HasPrefix(name, aliasPrefix) {
		name = aliasPrefix + name
	}
	q.query.Set(name, value)
	return q
}

// joinPath joins segments with a single slash, trimming one leading and one
// trailing slash from each and skipping empty segments.
func joinPath(parts ...string) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		p = strings.ReplaceAll(p, `\`, "/")
		p = strings.TrimPrefix(p, "/")
		p = strings.TrimSuffix(p, "/")
		segs = append(segs, p)
	}
	return strings.Join(segs, "/")
}

// Handle returns q itself so that *Queryable satisfies Resource.
func (q *Queryable) Handle() *Queryable {
	return q
}

// Clone returns a handle at the same URL with copies of the query and headers.
func (q *Queryable) Clone() *Queryable {
	return Compose(From(q), "")
}

// Pipeline returns the runtime the handle dispatches through.
func (q *Queryable) Pipeline() *Pipeline {
	return q.pipeline
}

// Logger returns the pipeline logger, or a logger that discards everything.
func (q *Queryable) Logger() Logger {
	return q.pipeline.logger()
}

// ParentURL returns the URL the handle was composed against.
func (q *Queryable) ParentURL() string {
	return q.parentURL
}

// Discriminator returns the string supplied through FromPair, if any.
func (q *Queryable) Discriminator() string {
	return q.discriminator
}

// Query exposes the handle's parameter set.
func (q *Queryable) Query() *Query {
	return q.query
}

// Header exposes the handle's request headers.
func (q *Queryable) Header() http.Header {
	return q.header
}

// Concat appends s to the handle's URL without a separator, as used for
// key-addressed entities such as "sitegroups(5)".
func (q *Queryable) Concat(s string) *Queryable {
	q.url += s
	return q
}

// ToURL returns the resolved resource URL without query parameters.
func (q *Queryable) ToURL() string {
	return q.url
}

// ToURLAndQuery returns the resource URL followed by the encoded parameter set.
func (q *Queryable) ToURLAndQuery() string {
	if q.query.Len() == 0 {
		return q.url
	}
	sep := "?"
	if strings.Contains(q.url, "?") {
		sep = "&"
	}
	return q.url + sep + q.query.Encode()
}

// Resolve validates the handle's address and returns the URL to dispatch.
func (q *Queryable) Resolve() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	u, err := url.Parse(q.url)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", ErrMalformedURL, q.url)
	}
	return q.ToURLAndQuery(), nil
}

// Fetch issues a GET against the handle and returns the raw response.
func (q *Queryable) Fetch(ctx context.Context) (json.RawMessage, error) {
	return q.Dispatch(ctx, "get", http.MethodGet, nil)
}

// Dispatch resolves the handle and sends one request through the pipeline.
func (q *Queryable) Dispatch(ctx context.Context, op, method string, body any, opts ...RequestOption) (json.RawMessage, error) {
	target, err := q.Resolve()
	if err != nil {
		return nil, err
	}
	return q.send(ctx, op, method, target, body, opts...)
}

func (q *Queryable) send(ctx context.Context, op, method, target string, body any, opts ...RequestOption) (json.RawMessage, error) {
	if q.pipeline == nil || q.pipeline.Executor == nil {
		return nil, ErrNoPipeline
	}

	req := &Request{
		Operation: op,
		Method:    method,
		URL:       target,
		Header:    mergeHeaders(q.pipeline.Header, q.header),
		Body:      body,
	}
	for _, opt := range opts {
		opt(req)
	}

	log := q.pipeline.logger()
	log.Debug("dispatching request", "operation", op, "method", method, "url", target)

	start := time.Now()
	raw, err := q.pipeline.Executor.Execute(ctx, req)
	elapsed := time.Since(start)

	if q.pipeline.Observer != nil {
		q.pipeline.Observer.Observe(ctx, Event{
			Operation: op,
			Method:    method,
			URL:       target,
			Start:     start,
			Duration:  elapsed,
			Err:       err,
		})
	}
	if err != nil {
		log.Debug("request failed", "operation", op, "error", err)
		return nil, err
	}
	return raw, nil
}

func mergeHeaders(layers ...http.Header) http.Header {
	out := http.Header{}
	for _, h := range layers {
		for k, vs := range h {
			out[k] = append([]string(nil), vs...)
		}
	}
	return out
}

// Entity strips any service envelope around a single-entity response.
func (q *Queryable) Entity(raw json.RawMessage) json.RawMessage {
	return q.pipeline.envelope().Entity(raw)
}

// DecodePage splits a list response into items and continuation link.
func (q *Queryable) DecodePage(raw json.RawMessage) (Page, error) {
	return q.pipeline.envelope().Page(raw)
}
