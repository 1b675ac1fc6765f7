package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Header names used by the query model itself.
const (
	HeaderConsistencyLevel = "ConsistencyLevel"
	ConsistencyEventual    = "eventual"
)

// Request is a fully resolved call handed to the Executor.
type Request struct {
	// Operation names the facade operation that produced the request, e.g. "events.add".
	Operation string
	Method    string
	URL       string
	Header    http.Header
	// Body is serialized as JSON by the Executor. A nil Body sends no payload.
	Body any
}

// Executor performs a request and returns the parsed JSON body. Non-2xx
// responses must be reported as errors. An empty response body yields nil.
type Executor interface {
	Execute(ctx context.Context, req *Request) (json.RawMessage, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *Request) (json.RawMessage, error)

// Execute calls f(ctx, req).
func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (json.RawMessage, error) {
	return f(ctx, req)
}

// Logger is the logging surface the library needs. internal/logger.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Page is one decoded list response.
type Page struct {
	Items    []json.RawMessage
	NextLink string
	Count    *float64
}

// Envelope knows where a service puts list items, continuation links, counts
// and single entities inside its JSON responses.
type Envelope interface {
	Page(raw json.RawMessage) (Page, error)
	Entity(raw json.RawMessage) json.RawMessage
}

// V4Envelope decodes OData v4 responses as returned by Microsoft Graph.
type V4Envelope struct{}

// Page reads value, @odata.nextLink and @odata.count.
func (V4Envelope) Page(raw json.RawMessage) (Page, error) {
	var env struct {
		Value    []json.RawMessage `json:"value"`
		NextLink string            `json:"@odata.nextLink"`
		Count    *float64          `json:"@odata.count"`
	}
	if len(raw) == 0 {
		return Page{}, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Page{}, fmt.Errorf("%w: list envelope: %w", ErrDecodingFailed, err)
	}
	return Page{Items: env.Value, NextLink: env.NextLink, Count: env.Count}, nil
}

// Entity returns raw unchanged.
func (V4Envelope) Entity(raw json.RawMessage) json.RawMessage {
	return raw
}

// Pipeline is the runtime shared by every handle composed from the same root.
// It must not be modified once handles have been created from it.
type Pipeline struct {
	Executor Executor
	Observer Observer
	Logger   Logger
	// Header is sent with every request before handle-level headers are applied.
	Header   http.Header
	Envelope Envelope
}

func (p *Pipeline) envelope() Envelope {
	if p == nil || p.Envelope == nil {
		return V4Envelope{}
	}
	return p.Envelope
}

func (p *Pipeline) logger() Logger {
	if p == nil || p.Logger == nil {
		return noopLogger{}
	}
	return p.Logger
}

// RequestOption adjusts a single dispatched request.
type RequestOption func(*Request)

// WithHeader sets a header on one request only.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Header.Set(key, value)
	}
}
