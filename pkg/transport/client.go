// Package transport implements odata.Executor over HTTP. It owns everything the
// query model leaves to its collaborator: authentication, retries, throttling,
// JSON encoding and the mapping of failed responses to typed errors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dheniges/pnp-client/pkg/odata"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
)

// Logger is the leveled logger the transport reports to. It matches
// retryablehttp.LeveledLogger and internal/logger.Logger.
type Logger interface {
	Error(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Defaults applied by New.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRetryMax     = 3
	DefaultRetryWaitMin = 1 * time.Second
	DefaultRetryWaitMax = 10 * time.Second
	DefaultUserAgent    = "pnp-client"
)

// Client sends odata requests over HTTP.
type Client struct {
	http      *retryablehttp.Client
	limiter   *RateLimiter
	logger    Logger
	userAgent string
}

var _ odata.Executor = (*Client)(nil)

type options struct {
	base        *http.Client
	tokenSource oauth2.TokenSource
	timeout     time.Duration
	retryMax    int
	waitMin     time.Duration
	waitMax     time.Duration
	rps         float64
	burst       int
	logger      Logger
	userAgent   string
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sets the underlying client. Its Transport is wrapped when a
// token source is also configured.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.base = c }
}

// WithTokenSource authenticates every request with a bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) { o.tokenSource = ts }
}

// WithTimeout bounds a single attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry configures retries for throttled and failed requests.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		o.retryMax = max
		o.waitMin = waitMin
		o.waitMax = waitMax
	}
}

// WithRateLimit caps the outgoing request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rps = rps
		o.burst = burst
	}
}

// WithLogger routes transport and retry logging to l.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// New returns a Client with retries, throttling and optional OAuth2 applied.
func New(opts ...Option) *Client {
	o := options{
		timeout:   DefaultTimeout,
		retryMax:  DefaultRetryMax,
		waitMin:   DefaultRetryWaitMin,
		waitMax:   DefaultRetryWaitMax,
		rps:       DefaultRequestsPerSecond,
		burst:     DefaultBurst,
		logger:    noopLogger{},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.base
	if base == nil {
		base = &http.Client{}
	}
	hc := &http.Client{
		Transport:     base.Transport,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       o.timeout,
	}
	if o.tokenSource != nil {
		inner := hc.Transport
		if inner == nil {
			inner = http.DefaultTransport
		}
		hc.Transport = &oauth2.Transport{Source: o.tokenSource, Base: inner}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.RetryMax = o.retryMax
	rc.RetryWaitMin = o.waitMin
	rc.RetryWaitMax = o.waitMax
	rc.Logger = o.logger
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = checkRetry

	return &Client{
		http:      rc,
		limiter:   NewRateLimiter(o.rps, o.burst),
		logger:    o.logger,
		userAgent: o.userAgent,
	}
}

// checkRetry never retries a failed token acquisition: a refresh that was
// rejected once is rejected again. POST and PATCH are replayed only when the
// server cannot have acted on them.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	var retrieve *oauth2.RetrieveError
	if errors.Is(err, ErrReauthRequired) || errors.As(err, &retrieve) {
		return false, err
	}
	if ctx.Err() != nil || isIdempotent(requestMethod(ctx, resp)) {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if !unprocessed(resp, err) {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

type methodKey struct{}

func requestMethod(ctx context.Context, resp *http.Response) string {
	if resp != nil && resp.Request != nil {
		return resp.Request.Method
	}
	if m, ok := ctx.Value(methodKey{}).(string); ok {
		return m
	}
	return http.MethodGet
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// unprocessed reports whether a failed attempt never reached the service:
// the connection could not be opened, or the service refused it with 429 or 503.
func unprocessed(resp *http.Response, err error) bool {
	if err != nil {
		var op *net.OpError
		return errors.As(err, &op) && op.Op == "dial"
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable
}

// Execute sends req and returns the response body. Failed responses come back
// as *APIError.
func (c *Client) Execute(ctx context.Context, req *odata.Request) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	var raw any
	if body != nil {
		raw = body
	}
	ctx = context.WithValue(ctx, methodKey{}, req.Method)
	hreq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, SanitizeURL(req.URL), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrInvalidRequest, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if hreq.Header.Get("Accept") == "" {
		hreq.Header.Set("Accept", "application/json")
	}
	if body != nil && hreq.Header.Get("Content-Type") == "" {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("User-Agent", c.userAgent)
	hreq.Header.Set("client-request-id", uuid.NewString())

	c.logger.Debug("sending request", "operation", req.Operation, "method", req.Method, "url", hreq.URL.String())

	res, err := c.http.Do(hreq)
	if err != nil {
		return nil, mapRoundTripError(err)
	}
	defer closeBodySafely(res.Body, c.logger, req.Operation)

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	if d := c.limiter.Throttled(res.StatusCode, res.Header.Get("Retry-After")); d > 0 {
		c.logger.Warn("request throttled", "operation", req.Operation, "status", res.StatusCode, "backoff", d.String())
	}
	if res.StatusCode >= 400 {
		apiErr := newAPIError(res, data)
		c.logger.Debug("request failed", "operation", req.Operation, "status", res.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s returned a non-JSON body", odata.ErrDecodingFailed, req.Operation)
	}
	return json.RawMessage(data), nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding request body: %w", ErrInvalidRequest, err)
		}
		return data, nil
	}
}

// closeBodySafely closes an HTTP response body and logs any error.
func closeBodySafely(body io.Closer, logger Logger, operation string) {
	if err := body.Close(); err != nil {
		logger.Warn("failed to close response body", "operation", operation, "error", err)
	}
}

// SanitizeURL percent-encodes bytes that cannot appear literally in a request
// line, such as the spaces and quotes of a $filter or getByTitle('My Field').
// Existing escapes and reserved characters are left alone.
func SanitizeURL(raw string) string {
	var b strings.Builder
	const hex = "0123456789ABCDEF"
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if urlSafe(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func urlSafe(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("-._~:/?#[]@!$&'()*+,;=%", ch) >= 0
}
