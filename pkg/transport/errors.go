package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Sentinel errors that callers can test for with errors.Is.
var (
	ErrReauthRequired   = errors.New("re-authentication required")
	ErrAccessDenied     = errors.New("access denied")
	ErrRetryLater       = errors.New("retry later")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrPrecondition     = errors.New("precondition failed")
	ErrNetwork          = errors.New("network error")
)

// APIError is returned for every non-2xx response. It unwraps to one of the
// sentinel errors above.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	kind       error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: HTTP %d", e.kind, e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " (request-id %s)", e.RequestID)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// errorBody covers the three error shapes in use:
// Graph            {"error":{"code":"..","message":".."}}
// SharePoint v3    {"error":{"code":"..","message":{"lang":"..","value":".."}}}
// SharePoint v4    {"odata.error":{"code":"..","message":{"lang":"..","value":".."}}}
type errorBody struct {
	Error      *errorDetail `json:"error"`
	ODataError *errorDetail `json:"odata.error"`
}

type errorDetail struct {
	Code    string          `json:"code"`
	Message json.RawMessage `json:"message"`
}

func (d *errorDetail) text() string {
	if len(d.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(d.Message, &s); err == nil {
		return s
	}
	var m struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(d.Message, &m); err == nil {
		return m.Value
	}
	return string(d.Message)
}

// newAPIError classifies a failed response, first by service error code and
// then by status.
func newAPIError(res *http.Response, body []byte) *APIError {
	e := &APIError{
		StatusCode: res.StatusCode,
		RequestID:  res.Header.Get("request-id"),
	}
	if e.RequestID == "" {
		e.RequestID = res.Header.Get("SPRequestGuid")
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		detail := parsed.Error
		if detail == nil {
			detail = parsed.ODataError
		}
		if detail != nil {
			e.Code = detail.Code
			e.Message = detail.text()
		}
	}
	if e.Message == "" && e.Code == "" {
		e.Message = strings.TrimSpace(string(body))
	}

	e.kind = kindForCode(e.Code)
	if e.kind == nil {
		e.kind = kindForStatus(res.StatusCode)
	}
	return e
}

func kindForCode(code string) error {
	switch strings.ToLower(code) {
	case "accessdenied", "erroraccessdenied", "authorization_requestdenied", "forbidden":
		return ErrAccessDenied
	case "invalidauthenticationtoken", "unauthenticated", "compacttoken_parsing_failed":
		return ErrReauthRequired
	case "itemnotfound", "erroritemnotfound", "request_resourcenotfound", "resourcenotfound", "notfound":
		return ErrResourceNotFound
	case "namealreadyexists", "conflict", "errorfolderexists":
		return ErrConflict
	case "quotalimitreached", "insufficientquota", "errorquotaexceeded":
		return ErrQuotaExceeded
	case "activitylimitreached", "servicenotavailable", "toomanyrequests", "applicationthrottled":
		return ErrRetryLater
	case "invalidrequest", "errorinvalidrequest", "badrequest", "notsupported", "notallowed",
		"resourcemodified", "generalexception", "errorinvalidproperty":
		return ErrInvalidRequest
	}
	return nil
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrReauthRequired
	case http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusNotFound, http.StatusGone:
		return ErrResourceNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusPreconditionFailed:
		return ErrPrecondition
	case http.StatusInsufficientStorage:
		return ErrQuotaExceeded
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusNotImplemented,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, 509:
		return ErrRetryLater
	default:
		return ErrInvalidRequest
	}
}

// mapRoundTripError classifies errors that happened before a response was read,
// including token refresh failures surfaced by the oauth2 transport.
func mapRoundTripError(err error) error {
	if errors.Is(err, ErrReauthRequired) {
		return err
	}
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		switch retrieve.ErrorCode {
		case "invalid_request", "invalid_client", "invalid_grant",
			"unauthorized_client", "unsupported_grant_type",
			"invalid_scope", "access_denied", "interaction_required":
			return fmt.Errorf("%w: %w", ErrReauthRequired, err)
		case "server_error", "temporarily_unavailable":
			return fmt.Errorf("%w: %w", ErrRetryLater, err)
		}
		return fmt.Errorf("token refresh: %w", err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
