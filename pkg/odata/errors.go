package odata

import "errors"

// Errors raised by handle resolution and response reshaping. Transport failures
// are never wrapped by this package; callers see exactly what the Executor returned.
var (
	ErrNoParent       = errors.New("handle has no parent to resolve against")
	ErrMalformedURL   = errors.New("malformed resource url")
	ErrNoPipeline     = errors.New("handle is not bound to a request pipeline")
	ErrMissingField   = errors.New("response is missing an expected field")
	ErrDecodingFailed = errors.New("decoding response failed")
)
