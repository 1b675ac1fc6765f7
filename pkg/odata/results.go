package odata

import (
	"context"
	"encoding/json"
	"fmt"
)

// Props is a loosely typed request body for create and update calls.
type Props map[string]any

// MergeProps shallow-merges layers left to right; later keys win.
func MergeProps(layers ...Props) Props {
	out := Props{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Result pairs the server's representation with a live handle. Create calls
// return a handle addressed by the new id; update calls return the handle the
// caller already had.
type Result[T any, H any] struct {
	Data   T
	Entity H
}

// Deletable is implemented by handles that can be deleted.
type Deletable interface {
	Delete(ctx context.Context) error
}

// Updatable is implemented by handles that accept partial updates.
type Updatable[T any, H any] interface {
	Update(ctx context.Context, props Props) (Result[T, H], error)
}

// GetByIDCapable is implemented by collections that address members by key.
type GetByIDCapable[K comparable, H any] interface {
	GetByID(id K) H
}

// Decode unmarshals a single-entity response into T.
func Decode[T any](r Resource, raw json.RawMessage) (T, error) {
	var v T
	body := r.Handle().Entity(raw)
	if len(body) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}
	return v, nil
}

// Get fetches r and decodes the entity into T.
func Get[T any](ctx context.Context, r Resource) (T, error) {
	raw, err := r.Handle().Fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](r, raw)
}

// List fetches one page of r and decodes its items into T.
func List[T any](ctx context.Context, r Resource) ([]T, error) {
	q := r.Handle()
	raw, err := q.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	page, err := q.DecodePage(raw)
	if err != nil {
		return nil, err
	}
	return decodeItems[T](page.Items)
}

// ProbeScalar reads the value wrapped in field when present and otherwise
// treats the whole response as the value. Some service actions wrap scalar
// results in a property named after the action, others return them bare.
func ProbeScalar[T any](r Resource, raw json.RawMessage, field string) (T, error) {
	var v T
	body := r.Handle().Entity(raw)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		if inner, ok := obj[field]; ok {
			body = inner
		}
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %w", ErrDecodingFailed, field, err)
	}
	return v, nil
}

// StringField reads a top-level string or number property from an entity
// response, for create calls that address the new entity by its id.
func StringField(r Resource, raw json.RawMessage, field string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.Handle().Entity(raw), &obj); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}
	v, ok := obj[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", fmt.Errorf("%w: %s is neither string nor number", ErrDecodingFailed, field)
	}
	return n.String(), nil
}
