package sp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dheniges/pnp-client/pkg/odata"
)

// Envelope decodes both SharePoint response dialects: minimal metadata
// (value, odata.nextLink) and verbose (d.results, d.__next).
type Envelope struct{}

var _ odata.Envelope = Envelope{}

type verbose struct {
	Results json.RawMessage `json:"results"`
	Next    string          `json:"__next"`
	Count   json.RawMessage `json:"__count"`
}

// Page reads the items, continuation link and count of a list response.
func (Envelope) Page(raw json.RawMessage) (odata.Page, error) {
	if len(raw) == 0 {
		return odata.Page{}, nil
	}
	var env struct {
		D        *verbose          `json:"d"`
		Value    []json.RawMessage `json:"value"`
		NextLink string            `json:"odata.nextLink"`
		V4Next   string            `json:"@odata.nextLink"`
		Count    json.RawMessage   `json:"odata.count"`
		V4Count  json.RawMessage   `json:"@odata.count"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return odata.Page{}, fmt.Errorf("%w: list envelope: %w", odata.ErrDecodingFailed, err)
	}

	if env.D != nil {
		var items []json.RawMessage
		if len(env.D.Results) > 0 {
			if err := json.Unmarshal(env.D.Results, &items); err != nil {
				return odata.Page{}, fmt.Errorf("%w: d.results: %w", odata.ErrDecodingFailed, err)
			}
		}
		return odata.Page{Items: items, NextLink: env.D.Next, Count: parseCount(env.D.Count)}, nil
	}

	page := odata.Page{Items: env.Value, NextLink: env.NextLink, Count: parseCount(env.Count)}
	if page.NextLink == "" {
		page.NextLink = env.V4Next
	}
	if page.Count == nil {
		page.Count = parseCount(env.V4Count)
	}
	return page, nil
}

// Entity unwraps the verbose {"d": {...}} wrapper of single-entity responses.
func (Envelope) Entity(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return raw
	}
	if d, ok := obj["d"]; ok && len(obj) == 1 {
		return d
	}
	return raw
}

// parseCount accepts counts sent as numbers or as quoted strings.
func parseCount(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

// decodeNested decodes an embedded collection property, which is a bare array
// in minimal metadata and a {"results": [...]} object in verbose responses.
func decodeNested[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	if raw[0] == '{' {
		var wrapped struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %w", odata.ErrDecodingFailed, err)
		}
		raw = wrapped.Results
	}
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", odata.ErrDecodingFailed, err)
	}
	return out, nil
}
