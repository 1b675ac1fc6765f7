package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PageState is the lifecycle position of a Pager.
type PageState int

const (
	// Ready means no request has been issued yet.
	Ready PageState = iota
	// HasPage means the current page is held and a next link is known.
	HasPage
	// Exhausted means the last page has been read.
	Exhausted
)

func (s PageState) String() string {
	switch s {
	case Ready:
		return "ready"
	case HasPage:
		return "has-page"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("PageState(%d)", int(s))
	}
}

// Pager walks a collection page by page following server-issued next links.
type Pager[T any] struct {
	source   *Queryable
	state    PageState
	results  []T
	nextLink string
	pages    int
}

// NewPager snapshots the collection's current URL and query. Later changes to
// the collection do not affect the pager.
func NewPager[T any](r Resource) *Pager[T] {
	return &Pager[T]{source: r.Handle().Clone()}
}

// Paged creates a pager and fetches the first page.
func Paged[T any](ctx context.Context, r Resource) (*Pager[T], error) {
	p := NewPager[T](r)
	if _, err := p.Next(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// State returns the pager's lifecycle position.
func (p *Pager[T]) State() PageState {
	return p.state
}

// HasNext reports whether another page can be fetched.
func (p *Pager[T]) HasNext() bool {
	return p.state == HasPage
}

// Results returns the most recently fetched page.
func (p *Pager[T]) Results() []T {
	return p.results
}

// NextLink returns the continuation URL of the current page, if any.
func (p *Pager[T]) NextLink() string {
	return p.nextLink
}

// Pages returns how many pages have been fetched.
func (p *Pager[T]) Pages() int {
	return p.pages
}

// Next fetches the following page. The first call issues the collection's own
// query; later calls follow the stored next link as-is. Once the pager is
// exhausted Next returns an empty slice and no error, however often it is called.
// A failed request leaves the state unchanged.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	var (
		raw json.RawMessage
		err error
	)
	switch p.state {
	case Exhausted:
		return []T{}, nil
	case Ready:
		raw, err = p.source.Dispatch(ctx, "paged", http.MethodGet, nil)
	default:
		raw, err = p.source.send(ctx, "paged.next", http.MethodGet, p.nextLink, nil)
	}
	if err != nil {
		return nil, err
	}

	page, err := p.source.DecodePage(raw)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems[T](page.Items)
	if err != nil {
		return nil, err
	}

	p.pages++
	p.results = items
	p.nextLink = page.NextLink
	if page.NextLink != "" {
		p.state = HasPage
	} else {
		p.state = Exhausted
	}
	return items, nil
}

// All drains the pager, starting with the page already held, and calls onPage
// after every newly fetched page when non-nil.
func (p *Pager[T]) All(ctx context.Context, onPage func(page []T)) ([]T, error) {
	var out []T
	if p.state != Ready {
		out = append(out, p.results...)
	}
	for p.state != Exhausted {
		items, err := p.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, items...)
		if onPage != nil {
			onPage(items)
		}
	}
	return out, nil
}

func decodeItems[T any](raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for i, r := range raws {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrDecodingFailed, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
