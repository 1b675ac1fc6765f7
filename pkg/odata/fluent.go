package odata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Instance is the fluent surface shared by every handle. S is the concrete
// facade type, so chained calls keep returning the facade rather than the
// embedded core.
type Instance[S any] struct {
	*Queryable
	self S
	wrap func(*Queryable) S
}

// NewInstance binds q to the facade self. wrap rebuilds a facade of the same
// kind around another Queryable and is used by operations that return a new handle.
func NewInstance[S any](q *Queryable, self S, wrap func(*Queryable) S) Instance[S] {
	return Instance[S]{Queryable: q, self: self, wrap: wrap}
}

// Select limits returned properties. The last call wins; no fields is a no-op.
func (i Instance[S]) Select(fields ...string) S {
	if len(fields) > 0 {
		i.query.Set(ParamSelect, encodeList(fields))
	}
	return i.self
}

// Expand names navigation properties to inline. The last call wins; no fields is a no-op.
func (i Instance[S]) Expand(fields ...string) S {
	if len(fields) > 0 {
		i.query.Set(ParamExpand, encodeList(fields))
	}
	return i.self
}

// CloneAs returns a new facade over a copy of the handle.
func (i Instance[S]) CloneAs() S {
	return i.wrap(i.Queryable.Clone())
}

// Collection adds the list-shaping parameters to Instance.
type Collection[S any] struct {
	Instance[S]
}

// NewCollection binds q to the collection facade self.
func NewCollection[S any](q *Queryable, self S, wrap func(*Queryable) S) Collection[S] {
	return Collection[S]{Instance: NewInstance(q, self, wrap)}
}

// Filter sets $filter verbatim. The expression must already be valid OData.
func (c Collection[S]) Filter(expr string) S {
	c.query.Set(ParamFilter, expr)
	return c.self
}

// OrderBy appends a sort clause. Unlike Select, repeated calls accumulate.
func (c Collection[S]) OrderBy(field string, ascending bool) S {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	var clauses []string
	if cur, ok := c.query.Get(ParamOrderBy); ok && cur != "" {
		clauses = strings.Split(cur, ",")
	}
	clauses = append(clauses, EncodeComponent(field)+" "+dir)
	c.query.Set(ParamOrderBy, strings.Join(clauses, ","))
	return c.self
}

// Top limits the page size.
func (c Collection[S]) Top(n int) S {
	c.query.Set(ParamTop, strconv.Itoa(n))
	return c.self
}

// Skip skips the first n results.
func (c Collection[S]) Skip(n int) S {
	c.query.Set(ParamSkip, strconv.Itoa(n))
	return c.self
}

// SkipToken sets the server-issued $skiptoken verbatim.
func (c Collection[S]) SkipToken(token string) S {
	c.query.Set(ParamSkipToken, token)
	return c.self
}

// CountableCollection is a collection whose service answers $count=true with
// @odata.count under eventual consistency, as Microsoft Graph does. SharePoint
// REST ignores both, so its collections stop at Collection.
type CountableCollection[S any] struct {
	Collection[S]
}

// NewCountableCollection binds q to the countable collection facade self.
func NewCountableCollection[S any](q *Queryable, self S, wrap func(*Queryable) S) CountableCollection[S] {
	return CountableCollection[S]{Collection: NewCollection(q, self, wrap)}
}

// Count returns the number of resources matching the current query. It runs
// against a copy of the handle with $count=true, $top=1 and eventual
// consistency; the receiver is left untouched.
func (c CountableCollection[S]) Count(ctx context.Context) (int64, error) {
	q := c.Queryable.Clone()
	q.header.Set(HeaderConsistencyLevel, ConsistencyEventual)
	q.query.Set(ParamCount, "true")
	q.query.Set(ParamTop, "1")

	raw, err := q.Dispatch(ctx, "count", http.MethodGet, nil)
	if err != nil {
		return 0, err
	}
	page, err := q.DecodePage(raw)
	if err != nil {
		return 0, err
	}
	if page.Count == nil {
		return 0, fmt.Errorf("%w: @odata.count", ErrMissingField)
	}
	return int64(*page.Count), nil
}

// SearchableCollection is a countable collection that accepts $search.
type SearchableCollection[S any] struct {
	CountableCollection[S]
}

// NewSearchableCollection binds q to the searchable collection facade self.
func NewSearchableCollection[S any](q *Queryable, self S, wrap func(*Queryable) S) SearchableCollection[S] {
	return SearchableCollection[S]{CountableCollection: NewCountableCollection(q, self, wrap)}
}

// Search returns a new handle with $search set and eventual consistency
// requested. The receiver keeps its own parameters.
func (c SearchableCollection[S]) Search(query string) S {
	q := c.Queryable.Clone()
	q.query.Set(ParamSearch, query)
	q.header.Set(HeaderConsistencyLevel, ConsistencyEventual)
	return c.wrap(q)
}
