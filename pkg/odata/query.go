// Package odata holds the resource-addressing and query-composition model shared
// by the Graph and SharePoint facades: URL composition from a parent chain, the
// OData query parameter set, fluent collection/instance handles, the pager and
// the narrow transport contract every request goes through.
package odata

import (
	"net/url"
	"strings"
)

// OData query parameter names understood by the handles in this package.
const (
	ParamSelect    = "$select"
	ParamFilter    = "$filter"
	ParamTop       = "$top"
	ParamSkip      = "$skip"
	ParamSkipToken = "$skiptoken"
	ParamExpand    = "$expand"
	ParamOrderBy   = "$orderby"
	ParamSearch    = "$search"
	ParamCount     = "$count"
)

// aliasPrefix marks a parameter alias; the service substitutes @name in the
// path with the value bound in the query string.
const aliasPrefix = "@"

// Query is an insertion-ordered set of query parameters. Values are stored
// exactly as they will appear on the wire.
type Query struct {
	keys   []string
	values map[string]string
}

// NewQuery returns an empty parameter set.
func NewQuery() *Query {
	return &Query{values: make(map[string]string)}
}

// Set stores value under key. Re-setting an existing key keeps its original position.
func (q *Query) Set(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = value
}

// Get returns the stored value for key.
func (q *Query) Get(key string) (string, bool) {
	v, ok := q.values[key]
	return v, ok
}

// Has reports whether key is present.
func (q *Query) Has(key string) bool {
	_, ok := q.values[key]
	return ok
}

// Delete removes key, if present.
func (q *Query) Delete(key string) {
	if _, ok := q.values[key]; !ok {
		return
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of parameters.
func (q *Query) Len() int {
	return len(q.keys)
}

// Keys returns the parameter names in insertion order.
func (q *Query) Keys() []string {
	out := make([]string, len(q.keys))
	copy(out, q.keys)
	return out
}

// Clone returns an independent copy of q.
func (q *Query) Clone() *Query {
	c := &Query{
		keys:   make([]string, len(q.keys)),
		values: make(map[string]string, len(q.values)),
	}
	copy(c.keys, q.keys)
	for k, v := range q.values {
		c.values[k] = v
	}
	return c
}

// inheritAliases copies every parameter alias of parent into q.
func (q *Query) inheritAliases(parent *Query) {
	if parent == nil {
		return
	}
	for _, k := range parent.keys {
		if strings.HasPrefix(k, aliasPrefix) {
			q.Set(k, parent.values[k])
		}
	}
}

// Encode joins the parameters as name=value pairs separated by '&'.
// No escaping is applied; values are expected to be encoded already.
func (q *Query) Encode() string {
	var b strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(q.values[k])
	}
	return b.String()
}

// EncodeComponent percent-encodes s the way a URI component encoder does:
// everything but letters, digits and -_.!~*'() is escaped, spaces become %20.
func EncodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentFixer.Replace(escaped)
}

var componentFixer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
	"%7E", "~",
)

// encodeList percent-encodes every field and joins them with commas.
func encodeList(fields []string) string {
	enc := make([]string, len(fields))
	for i, f := range fields {
		enc[i] = EncodeComponent(f)
	}
	return strings.Join(enc, ",")
}
