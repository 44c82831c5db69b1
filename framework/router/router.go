// Package router holds an immutable table of path patterns bound to views.
//
// Patterns are absolute paths whose segments are either literals or
// placeholders written as ":name". A placeholder matches exactly one
// non-empty segment and binds its unescaped value under name.
package router

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

const paramPrefix = ":"

var paramNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

type Route[V interface{}] struct {
	Pattern string
	View    V
}

type segment struct {
	value   string
	isParam bool
}

type compiledRoute[V interface{}] struct {
	Route[V]
	order       int
	segments    []segment
	staticCount int
	shapeKey    string
}

type Params map[string]string

func (p Params) Get(name string) (string, bool) {
	if p == nil {
		return "", false
	}

	value, ok := p[name]
	return value, ok
}

type Match[V interface{}] struct {
	Pattern string
	View    V
	Params  Params
}

// Table is safe for concurrent use; nothing mutates it after NewTable.
type Table[V interface{}] struct {
	declared []compiledRoute[V]
	ordered  []compiledRoute[V]
	byKey    map[string]int
}

func NewTable[V interface{}](routes ...Route[V]) (*Table[V], error) {
	if len(routes) == 0 {
		return nil, errors.New("route table cannot be empty")
	}

	declared := make([]compiledRoute[V], 0, len(routes))
	seenShape := make(map[string]string, len(routes))
	byKey := make(map[string]int, len(routes))

	for idx, route := range routes {
		compiled, err := compileRoute(route, idx)
		if err != nil {
			return nil, err
		}

		if existing, ok := seenShape[compiled.shapeKey]; ok {
			if existing == compiled.Pattern {
				return nil, fmt.Errorf("duplicate route pattern %q", compiled.Pattern)
			}
			return nil, fmt.Errorf("route pattern conflict: %q and %q", existing, compiled.Pattern)
		}
		seenShape[compiled.shapeKey] = compiled.Pattern
		byKey[compiled.Pattern] = idx
		declared = append(declared, compiled)
	}

	ordered := make([]compiledRoute[V], len(declared))
	copy(ordered, declared)
	sort.SliceStable(ordered, func(i int, j int) bool {
		left := ordered[i]
		right := ordered[j]

		if left.staticCount != right.staticCount {
			return left.staticCount > right.staticCount
		}
		if len(left.segments) != len(right.segments) {
			return len(left.segments) > len(right.segments)
		}
		return left.order < right.order
	})

	return &Table[V]{declared: declared, ordered: ordered, byKey: byKey}, nil
}

func MustNewTable[V interface{}](routes ...Route[V]) *Table[V] {
	table, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return table
}

// Routes returns the entries in declaration order.
func (t *Table[V]) Routes() []Route[V] {
	routes := make([]Route[V], 0, len(t.declared))
	for _, route := range t.declared {
		routes = append(routes, route.Route)
	}
	return routes
}

func (t *Table[V]) Len() int {
	return len(t.declared)
}

func (t *Table[V]) Lookup(pattern string) (V, bool) {
	idx, ok := t.byKey[pattern]
	if !ok {
		var zero V
		return zero, false
	}
	return t.declared[idx].View, true
}

// Match expects an escaped path such as url.URL.EscapedPath returns. Static
// segments compare against the escaped text, so "/add%2Dpatient" is not
// "/add-patient". Parameter values are unescaped one segment at a time, so
// "%2F" binds as "/" inside a parameter.
func (t *Table[V]) Match(escapedPath string) (Match[V], bool) {
	requestSegments, ok := splitRequestPath(escapedPath)
	if !ok {
		return Match[V]{}, false
	}

	for _, route := range t.ordered {
		params, ok := route.match(requestSegments)
		if !ok {
			continue
		}
		return Match[V]{Pattern: route.Pattern, View: route.View, Params: params}, true
	}

	return Match[V]{}, false
}

func (route compiledRoute[V]) match(requestSegments []string) (Params, bool) {
	if len(route.segments) != len(requestSegments) {
		return nil, false
	}

	var params Params
	for idx, seg := range route.segments {
		raw := requestSegments[idx]
		if !seg.isParam {
			if seg.value != raw {
				return nil, false
			}
			continue
		}

		value, err := url.PathUnescape(raw)
		if err != nil || value == "" {
			return nil, false
		}
		if params == nil {
			params = make(Params, 1)
		}
		params[seg.value] = value
	}

	return params, true
}

// Build fills the placeholders of pattern with params, escaping each value.
func Build(pattern string, params map[string]string) (string, error) {
	segments, err := parsePattern(pattern)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "/", nil
	}

	var builder strings.Builder
	for _, seg := range segments {
		builder.WriteString("/")
		if !seg.isParam {
			builder.WriteString(seg.value)
			continue
		}

		value := params[seg.value]
		if value == "" {
			return "", fmt.Errorf("build %q: missing value for parameter %q", pattern, seg.value)
		}
		builder.WriteString(url.PathEscape(value))
	}

	return builder.String(), nil
}

func compileRoute[V interface{}](route Route[V], order int) (compiledRoute[V], error) {
	segments, err := parsePattern(route.Pattern)
	if err != nil {
		return compiledRoute[V]{}, err
	}

	shapeParts := make([]string, 0, len(segments))
	staticCount := 0
	for _, seg := range segments {
		if seg.isParam {
			shapeParts = append(shapeParts, paramPrefix)
			continue
		}
		shapeParts = append(shapeParts, seg.value)
		staticCount++
	}

	return compiledRoute[V]{
		Route:       route,
		order:       order,
		segments:    segments,
		staticCount: staticCount,
		shapeKey:    "/" + strings.Join(shapeParts, "/"),
	}, nil
}

func parsePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("route pattern %q must start with %q", pattern, "/")
	}
	if pattern == "/" {
		return []segment{}, nil
	}

	parts := strings.Split(pattern[1:], "/")
	segments := make([]segment, 0, len(parts))
	seenParams := make(map[string]struct{}, 1)

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("route pattern %q has empty path segment", pattern)
		}

		if strings.HasPrefix(part, paramPrefix) {
			name := strings.TrimPrefix(part, paramPrefix)
			if !paramNamePattern.MatchString(name) {
				return nil, fmt.Errorf("route pattern %q: invalid parameter name %q", pattern, name)
			}
			if _, ok := seenParams[name]; ok {
				return nil, fmt.Errorf("route pattern %q: duplicate parameter %q", pattern, name)
			}
			seenParams[name] = struct{}{}
			segments = append(segments, segment{value: name, isParam: true})
			continue
		}

		if strings.ContainsAny(part, ":*?#") {
			return nil, fmt.Errorf("route pattern %q: invalid static segment %q", pattern, part)
		}
		segments = append(segments, segment{value: part})
	}

	return segments, nil
}

func splitRequestPath(escapedPath string) ([]string, bool) {
	if !strings.HasPrefix(escapedPath, "/") {
		return nil, false
	}
	if escapedPath == "/" {
		return []string{}, true
	}

	parts := strings.Split(escapedPath[1:], "/")
	for _, part := range parts {
		if part == "" {
			return nil, false
		}
	}

	return parts, true
}
