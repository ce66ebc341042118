// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonpath resolves the small path language accepted by
// --force-path:
//
//	$                       the document root
//	$.payload.update        object fields separated by dots
//	$.layers[0][2]          array indexes after a field (or alone: $[0])
//	$.payload.update<b64>   decode the string as base64 and parse it as JSON
//
// Within a segment the field is applied first, then each index in order,
// then the <b64> marker.
package jsonpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/fl-aggregator/internal/coerce"
	"github.com/pdiddy/fl-aggregator/internal/jsonvalue"
)

// ErrSyntax reports a malformed path expression.
var ErrSyntax = errors.New("invalid path")

const b64Marker = "<b64>"

var (
	segmentRe = regexp.MustCompile(`^([^\[\]<>]*)((?:\[\d+\])*)(<b64>)?$`)
	indexRe   = regexp.MustCompile(`\[(\d+)\]`)
)

// Segment is one dot-separated step of a path.
type Segment struct {
	Field   string
	Indexes []int
	Base64  bool
}

// Path is a compiled path expression.
type Path struct {
	expr     string
	segments []Segment
}

// Compile parses expr. It fails when expr does not start with "$" or a
// segment does not match field[N]...<b64>.
func Compile(expr string) (Path, error) {
	if !strings.HasPrefix(expr, "$") {
		return Path{}, fmt.Errorf("%w %q: must start with $", ErrSyntax, expr)
	}

	var segments []Segment
	for _, raw := range strings.Split(expr[1:], ".") {
		if raw == "" {
			continue
		}
		m := segmentRe.FindStringSubmatch(raw)
		if m == nil {
			return Path{}, fmt.Errorf("%w %q: bad segment %q", ErrSyntax, expr, raw)
		}
		seg := Segment{Field: m[1], Base64: m[3] == b64Marker}
		for _, im := range indexRe.FindAllStringSubmatch(m[2], -1) {
			idx, err := strconv.Atoi(im[1])
			if err != nil {
				return Path{}, fmt.Errorf("%w %q: index %s: %v", ErrSyntax, expr, im[1], err)
			}
			seg.Indexes = append(seg.Indexes, idx)
		}
		if seg.Field == "" && len(seg.Indexes) == 0 && !seg.Base64 {
			return Path{}, fmt.Errorf("%w %q: empty segment %q", ErrSyntax, expr, raw)
		}
		segments = append(segments, seg)
	}
	return Path{expr: expr, segments: segments}, nil
}

// MustCompile is Compile that panics on error. Intended for tests and
// package-level values.
func MustCompile(expr string) Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p Path) String() string { return p.expr }

// Segments returns the compiled segments.
func (p Path) Segments() []Segment { return p.segments }

// Resolve walks root along the path. Any structural mismatch (missing
// field, non-array or out-of-range index, <b64> on a non-string or on text
// that is not base64 JSON) fails the whole resolution.
func (p Path) Resolve(root jsonvalue.Value) (jsonvalue.Value, bool) {
	cur := root
	for _, seg := range p.segments {
		next, ok := step(cur, seg)
		if !ok {
			return jsonvalue.Value{}, false
		}
		cur = next
	}
	return cur, true
}

func step(cur jsonvalue.Value, seg Segment) (jsonvalue.Value, bool) {
	if seg.Field != "" {
		next, ok := cur.Get(seg.Field)
		if !ok {
			return jsonvalue.Value{}, false
		}
		cur = next
	}
	for _, idx := range seg.Indexes {
		next, ok := cur.Index(idx)
		if !ok {
			return jsonvalue.Value{}, false
		}
		cur = next
	}
	if seg.Base64 {
		s, ok := cur.AsString()
		if !ok {
			return jsonvalue.Value{}, false
		}
		return coerce.DecodeEmbeddedJSON(s)
	}
	return cur, true
}

// Resolve compiles expr and resolves it against root. A malformed
// expression resolves to nothing.
func Resolve(root jsonvalue.Value, expr string) (jsonvalue.Value, bool) {
	p, err := Compile(expr)
	if err != nil {
		return jsonvalue.Value{}, false
	}
	return p.Resolve(root)
}
