// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coerce reinterprets a single JSON value as a flat vector of
// finite float64s. Each strategy is all-or-nothing: it either returns a
// non-empty vector whose every element is finite, or reports no match.
// A miss is an ordinary outcome that tells the caller to try something
// else; coercion never returns an error.
// Implements: docs/ARCHITECTURE § Coercion.
package coerce

import (
	"sort"
	"strings"

	"github.com/pdiddy/fl-aggregator/internal/jsonvalue"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// Vector tries every strategy in priority order and returns the first
// vector produced, together with the method that produced it:
//
//  1. array flatten
//  2. object values in sorted key order
//  3. {"dtype": "float32|float64", "data": "<base64>"}
//  4. string holding a JSON array
//  5. comma/whitespace separated numbers
//  6. base64 of a JSON array or object
//  7. base64 of little-endian float64s, else float32s
func Vector(v jsonvalue.Value) ([]float64, types.ExtractionMethod, bool) {
	switch v.Kind() {
	case jsonvalue.Array:
		if vec, ok := Flatten(v); ok {
			return vec, types.MethodArray, true
		}
	case jsonvalue.Object:
		if vec, ok := ObjectValues(v); ok {
			return vec, types.MethodObject, true
		}
		if vec, method, ok := DTypeData(v); ok {
			return vec, method, true
		}
	case jsonvalue.String:
		s, _ := v.AsString()
		return String(s)
	}
	return nil, "", false
}

// String applies the string strategies (4 through 7) to s.
func String(s string) ([]float64, types.ExtractionMethod, bool) {
	if vec, ok := StringJSON(s); ok {
		return vec, types.MethodStrJSON, true
	}
	if vec, ok := CSV(s); ok {
		return vec, types.MethodCSV, true
	}
	if !LooksBase64(s) {
		return nil, "", false
	}
	// A payload that parses as JSON is coerced as JSON only. Non-numeric
	// JSON does not fall through to the float decoders.
	doc, isJSON := base64Document(s)
	if isJSON {
		if vec, ok := Structured(doc); ok {
			return vec, types.MethodB64JSON, true
		}
		return nil, "", false
	}
	if vec, ok := Base64Floats(s); ok {
		return vec, types.MethodB64Floats, true
	}
	return nil, "", false
}

// Scalar coerces a single leaf. Numbers coerce to themselves and strings to
// the number they spell once trimmed; both must be finite. Every other kind
// fails.
func Scalar(v jsonvalue.Value) (float64, bool) {
	switch v.Kind() {
	case jsonvalue.Number:
		n, _ := v.AsNumber()
		return n, isFinite(n)
	case jsonvalue.String:
		s, _ := v.AsString()
		return parseNumber(s)
	}
	return 0, false
}

// Flatten visits an array depth-first, left to right, and returns the leaf
// values. Nested arrays are flattened; any other non-scalar leaf, or any
// leaf failing Scalar, fails the whole array.
func Flatten(v jsonvalue.Value) ([]float64, bool) {
	if v.Kind() != jsonvalue.Array {
		return nil, false
	}
	var out []float64
	if !flattenInto(v, &out) || len(out) == 0 {
		return nil, false
	}
	return out, true
}

func flattenInto(v jsonvalue.Value, out *[]float64) bool {
	if v.Kind() == jsonvalue.Array {
		for _, e := range v.Elems() {
			if !flattenInto(e, out) {
				return false
			}
		}
		return true
	}
	n, ok := Scalar(v)
	if !ok {
		return false
	}
	*out = append(*out, n)
	return true
}

// ObjectValues returns the object's values ordered by byte-wise key order,
// so the result does not depend on how the source text ordered its fields.
func ObjectValues(v jsonvalue.Value) ([]float64, bool) {
	if v.Kind() != jsonvalue.Object || v.Len() == 0 {
		return nil, false
	}
	members := make([]jsonvalue.Member, len(v.Members()))
	copy(members, v.Members())
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Key < members[j].Key
	})

	out := make([]float64, 0, len(members))
	for _, m := range members {
		n, ok := Scalar(m.Value)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// Structured coerces an already parsed document: arrays are flattened and
// objects read as sorted values.
func Structured(v jsonvalue.Value) ([]float64, bool) {
	switch v.Kind() {
	case jsonvalue.Array:
		return Flatten(v)
	case jsonvalue.Object:
		return ObjectValues(v)
	}
	return nil, false
}

// StringJSON parses s as JSON when, trimmed, it is bracketed like an array
// and flattens the result.
func StringJSON(s string) ([]float64, bool) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") {
		return nil, false
	}
	doc, err := jsonvalue.ParseString(t)
	if err != nil {
		return nil, false
	}
	return Flatten(doc)
}

// CSV splits s on runs of commas and whitespace. At least two tokens are
// required and every token must be a finite number.
func CSV(s string) ([]float64, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || isNumericSpace(r)
	})
	if len(parts) < 2 {
		return nil, false
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		n, ok := parseNumber(p)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
