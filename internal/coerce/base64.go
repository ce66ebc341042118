// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coerce

import (
	"encoding/base64"

	"github.com/pdiddy/fl-aggregator/internal/jsonvalue"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// minBase64Len is the shortest string the base64 heuristic considers.
const minBase64Len = 8

// LooksBase64 reports whether s is at least eight characters long, a
// multiple of four, and drawn only from the standard base64 alphabet
// (padding included).
func LooksBase64(s string) bool {
	if len(s) < minBase64Len || len(s)%4 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=':
		default:
			return false
		}
	}
	return true
}

// DecodeBase64 decodes standard base64, accepting unpadded input as well.
func DecodeBase64(s string) ([]byte, bool) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, true
	}
	raw, err = base64.RawStdEncoding.DecodeString(s)
	if err == nil {
		return raw, true
	}
	return nil, false
}

// DecodeEmbeddedJSON decodes s as base64 and parses the result as JSON when
// the decoded text opens with '{' or '['.
func DecodeEmbeddedJSON(s string) (jsonvalue.Value, bool) {
	raw, ok := DecodeBase64(s)
	if !ok || len(raw) == 0 || (raw[0] != '{' && raw[0] != '[') {
		return jsonvalue.Value{}, false
	}
	doc, err := jsonvalue.Parse(raw)
	if err != nil {
		return jsonvalue.Value{}, false
	}
	return doc, true
}

func base64Document(s string) (jsonvalue.Value, bool) {
	if !LooksBase64(s) {
		return jsonvalue.Value{}, false
	}
	return DecodeEmbeddedJSON(s)
}

// Base64JSON decodes a base64 string holding a JSON array or object and
// coerces the embedded document.
func Base64JSON(s string) ([]float64, bool) {
	doc, ok := base64Document(s)
	if !ok {
		return nil, false
	}
	return Structured(doc)
}

// Base64Floats decodes a base64 string as packed little-endian float64s, or
// failing that as float32s. Every decoded value must be finite.
func Base64Floats(s string) ([]float64, bool) {
	if !LooksBase64(s) {
		return nil, false
	}
	raw, ok := DecodeBase64(s)
	if !ok {
		return nil, false
	}
	if vec, ok := DecodeFloat64LE(raw); ok {
		return vec, true
	}
	return DecodeFloat32LE(raw)
}

// DTypeData matches {"dtype": "float64"|"float32", "data": "<base64>"},
// with dtype compared case-insensitively, and decodes data accordingly.
func DTypeData(v jsonvalue.Value) ([]float64, types.ExtractionMethod, bool) {
	dtypeVal, ok := v.Get("dtype")
	if !ok {
		return nil, "", false
	}
	dtype, ok := dtypeVal.AsString()
	if !ok {
		return nil, "", false
	}
	dataVal, ok := v.Get("data")
	if !ok {
		return nil, "", false
	}
	data, ok := dataVal.AsString()
	if !ok || data == "" {
		return nil, "", false
	}

	var (
		decode func([]byte) ([]float64, bool)
		method types.ExtractionMethod
	)
	switch normalizeDType(dtype) {
	case "float64":
		decode, method = DecodeFloat64LE, types.MethodF64
	case "float32":
		decode, method = DecodeFloat32LE, types.MethodF32
	default:
		return nil, "", false
	}

	raw, ok := DecodeBase64(data)
	if !ok {
		return nil, "", false
	}
	vec, ok := decode(raw)
	if !ok {
		return nil, "", false
	}
	return vec, method, true
}
