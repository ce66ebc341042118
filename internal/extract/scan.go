// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strconv"

	"github.com/pdiddy/fl-aggregator/internal/coerce"
	"github.com/pdiddy/fl-aggregator/internal/jsonvalue"
	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// rootPath is the provenance path of the document root.
const rootPath = "$"

// Scan walks the whole document depth-first and returns every numeric
// vector it can recover, in traversal order. Arrays are tried as a whole
// and then element by element; objects are tried as sorted values and as a
// dtype/data shape, every string member is tried with the string decoders,
// and then each member is walked in declaration order. Scalars contribute
// only as leaves of their parents.
func Scan(root jsonvalue.Value) []types.Candidate {
	var out []types.Candidate
	scanNode(root, rootPath, &out)
	return out
}

func scanNode(node jsonvalue.Value, path string, out *[]types.Candidate) {
	switch node.Kind() {
	case jsonvalue.Array:
		if vec, ok := coerce.Flatten(node); ok {
			*out = append(*out, types.Candidate{Path: path, Method: types.MethodArray, Vector: vec})
		}
		for i, elem := range node.Elems() {
			scanNode(elem, path+"["+strconv.Itoa(i)+"]", out)
		}

	case jsonvalue.Object:
		if vec, ok := coerce.ObjectValues(node); ok {
			*out = append(*out, types.Candidate{Path: path + "{sortedValues}", Method: types.MethodObject, Vector: vec})
		}
		if vec, method, ok := coerce.DTypeData(node); ok {
			*out = append(*out, types.Candidate{Path: path + ".data" + tag(method), Method: method, Vector: vec})
		}
		for _, m := range node.Members() {
			child := path + "." + m.Key
			if s, ok := m.Value.AsString(); ok {
				scanString(s, child, out)
			}
			scanNode(m.Value, child, out)
		}

	case jsonvalue.Null, jsonvalue.Bool, jsonvalue.Number, jsonvalue.String:
	}
}

// scanString records each string decoding that succeeds as its own
// candidate. Base64 JSON and base64 floats are tried independently.
func scanString(s, path string, out *[]types.Candidate) {
	if vec, ok := coerce.StringJSON(s); ok {
		*out = append(*out, types.Candidate{Path: path + tag(types.MethodStrJSON), Method: types.MethodStrJSON, Vector: vec})
	}
	if vec, ok := coerce.CSV(s); ok {
		*out = append(*out, types.Candidate{Path: path + tag(types.MethodCSV), Method: types.MethodCSV, Vector: vec})
	}
	if !coerce.LooksBase64(s) {
		return
	}
	if vec, ok := coerce.Base64JSON(s); ok {
		*out = append(*out, types.Candidate{Path: path + tag(types.MethodB64JSON), Method: types.MethodB64JSON, Vector: vec})
	}
	if vec, ok := coerce.Base64Floats(s); ok {
		*out = append(*out, types.Candidate{Path: path + tag(types.MethodB64Floats), Method: types.MethodB64Floats, Vector: vec})
	}
}

func tag(m types.ExtractionMethod) string {
	return "<" + string(m) + ">"
}
