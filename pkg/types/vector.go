// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the extraction, aggregation,
// output, and ledger stages.
package types

// ExtractionMethod identifies the decode strategy that produced a vector.
type ExtractionMethod string

const (
	MethodArray     ExtractionMethod = "array"
	MethodObject    ExtractionMethod = "object"
	MethodF64       ExtractionMethod = "b64-f64"
	MethodF32       ExtractionMethod = "b64-f32"
	MethodStrJSON   ExtractionMethod = "str-json"
	MethodCSV       ExtractionMethod = "csv"
	MethodB64JSON   ExtractionMethod = "b64-json"
	MethodB64Floats ExtractionMethod = "b64-floats"
)

// Candidate is one numeric-vector interpretation of a sub-part of a
// document, tagged with where it was found and how it was decoded.
type Candidate struct {
	// Path is a provenance string such as "$.payload.weights<b64-floats>".
	Path string `json:"path" yaml:"path"`

	// Method is the decode strategy that produced Vector.
	Method ExtractionMethod `json:"method" yaml:"method"`

	// Vector is non-empty and every element is finite.
	Vector []float64 `json:"vector" yaml:"vector"`
}

// Len returns the vector length.
func (c Candidate) Len() int {
	return len(c.Vector)
}
