// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coerce

import (
	"encoding/binary"
	"math"
	"strings"
)

// DecodeFloat64LE reinterprets raw as little-endian IEEE-754 doubles. The
// length must be a non-zero multiple of eight and every value finite.
func DecodeFloat64LE(raw []byte) ([]float64, bool) {
	if len(raw) == 0 || len(raw)%8 != 0 {
		return nil, false
	}
	out := make([]float64, len(raw)/8)
	for i := range out {
		f := math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		if !isFinite(f) {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// DecodeFloat32LE reinterprets raw as little-endian IEEE-754 singles,
// widened to float64. The length must be a non-zero multiple of four and
// every value finite.
func DecodeFloat32LE(raw []byte) ([]float64, bool) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, false
	}
	out := make([]float64, len(raw)/4)
	for i := range out {
		f := float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		if !isFinite(f) {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// EncodeFloat64LE packs vec as little-endian doubles.
func EncodeFloat64LE(vec []float64) []byte {
	buf := make([]byte, 0, len(vec)*8)
	for _, f := range vec {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}
	return buf
}

// EncodeFloat32LE packs vec as little-endian singles. Values are narrowed
// to float32.
func EncodeFloat32LE(vec []float64) []byte {
	buf := make([]byte, 0, len(vec)*4)
	for _, f := range vec {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f)))
	}
	return buf
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func normalizeDType(s string) string {
	return strings.ToLower(s)
}
