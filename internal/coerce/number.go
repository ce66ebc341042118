// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coerce

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalRe = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
	radixRe   = regexp.MustCompile(`^0(?:[xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// isNumericSpace reports the characters trimmed around a numeric string
// and used as CSV separators: ASCII whitespace, the Unicode space
// separators, the line and paragraph separators, and the byte order mark.
func isNumericSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// parseNumber accepts a finite number spelled by the whole trimmed string:
// a signed decimal with optional fraction and exponent, or an unsigned
// 0x, 0o or 0b integer. Digit separators and hex floats are rejected.
func parseNumber(s string) (float64, bool) {
	t := strings.TrimFunc(s, isNumericSpace)
	switch {
	case t == "":
		return 0, false
	case radixRe.MatchString(t):
		return parseRadix(t)
	case !decimalRe.MatchString(t):
		return 0, false
	}

	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if !isFinite(f) {
		return 0, false
	}
	return f, true
}

// parseRadix converts a prefixed integer of any size, rounding to the
// nearest float64.
func parseRadix(t string) (float64, bool) {
	base := 16
	switch t[1] {
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	}
	n, ok := new(big.Int).SetString(t[2:], base)
	if !ok {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if !isFinite(f) {
		return 0, false
	}
	return f, true
}
