// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxDepth is the deepest array and object nesting Parse accepts.
const MaxDepth = 256

// ErrTooDeep reports a document nested deeper than MaxDepth.
var ErrTooDeep = fmt.Errorf("nesting deeper than %d levels", MaxDepth)

// Parse decodes exactly one JSON document from data. Trailing non-space
// content is an error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return Value{}, fmt.Errorf("invalid JSON: unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

// ParseString is Parse for text.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, fmt.Errorf("invalid JSON: %w", io.ErrUnexpectedEOF)
		}
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return parseNumber(t)
	case string:
		return StringValue(t), nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, fmt.Errorf("invalid JSON: %w", ErrTooDeep)
		}
		switch t {
		case '[':
			return parseArray(dec, depth+1)
		case '{':
			return parseObject(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("invalid JSON: unexpected token %v", tok)
}

func parseNumber(n json.Number) (Value, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return NumberValue(f), nil
		}
		return Value{}, fmt.Errorf("invalid JSON number %q: %w", n, err)
	}
	return NumberValue(f), nil
}

func parseArray(dec *json.Decoder, depth int) (Value, error) {
	var elems []Value
	for dec.More() {
		v, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return ArrayValue(elems...), nil
}

func parseObject(dec *json.Decoder, depth int) (Value, error) {
	var members []Member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("invalid JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("invalid JSON: object key %v is not a string", tok)
		}
		v, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return ObjectValue(members...), nil
}
