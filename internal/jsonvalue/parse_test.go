// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonvalue

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{name: "null", in: "null", kind: Null},
		{name: "true", in: " true ", kind: Bool},
		{name: "number", in: "-1.5e3", kind: Number},
		{name: "string", in: `"abc"`, kind: String},
		{name: "empty array", in: "[]", kind: Array},
		{name: "empty object", in: "{}", kind: Object},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParse_PreservesMemberOrder(t *testing.T) {
	v, err := ParseString(`{"z": 1, "a": [2, {"m": "x"}], "k": null}`)
	require.NoError(t, err)
	require.Equal(t, Object, v.Kind())

	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"z", "a", "k"}, keys)

	a, ok := v.Get("a")
	require.True(t, ok)
	inner, ok := a.Index(1)
	require.True(t, ok)
	m, ok := inner.Get("m")
	require.True(t, ok)
	s, ok := m.AsString()
	require.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestParse_DuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	v, err := ParseString(`{"a": 1, "b": 2, "a": 3}`)
	require.NoError(t, err)
	require.Len(t, v.Members(), 2)
	assert.Equal(t, "a", v.Members()[0].Key)
	n, _ := v.Members()[0].Value.AsNumber()
	assert.Equal(t, 3.0, n)
}

func TestParse_OverflowBecomesInf(t *testing.T) {
	v, err := ParseString(`1e400`)
	require.NoError(t, err)
	n, ok := v.AsNumber()
	require.True(t, ok)
	assert.True(t, math.IsInf(n, 1))
}

func nested(open, close string, depth int) string {
	return strings.Repeat(open, depth) + "1" + strings.Repeat(close, depth)
}

func TestParse_NestingLimit(t *testing.T) {
	v, err := ParseString(nested("[", "]", MaxDepth))
	require.NoError(t, err)
	assert.Equal(t, Array, v.Kind())

	_, err = ParseString(nested("[", "]", MaxDepth+1))
	assert.ErrorIs(t, err, ErrTooDeep)

	_, err = ParseString(nested(`{"a":`, "}", MaxDepth+1))
	assert.ErrorIs(t, err, ErrTooDeep)

	_, err = ParseString(nested("[", "]", 20000))
	assert.ErrorIs(t, err, ErrTooDeep)
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "[1,", "{\"a\" 1}", "[1] [2]", "1 x", "{1: 2}"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseString(in)
			assert.Error(t, err)
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	v := ArrayValue(NumberValue(1), StringValue("s"))
	assert.Equal(t, 2, v.Len())
	_, ok := v.Index(2)
	assert.False(t, ok)
	_, ok = v.Get("x")
	assert.False(t, ok)
	assert.Nil(t, v.Members())
	assert.Nil(t, StringValue("x").Elems())
	assert.True(t, NullValue().IsNull())
	assert.Equal(t, "object", Object.String())
}
