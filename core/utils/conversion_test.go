package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToID(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"abc", "abc"},
		{" 12 ", "12"},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{json.Number("7"), "7"},
		{int64(9), "9"},
		{3, "3"},
		{nil, ""},
		{[]byte("x"), "x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToID(tt.in), "%#v", tt.in)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "a", ToString([]byte("a")))
	assert.Equal(t, "5", ToString(5))
}

func TestToSliceAndMap(t *testing.T) {
	assert.Len(t, ToSlice([]any{1, 2}), 2)
	assert.Nil(t, ToSlice("x"))
	assert.Equal(t, "v", ToMap(map[string]any{"k": "v"})["k"])
	assert.Nil(t, ToMap([]any{}))
}
