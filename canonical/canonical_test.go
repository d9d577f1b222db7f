package canonical

import (
	"testing"

	"github.com/caselight/caselight/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeKeyOrderInvariance(t *testing.T) {
	a := map[string]any{"a": 1, "b": 2, "c": map[string]any{"y": true, "x": "v"}}
	b := map[string]any{"c": map[string]any{"x": "v", "y": true}, "b": 2, "a": 1}

	ca, err := Canonicalize(a)
	require.NoError(t, err)
	cb, err := Canonicalize(b)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.Equal(t, `{"a":1,"b":2,"c":{"x":"v","y":true}}`, ca)
}

func TestCanonicalizePreservesSequenceOrder(t *testing.T) {
	v := map[string]any{"events": []any{"third", "first", "second"}}
	c, err := Canonicalize(v)
	require.NoError(t, err)
	assert.Equal(t, `{"events":["third","first","second"]}`, c)
}

func TestCanonicalizeScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"float", 0.85, "0.85"},
		{"string", `quote " here`, `"quote \" here"`},
		{"empty object", map[string]any{}, "{}"},
		{"empty array", []any{}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalizeStructInput(t *testing.T) {
	type record struct {
		Name  string `json:"name"`
		Score float64
		Tags  []string `json:"tags"`
	}
	got, err := Canonicalize(record{Name: "case-1", Score: 0.5, Tags: []string{"b", "a"}})
	require.NoError(t, err)
	// Struct fields emit key-sorted; slice order is untouched.
	assert.Equal(t, `{"Score":0.5,"name":"case-1","tags":["b","a"]}`, got)
}

func TestCanonicalizeExcluding(t *testing.T) {
	v := map[string]any{
		"metadata":   map[string]any{"caseId": "c1", "generatedAt": "2026-01-01T00:00:00Z"},
		"packetHash": "deadbeef",
		"decision":   map[string]any{"status": "approved"},
	}

	got, err := CanonicalizeExcluding(v, []string{"metadata.generatedAt", "packetHash"})
	require.NoError(t, err)
	assert.Equal(t, `{"decision":{"status":"approved"},"metadata":{"caseId":"c1"}}`, got)
}

func TestCanonicalizeExcludingMissingPathIsIgnored(t *testing.T) {
	v := map[string]any{"a": 1}
	got, err := CanonicalizeExcluding(v, []string{"no.such.path", "b"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, got)
}

func TestCanonicalizeUnserializable(t *testing.T) {
	_, err := Canonicalize(map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInputError(err))
}

func TestDigestFormat(t *testing.T) {
	d := Digest("")
	assert.Len(t, d, 64)
	// SHA-256 of the empty string is a fixed vector.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", d)
}

func TestDigestDeterminismAndSensitivity(t *testing.T) {
	base := map[string]any{"status": "blocked", "confidence": 0.91}
	permuted := map[string]any{"confidence": 0.91, "status": "blocked"}
	changed := map[string]any{"status": "blocked", "confidence": 0.92}

	h1, err := HashExcluding(base, nil)
	require.NoError(t, err)
	h2, err := HashExcluding(permuted, nil)
	require.NoError(t, err)
	h3, err := HashExcluding(changed, nil)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key order must not affect the digest")
	assert.NotEqual(t, h1, h3, "a semantic change must change the digest")
}

func TestHashExcludingIgnoresVolatileFields(t *testing.T) {
	exclude := []string{"metadata.generatedAt", "packetHash"}

	v1 := map[string]any{
		"metadata":   map[string]any{"caseId": "c1", "generatedAt": "2026-01-01T00:00:00Z"},
		"packetHash": "aaa",
		"decision":   map[string]any{"status": "approved"},
	}
	v2 := map[string]any{
		"metadata":   map[string]any{"caseId": "c1", "generatedAt": "2026-02-02T12:34:56Z"},
		"packetHash": "bbb",
		"decision":   map[string]any{"status": "approved"},
	}

	h1, err := HashExcluding(v1, exclude)
	require.NoError(t, err)
	h2, err := HashExcluding(v2, exclude)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
