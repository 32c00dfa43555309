package jsonpath

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatResponse = `{"choices":[{"message":{"content":"hola"}}]}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestExtract(t *testing.T) {
	root := decode(t, chatResponse)

	got, err := Extract(root, "choices.0.message.content")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	_, err = Extract(root, "choices.1.message.content")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestExtract_DefaultPath(t *testing.T) {
	got, err := Extract(decode(t, chatResponse), "")
	require.NoError(t, err)
	assert.Equal(t, "hola", got)
}

func TestExtract_Failures(t *testing.T) {
	doc := `{
		"output": {"text": "bonjour", "count": 3, "parts": ["a", {"b": null}]},
		"list": [1, 2],
		"7": "seven"
	}`
	root := decode(t, doc)

	tests := []struct {
		name    string
		path    string
		wantErr error
		segment string
	}{
		{"missing key", "output.missing", ErrNotFound, "missing"},
		{"index on object", "output.0", ErrNotFound, "0"},
		{"key on array", "list.first", ErrNotFound, "first"},
		{"index out of range", "list.5", ErrNotFound, "5"},
		{"descend into string", "output.text.more", ErrNotFound, "more"},
		{"numeric leaf", "output.count", ErrNotString, ""},
		{"object leaf", "output", ErrNotString, ""},
		{"null leaf", "output.parts.1.b", ErrNotString, ""},
		{"numeric key on object", "7", ErrNotFound, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(root, tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var pe *PathError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.path, pe.Path)
			assert.Equal(t, tt.segment, pe.Segment)
		})
	}
}

func TestExtract_NestedArrays(t *testing.T) {
	root := decode(t, `{"candidates":[{"content":{"parts":[{"text":"ciao"}]}}]}`)
	got, err := Extract(root, "candidates.0.content.parts.0.text")
	require.NoError(t, err)
	assert.Equal(t, "ciao", got)
}

func TestLookup(t *testing.T) {
	root := decode(t, `{"a":{"b":[true, 2.5]}}`)

	v, err := Lookup(root, "a.b.0")
	require.NoError(t, err)
	assert.Equal(t, KindBool, KindOf(v))

	v, err = Lookup(root, "a.b.1")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, KindOf(v))

	v, err = Lookup(root, "a.b")
	require.NoError(t, err)
	assert.Equal(t, KindArray, KindOf(v))
}

func TestExtractBytes(t *testing.T) {
	got, err := ExtractBytes([]byte(chatResponse), DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "hola", got)

	_, err = ExtractBytes([]byte("not json"), DefaultPath)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "null", KindOf(nil).String())
	assert.Equal(t, "unknown", Kind(42).String())
}
