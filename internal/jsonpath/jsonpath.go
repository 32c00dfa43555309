// Package jsonpath extracts values from decoded JSON documents by a dotted
// path of object keys and array indices, e.g. "choices.0.message.content".
package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultPath matches OpenAI-style chat completion responses
const DefaultPath = "choices.0.message.content"

var (
	// ErrNotFound means a path segment is absent, out of range, or applied to
	// a value of the wrong shape
	ErrNotFound = errors.New("path not found")

	// ErrNotString means the path resolved but the leaf is not a string
	ErrNotString = errors.New("value is not a string")
)

// PathError records the path and the segment at which evaluation stopped
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("jsonpath %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("jsonpath %q at %q: %v", e.Path, e.Segment, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Kind classifies a decoded JSON value
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of a value produced by encoding/json
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	case string:
		return KindString
	case float64, json.Number:
		return KindNumber
	case bool:
		return KindBool
	default:
		return KindUnknown
	}
}

// Lookup walks root along path and returns the value found there.
// An empty path selects DefaultPath.
func Lookup(root any, path string) (any, error) {
	if path == "" {
		path = DefaultPath
	}
	v, seg, err := walk(root, strings.Split(path, "."))
	if err != nil {
		return nil, &PathError{Path: path, Segment: seg, Err: err}
	}
	return v, nil
}

// walk descends one segment per call
func walk(v any, segments []string) (any, string, error) {
	if len(segments) == 0 {
		return v, "", nil
	}
	seg := segments[0]

	if idx, ok := parseIndex(seg); ok {
		arr, isArr := v.([]any)
		if !isArr || idx >= len(arr) {
			return nil, seg, ErrNotFound
		}
		return walk(arr[idx], segments[1:])
	}

	obj, isObj := v.(map[string]any)
	if !isObj {
		return nil, seg, ErrNotFound
	}
	next, ok := obj[seg]
	if !ok {
		return nil, seg, ErrNotFound
	}
	return walk(next, segments[1:])
}

func parseIndex(seg string) (int, bool) {
	if seg == "" || seg[0] < '0' || seg[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Extract returns the string found at path in root
func Extract(root any, path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	v, err := Lookup(root, path)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &PathError{Path: path, Err: fmt.Errorf("%w (got %s)", ErrNotString, KindOf(v))}
	}
	return s, nil
}

// ExtractBytes decodes a JSON document and extracts the string at path
func ExtractBytes(body []byte, path string) (string, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return Extract(root, path)
}
