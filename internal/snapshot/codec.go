// Package snapshot encodes store state into the JSON blob kept in the cache
// and decodes it back, keeping integral numbers as int64 instead of float64.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNotObject is returned when a cache entry decodes to something other
// than a JSON object.
var ErrNotObject = errors.New("snapshot: payload is not a JSON object")

// Encode renders state as compact JSON. A nil map encodes as an empty object.
func Encode(state map[string]any) (string, error) {
	if state == nil {
		state = map[string]any{}
	}
	buffer, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}
	return string(buffer), nil
}

// DecodeObject parses a cache entry into a state map. An empty payload is an
// empty state.
func DecodeObject(payload string) (map[string]any, error) {
	if len(bytes.TrimSpace([]byte(payload))) == 0 {
		return map[string]any{}, nil
	}
	value, err := Decode([]byte(payload))
	if err != nil {
		return nil, err
	}
	switch typed := value.(type) {
	case map[string]any:
		return typed, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, value)
	}
}

// Decode parses a single JSON document and normalizes its numbers.
func Decode(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("snapshot: decode: trailing data after document")
	}
	return Normalize(out), nil
}

// Roundtrip re-encodes value through JSON so the result only holds plain
// JSON-compatible types.
func Roundtrip(value any) (any, error) {
	buffer, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return Decode(buffer)
}

// Normalize walks value converting json.Number leaves into int64 when they are
// integral and fit, float64 otherwise.
func Normalize(value any) any {
	switch typed := value.(type) {
	case json.Number:
		return Number(typed.String())
	case map[string]any:
		for key, item := range typed {
			typed[key] = Normalize(item)
		}
		return typed
	case []any:
		for i, item := range typed {
			typed[i] = Normalize(item)
		}
		return typed
	default:
		return value
	}
}

// Number converts a JSON number literal into int64 or float64. Literals that
// are not numbers come back unchanged as strings.
func Number(literal string) any {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return f
	}
	return literal
}
