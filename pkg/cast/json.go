package cast

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-statestore/internal/snapshot"
	"github.com/tidwall/gjson"
)

// JSON decodes JSON text into plain structures (map[string]any, []any) with
// integral numbers kept as int64. Set stores the same plain form, so state
// stays JSON compatible.
type JSON struct{}

// Get implements Cast. Nil, blank and invalid text decode to nil.
func (JSON) Get(_ string, raw any) (any, error) {
	return decodePlain(raw), nil
}

// Set implements Cast. Strings are parsed as JSON text; a JSON string
// literal is kept as its source text so Get yields the string back.
func (JSON) Set(_ string, value any) (any, error) {
	return encodePlain(value), nil
}

// Object decodes JSON objects into *OrderedObject values that preserve key order.
// Arrays decode to []any whose object elements are *OrderedObject as well.
// Set stores objects and arrays as compact JSON text so the order survives
// persistence.
type Object struct{}

// Get implements Cast.
func (Object) Get(_ string, raw any) (any, error) {
	result, ok := parseResult(raw)
	if !ok {
		return nil, nil
	}
	return orderedValue(result), nil
}

// Set implements Cast. Scalars are stored like JSON.Set.
func (Object) Set(_ string, value any) (any, error) {
	if text, ok := orderedText(value); ok {
		return text, nil
	}
	return encodePlain(value), nil
}

func decodePlain(raw any) any {
	switch typed := raw.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		decoded, err := snapshot.Decode([]byte(typed))
		if err != nil {
			return nil
		}
		return decoded
	default:
		normalized, err := snapshot.Roundtrip(raw)
		if err != nil {
			return nil
		}
		return normalized
	}
}

func encodePlain(value any) any {
	text, ok := value.(string)
	if !ok {
		return decodePlain(value)
	}
	decoded := decodePlain(text)
	if _, isString := decoded.(string); isString {
		return strings.TrimSpace(text)
	}
	return decoded
}

// orderedText renders value as compact JSON text when it is a JSON object or
// array. Text input keeps its own key order, as do *OrderedObject and
// *Collection values.
func orderedText(value any) (string, bool) {
	var encoded []byte
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		trimmed := strings.TrimSpace(typed)
		if !gjson.Valid(trimmed) {
			return "", false
		}
		var buffer bytes.Buffer
		if err := json.Compact(&buffer, []byte(trimmed)); err != nil {
			return "", false
		}
		encoded = buffer.Bytes()
	default:
		var err error
		if encoded, err = json.Marshal(value); err != nil {
			return "", false
		}
	}
	result := gjson.ParseBytes(encoded)
	if !result.IsObject() && !result.IsArray() {
		return "", false
	}
	return string(encoded), true
}

// parseResult turns raw into a gjson result. Non-string input is encoded
// first; invalid or blank text reports false.
func parseResult(raw any) (gjson.Result, bool) {
	var text string
	switch typed := raw.(type) {
	case nil:
		return gjson.Result{}, false
	case string:
		text = typed
	default:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return gjson.Result{}, false
		}
		text = string(encoded)
	}
	if strings.TrimSpace(text) == "" || !gjson.Valid(text) {
		return gjson.Result{}, false
	}
	return gjson.Parse(text), true
}
