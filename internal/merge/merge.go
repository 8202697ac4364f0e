// Package merge layers JSON-shaped state maps.
package merge

import "github.com/goliatone/go-statestore/internal/clone"

// Layers merges maps ordered from strongest to weakest. Keys present in a
// stronger layer win; nested objects merge key by key; lists and scalars are
// replaced whole. The inputs are never modified.
func Layers(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for i := len(layers) - 1; i >= 0; i-- {
		out = over(layers[i], out)
	}
	return out
}

// over returns weak with strong's keys merged on top.
func over(strong, weak map[string]any) map[string]any {
	result := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		result[key] = clone.Value(value)
	}
	for key, value := range strong {
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := result[key].(map[string]any)
		if strongIsMap && weakIsMap && strongMap != nil {
			result[key] = over(strongMap, weakMap)
			continue
		}
		result[key] = clone.Value(value)
	}
	return result
}
