package cast

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	spfcast "github.com/spf13/cast"
)

// ToBool reports the truthiness of value: nil, false, numeric zero, "", "0"
// and empty slices or maps are false, everything else is true.
func ToBool(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != "" && typed != "0"
	case json.Number:
		return ToFloat(typed) != 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return ToBool(rv.Elem().Interface())
	}
	if f, err := spfcast.ToFloat64E(value); err == nil {
		return f != 0
	}
	return true
}

// ToInt truncates value to int64. Strings contribute their leading numeric
// prefix ("42abc" is 42); anything uncoercible is 0.
func ToInt(value any) int64 {
	switch typed := value.(type) {
	case nil:
		return 0
	case string:
		return prefixInt(typed)
	case json.Number:
		return prefixInt(typed.String())
	case float64:
		return truncate(typed)
	case float32:
		return truncate(float64(typed))
	}
	if i, err := spfcast.ToInt64E(value); err == nil {
		return i
	}
	return 0
}

// ToFloat coerces value to float64 following the same prefix rule as ToInt.
func ToFloat(value any) float64 {
	switch typed := value.(type) {
	case nil:
		return 0
	case string:
		return prefixFloat(typed)
	case json.Number:
		return prefixFloat(typed.String())
	}
	if f, err := spfcast.ToFloat64E(value); err == nil {
		return f
	}
	return 0
}

// ToString stringifies value: nil is "", true is "1", false is "" and
// structures are JSON encoded.
func ToString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		if typed {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	}
	if s, err := spfcast.ToStringE(value); err == nil {
		return s
	}
	if encoded, err := json.Marshal(value); err == nil {
		return string(encoded)
	}
	return ""
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func prefixInt(s string) int64 {
	literal := numericPrefix(s)
	if literal == "" {
		return 0
	}
	if !strings.ContainsAny(literal, ".eE") {
		i, err := strconv.ParseInt(literal, 10, 64)
		if err == nil {
			return i
		}
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0
	}
	return truncate(f)
}

func prefixFloat(s string) float64 {
	literal := numericPrefix(s)
	if literal == "" {
		return 0
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0
	}
	return f
}

// numericPrefix returns the longest leading decimal literal of s after
// trimming whitespace: optional sign, digits, fraction and exponent.
func numericPrefix(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		fraction := end + 1
		for fraction < len(s) && isDigit(s[fraction]) {
			fraction++
		}
		if fraction-end-1 > 0 || digits > 0 {
			digits += fraction - end - 1
			end = fraction
		}
	}
	if digits == 0 {
		return ""
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	return strings.TrimSuffix(s[:end], ".")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
