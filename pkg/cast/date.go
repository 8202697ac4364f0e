package cast

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	spfcast "github.com/spf13/cast"
)

var errBlankLayout = errors.New("empty layout")

var namedLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"dateonly":    time.DateOnly,
	"datetime":    time.DateTime,
	"kitchen":     time.Kitchen,
	"rfc1123":     time.RFC1123,
}

// Layout resolves a layout argument: a known name (RFC3339, DateOnly, ...)
// or a literal Go reference layout.
func Layout(arg string) (string, error) {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return "", errBlankLayout
	}
	if layout, ok := namedLayouts[strings.ToLower(trimmed)]; ok {
		return layout, nil
	}
	return trimmed, nil
}

// Date reads values as the start of their day and stores them formatted with
// Layout (RFC3339 by default).
type Date struct {
	Layout string
}

// Get implements Cast.
func (d Date) Get(key string, raw any) (any, error) {
	parsed, ok, err := parseTime(KindDate, key, raw, d.Layout)
	if err != nil || !ok {
		return nil, err
	}
	return startOfDay(parsed), nil
}

// Set implements Cast.
func (d Date) Set(key string, value any) (any, error) {
	parsed, ok, err := parseTime(KindDate, key, value, d.Layout)
	if err != nil || !ok {
		return nil, err
	}
	return startOfDay(parsed).Format(layoutOr(d.Layout, time.RFC3339)), nil
}

// Timestamp reads and stores epoch seconds.
type Timestamp struct{}

// Get implements Cast.
func (Timestamp) Get(key string, raw any) (any, error) {
	parsed, ok, err := parseTime(KindTimestamp, key, raw, "")
	if err != nil || !ok {
		return nil, err
	}
	return parsed.Unix(), nil
}

// Set implements Cast.
func (Timestamp) Set(key string, value any) (any, error) {
	parsed, ok, err := parseTime(KindTimestamp, key, value, "")
	if err != nil || !ok {
		return nil, err
	}
	return parsed.Unix(), nil
}

// ImmutableDate reads values as time.Time and stores them formatted with
// Layout (RFC3339Nano by default). time.Time is a value type, so callers
// can't alter the stored instant through the returned value.
type ImmutableDate struct {
	Layout string
}

// Get implements Cast.
func (d ImmutableDate) Get(key string, raw any) (any, error) {
	parsed, ok, err := parseTime(KindImmutableDate, key, raw, d.Layout)
	if err != nil || !ok {
		return nil, err
	}
	return parsed, nil
}

// Set implements Cast.
func (d ImmutableDate) Set(key string, value any) (any, error) {
	parsed, ok, err := parseTime(KindImmutableDate, key, value, d.Layout)
	if err != nil || !ok {
		return nil, err
	}
	return parsed.Format(layoutOr(d.Layout, time.RFC3339Nano)), nil
}

// parseTime reports ok=false for nil and blank input. Strings matching layout
// are read with it before the generic formats are tried.
func parseTime(kind Kind, key string, value any, layout string) (time.Time, bool, error) {
	switch typed := value.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return typed, true, nil
	case *time.Time:
		if typed == nil {
			return time.Time{}, false, nil
		}
		return *typed, true, nil
	case json.Number:
		return parseTime(kind, key, typed.String(), layout)
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return time.Time{}, false, nil
		}
		if layout != "" {
			if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
				return parsed, true, nil
			}
		}
		if seconds, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return time.Unix(seconds, 0).UTC(), true, nil
		}
		parsed, err := spfcast.ToTimeInDefaultLocationE(trimmed, time.UTC)
		if err != nil {
			return time.Time{}, false, &ParseError{Cast: kind, Key: key, Value: value, Err: err}
		}
		return parsed, true, nil
	case float64:
		return time.Unix(truncate(typed), 0).UTC(), true, nil
	case float32:
		return time.Unix(truncate(float64(typed)), 0).UTC(), true, nil
	case bool:
		return time.Time{}, false, &ParseError{Cast: kind, Key: key, Value: value, Err: errors.New("boolean is not a time")}
	}
	if seconds, err := spfcast.ToInt64E(value); err == nil {
		return time.Unix(seconds, 0).UTC(), true, nil
	}
	return time.Time{}, false, &ParseError{Cast: kind, Key: key, Value: value, Err: errors.New("unsupported type")}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func layoutOr(layout, fallback string) string {
	if layout == "" {
		return fallback
	}
	return layout
}
