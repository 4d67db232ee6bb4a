// Package raw reads typed optional values out of the loosely typed records produced by the
// MMDB decoder or by decoding a JSON response, and builds the plain maps returned by ToMap.
//
// Numbers arrive as different Go types depending on the source: the MMDB decoder yields
// uint16/uint32/uint64/int/float32/float64, encoding/json yields float64 or json.Number.
// Values of an unexpected type are treated as absent.
package raw

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Map returns the nested map stored under key, or nil.
func Map(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

// Maps returns the list of nested maps stored under key. Non-map elements are skipped.
func Maps(m map[string]any, key string) []map[string]any {
	list, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if em, ok := e.(map[string]any); ok {
			out = append(out, em)
		}
	}
	return out
}

// String returns the string stored under key, or nil.
func String(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// Bool returns the boolean stored under key; absent means false.
func Bool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// Names returns the locale to name mapping stored under key, or nil.
func Names(m map[string]any, key string) map[string]string {
	switch v := m[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		names := make(map[string]string, len(v))
		for locale, name := range v {
			if s, ok := name.(string); ok {
				names[locale] = s
			}
		}
		return names
	}
	return nil
}

// Float returns the number stored under key as a float64, or nil.
func Float(m map[string]any, key string) *float64 {
	f, ok := number(m[key])
	if !ok {
		return nil
	}
	return &f
}

// Int returns the integral number stored under key, or nil.
func Int(m map[string]any, key string) *int {
	switch v := m[key].(type) {
	case int:
		return &v
	case int64:
		i := int(v)
		return &i
	case uint64:
		if v > math.MaxInt64 {
			return nil
		}
		i := int(v)
		return &i
	case json.Number:
		if n, err := v.Int64(); err == nil {
			i := int(n)
			return &i
		}
	}
	f, ok := number(m[key])
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	i := int(f)
	return &i
}

// Uint returns the non-negative integral number stored under key, or nil.
func Uint(m map[string]any, key string) *uint {
	switch v := m[key].(type) {
	case uint64:
		u := uint(v)
		return &u
	case uint:
		return &v
	case json.Number:
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			u := uint(n)
			return &u
		}
	}
	f, ok := number(m[key])
	if !ok || f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
		return nil
	}
	u := uint(f)
	return &u
}

// Date parses the ISO-8601 date stored under key. A present but malformed value is an error.
func Date(m map[string]any, key string) (*time.Time, error) {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	return &t, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
