package raw

import (
	"net/netip"
	"reflect"
	"time"
)

// Dict accumulates the plain-data projection of a record. Every setter skips empty values:
// nil pointers, false booleans, empty maps and lists, invalid addresses.
type Dict map[string]any

func (d Dict) String(key string, v *string) {
	if v != nil {
		d[key] = *v
	}
}

func (d Dict) Int(key string, v *int) {
	if v != nil {
		d[key] = *v
	}
}

func (d Dict) Uint(key string, v *uint) {
	if v != nil {
		d[key] = *v
	}
}

func (d Dict) Float(key string, v *float64) {
	if v != nil {
		d[key] = *v
	}
}

func (d Dict) Bool(key string, v bool) {
	if v {
		d[key] = true
	}
}

// Names stores a locale mapping as map[string]any so the result stays JSON/structpb friendly.
func (d Dict) Names(key string, names map[string]string) {
	if len(names) == 0 {
		return
	}
	m := make(map[string]any, len(names))
	for locale, name := range names {
		m[locale] = name
	}
	d[key] = m
}

func (d Dict) Map(key string, m map[string]any) {
	if len(m) > 0 {
		d[key] = m
	}
}

// List stores the non-empty elements of items.
func (d Dict) List(key string, items []map[string]any) {
	list := make([]any, 0, len(items))
	for _, item := range items {
		if len(item) > 0 {
			list = append(list, item)
		}
	}
	if len(list) > 0 {
		d[key] = list
	}
}

func (d Dict) Addr(key string, addr netip.Addr) {
	if addr.IsValid() {
		d[key] = addr.String()
	}
}

func (d Dict) Prefix(key string, prefix netip.Prefix) {
	if prefix.IsValid() {
		d[key] = prefix.String()
	}
}

func (d Dict) Date(key string, t *time.Time) {
	if t != nil {
		d[key] = t.Format(time.DateOnly)
	}
}

// Equal reports whether two projections hold the same data.
func Equal(a, b map[string]any) bool {
	return reflect.DeepEqual(a, b)
}
